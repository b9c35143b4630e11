package authroles

import (
	"strings"

	domainauth "github.com/target/quizreport/internal/domain/auth"
)

// GroupRoleMapper grants the admin role to members of any configured group.
// Comparison is case-insensitive because directory group names are not stable in case.
type GroupRoleMapper struct {
	AdminGroups []string
}

func (m GroupRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		for _, admin := range m.AdminGroups {
			if admin != "" && strings.EqualFold(strings.TrimSpace(g), admin) {
				return domainauth.RoleAdmin
			}
		}
	}
	return domainauth.RoleNone
}
