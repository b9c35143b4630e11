package config

import (
	"fmt"
	"strings"
)

// AdminAuthMode selects how /api/admin requests are authenticated.
type AdminAuthMode string

const (
	// AdminAuthModeOIDC accepts OIDC bearer tokens and, when allowed, the worker secret.
	AdminAuthModeOIDC AdminAuthMode = "oidc"
	// AdminAuthModeSecret accepts only the worker secret.
	AdminAuthModeSecret AdminAuthMode = "secret"
)

// UnmarshalText implements encoding.TextUnmarshaler for AdminAuthMode.
func (a *AdminAuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oidc", "secret":
		*a = AdminAuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AdminAuthMode: %q (valid options: oidc, secret)", v)
	}
}

// AdminAuthConfig configures authentication of the admin API.
type AdminAuthConfig struct {
	Mode AdminAuthMode `env:"MODE" envDefault:"secret"`

	// IssuerURL is the OIDC issuer used for discovery.
	IssuerURL string `env:"ISSUER_URL"`

	// ClientID is the expected audience of admin ID tokens.
	ClientID string `env:"CLIENT_ID"`

	// GroupsClaim names the token claim that lists the caller's groups.
	GroupsClaim string `env:"GROUPS_CLAIM" envDefault:"groups"`

	// AdminGroups lists groups allowed to call the admin API. Empty grants no bearer token the
	// admin role, so every bearer call gets 403.
	AdminGroups []string `env:"ADMIN_GROUPS" envSeparator:";"`

	// AllowWorkerSecret lets the worker secret authenticate admin calls as well.
	AllowWorkerSecret bool `env:"ALLOW_WORKER_SECRET" envDefault:"true"`
}

// Sanitize normalises the admin auth configuration.
func (c *AdminAuthConfig) Sanitize() {
	c.IssuerURL = strings.TrimSpace(c.IssuerURL)
	c.ClientID = strings.TrimSpace(c.ClientID)
	if c.GroupsClaim = strings.TrimSpace(c.GroupsClaim); c.GroupsClaim == "" {
		c.GroupsClaim = "groups"
	}
	c.AdminGroups = normalizeList(c.AdminGroups)
	if c.Mode == "" {
		c.Mode = AdminAuthModeSecret
	}
	// Without an issuer there is nothing to verify tokens against.
	if c.Mode == AdminAuthModeOIDC && (c.IssuerURL == "" || c.ClientID == "") {
		c.Mode = AdminAuthModeSecret
	}
	if c.Mode == AdminAuthModeSecret {
		c.AllowWorkerSecret = true
	}
}

// OIDCEnabled reports whether bearer tokens are verified.
func (c *AdminAuthConfig) OIDCEnabled() bool {
	return c.Mode == AdminAuthModeOIDC
}
