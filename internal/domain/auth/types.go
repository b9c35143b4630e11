package auth

// Package auth contains domain-level types for authenticating internal callers.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents what an authenticated caller may do.
type Role string

const (
	// RoleAdmin may inspect jobs and artifacts and requeue dead-lettered jobs.
	RoleAdmin Role = "admin"
	// RoleWorker may run batches, enqueue jobs and ingest summaries.
	RoleWorker Role = "worker"
	// RoleNone is returned when a verified identity carries no mapped group.
	RoleNone Role = ""
)

// Method records how a caller proved its identity.
type Method string

const (
	MethodWorkerSecret Method = "worker_secret"
	MethodBearerToken  Method = "bearer_token"
)

// Identity represents the principal carried by a verified ID token.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject   string
	Email     string
	Groups    []string
	ExpiresAt time.Time
}

// Principal is the caller attached to an authenticated request.
type Principal struct {
	Subject string
	Role    Role
	Method  Method
}

// Allows reports whether the principal satisfies the required role.
// Worker endpoints accept only the shared secret, whatever role it maps to.
func (p Principal) Allows(required Role) bool {
	switch required {
	case RoleWorker:
		return p.Method == MethodWorkerSecret && (p.Role == RoleWorker || p.Role == RoleAdmin)
	case RoleAdmin:
		return p.Role == RoleAdmin
	default:
		return false
	}
}
