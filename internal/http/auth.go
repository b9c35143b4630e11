package httpx

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/target/quizreport/internal/domain/auth"
)

// WorkerSecretHeader carries the shared secret on internal calls.
const WorkerSecretHeader = "x-worker-secret"

// TokenVerifier validates a bearer ID token.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (domainauth.Identity, error)
}

// RoleMapper maps identity groups to a role.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// AuthenticatorOptions configures an Authenticator.
type AuthenticatorOptions struct {
	// WorkerSecret is the shared secret. Empty rejects every secret-authenticated request.
	WorkerSecret string
	// SecretIsAdmin lets the worker secret call admin endpoints.
	SecretIsAdmin bool
	// Verifier and Roles enable bearer tokens. Both must be set.
	Verifier TokenVerifier
	Roles    RoleMapper
	Logger   *slog.Logger
}

// Authenticator resolves the caller of a request from the worker secret or a bearer token.
type Authenticator struct {
	secretSum     [sha256.Size]byte
	hasSecret     bool
	secretIsAdmin bool
	verifier      TokenVerifier
	roles         RoleMapper
	logger        *slog.Logger
}

// NewAuthenticator builds an Authenticator.
func NewAuthenticator(opts AuthenticatorOptions) *Authenticator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &Authenticator{
		hasSecret:     opts.WorkerSecret != "",
		secretIsAdmin: opts.SecretIsAdmin,
		logger:        logger.With("component", "http_auth"),
	}
	if a.hasSecret {
		a.secretSum = sha256.Sum256([]byte(opts.WorkerSecret))
	}
	if opts.Verifier != nil && opts.Roles != nil {
		a.verifier = opts.Verifier
		a.roles = opts.Roles
	}
	return a
}

// secretMatches compares digests so the comparison time does not depend on the presented length.
func (a *Authenticator) secretMatches(presented string) bool {
	if !a.hasSecret || presented == "" {
		return false
	}
	sum := sha256.Sum256([]byte(presented))
	return subtle.ConstantTimeCompare(sum[:], a.secretSum[:]) == 1
}

// Authenticate returns the caller, or false when no credential was accepted.
func (a *Authenticator) Authenticate(r *http.Request) (domainauth.Principal, bool) {
	if a.secretMatches(r.Header.Get(WorkerSecretHeader)) {
		role := domainauth.RoleWorker
		if a.secretIsAdmin {
			role = domainauth.RoleAdmin
		}
		return domainauth.Principal{Subject: "worker", Role: role, Method: domainauth.MethodWorkerSecret}, true
	}

	token, ok := bearerToken(r)
	if !ok || a.verifier == nil {
		return domainauth.Principal{}, false
	}
	id, err := a.verifier.Verify(r.Context(), token)
	if err != nil {
		a.logger.WarnContext(r.Context(), "bearer token rejected", "error", err, "path", r.URL.Path)
		return domainauth.Principal{}, false
	}
	return domainauth.Principal{
		Subject: firstNonEmpty(id.Email, id.Subject),
		Role:    a.roles.Map(id.Groups),
		Method:  domainauth.MethodBearerToken,
	}, true
}

// Require returns a middleware that admits only callers holding the role.
// Unauthenticated callers get 401 before the handler runs; authenticated callers without
// the role get 403.
func (a *Authenticator) Require(role domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := a.Authenticate(r)
			if !ok {
				WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized."})
				return
			}
			if !p.Allows(role) {
				WriteJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden."})
				return
			}
			next.ServeHTTP(w, r.WithContext(SetPrincipalInContext(r.Context(), p)))
		})
	}
}

// RequireWorkerSecret admits only callers presenting the worker secret. Bearer tokens are
// ignored, so an admin identity cannot run internal endpoints without the secret.
func (a *Authenticator) RequireWorkerSecret() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.secretMatches(r.Header.Get(WorkerSecretHeader)) {
				WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized."})
				return
			}
			p := domainauth.Principal{Subject: "worker", Role: domainauth.RoleWorker, Method: domainauth.MethodWorkerSecret}
			next.ServeHTTP(w, r.WithContext(SetPrincipalInContext(r.Context(), p)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
