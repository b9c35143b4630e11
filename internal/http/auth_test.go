package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/quizreport/internal/adapters/authroles"
	domainauth "github.com/target/quizreport/internal/domain/auth"
)

type stubVerifier map[string]domainauth.Identity

func (s stubVerifier) Verify(_ context.Context, raw string) (domainauth.Identity, error) {
	id, ok := s[raw]
	if !ok {
		return domainauth.Identity{}, errors.New("invalid token")
	}
	return id, nil
}

func newTestAuthenticator(secretIsAdmin bool) *Authenticator {
	return NewAuthenticator(AuthenticatorOptions{
		WorkerSecret:  testSecret,
		SecretIsAdmin: secretIsAdmin,
		Verifier: stubVerifier{
			"ops-token": {Subject: "u1", Email: "ops@example.com", Groups: []string{"ops"}},
			"eng-token": {Subject: "u2", Groups: []string{"eng"}},
		},
		Roles: authroles.GroupRoleMapper{AdminGroups: []string{"ops"}},
	})
}

func serveWith(a *Authenticator, role domainauth.Role, r *http.Request) (*httptest.ResponseRecorder, domainauth.Principal) {
	var seen domainauth.Principal
	h := a.Require(role)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w, seen
}

func TestAuthenticator_Require(t *testing.T) {
	tests := []struct {
		name       string
		secretIsAd bool
		role       domainauth.Role
		header     string
		value      string
		wantStatus int
		wantMethod domainauth.Method
	}{
		{"secret on worker route", false, domainauth.RoleWorker, WorkerSecretHeader, testSecret, http.StatusNoContent, domainauth.MethodWorkerSecret},
		{"secret on admin route when allowed", true, domainauth.RoleAdmin, WorkerSecretHeader, testSecret, http.StatusNoContent, domainauth.MethodWorkerSecret},
		{"secret on admin route when not allowed", false, domainauth.RoleAdmin, WorkerSecretHeader, testSecret, http.StatusForbidden, ""},
		{"admin bearer on admin route", false, domainauth.RoleAdmin, "Authorization", "Bearer ops-token", http.StatusNoContent, domainauth.MethodBearerToken},
		{"admin bearer on worker route", false, domainauth.RoleWorker, "Authorization", "bearer ops-token", http.StatusForbidden, ""},
		{"bearer without admin group", false, domainauth.RoleAdmin, "Authorization", "Bearer eng-token", http.StatusForbidden, ""},
		{"invalid bearer", false, domainauth.RoleAdmin, "Authorization", "Bearer forged", http.StatusUnauthorized, ""},
		{"basic scheme", false, domainauth.RoleAdmin, "Authorization", "Basic ops-token", http.StatusUnauthorized, ""},
		{"no credentials", false, domainauth.RoleWorker, "", "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set(tt.header, tt.value)
			}
			w, p := serveWith(newTestAuthenticator(tt.secretIsAd), tt.role, r)
			require.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMethod, p.Method)
		})
	}
}

func TestAuthenticator_PrincipalSubject(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer ops-token")
	_, p := serveWith(newTestAuthenticator(false), domainauth.RoleAdmin, r)
	assert.Equal(t, "ops@example.com", p.Subject)
	assert.Equal(t, domainauth.RoleAdmin, p.Role)
}

func TestAuthenticator_BearerDisabledWithoutVerifier(t *testing.T) {
	a := NewAuthenticator(AuthenticatorOptions{WorkerSecret: testSecret})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer ops-token")
	w, _ := serveWith(a, domainauth.RoleAdmin, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized."}`, w.Body.String())
}

func TestAuthenticator_RequireWorkerSecret(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"secret", WorkerSecretHeader, testSecret, http.StatusNoContent},
		{"admin bearer", "Authorization", "Bearer ops-token", http.StatusUnauthorized},
		{"wrong secret", WorkerSecretHeader, "nope", http.StatusUnauthorized},
		{"no credentials", "", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen domainauth.Principal
			h := newTestAuthenticator(true).RequireWorkerSecret()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				r.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, domainauth.MethodWorkerSecret, seen.Method)
				assert.Equal(t, domainauth.RoleWorker, seen.Role)
			}
		})
	}
}

func TestAuthenticator_EmptyAdminGroupsForbidsBearer(t *testing.T) {
	a := NewAuthenticator(AuthenticatorOptions{
		WorkerSecret: testSecret,
		Verifier:     stubVerifier{"ops-token": {Subject: "u1", Groups: []string{"ops"}}},
		Roles:        authroles.GroupRoleMapper{},
	})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer ops-token")
	w, _ := serveWith(a, domainauth.RoleAdmin, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
