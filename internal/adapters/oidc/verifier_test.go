package oidc

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://login.example.com"

func signToken(t *testing.T, key *rsa.PrivateKey, claims map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "RS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	signingInput := base64.RawURLEncoding.EncodeToString(header) + "." + base64.RawURLEncoding.EncodeToString(payload)
	digest := sha256.Sum256([]byte(signingInput))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func staticVerifier(t *testing.T, key *rsa.PrivateKey, groupsClaim string) *Verifier {
	t.Helper()
	keySet := &gooidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}}
	return newVerifier(gooidc.NewVerifier(testIssuer, keySet, &gooidc.Config{ClientID: "quizreport-admin"}), groupsClaim)
}

func baseClaims() map[string]any {
	return map[string]any{
		"iss":   testIssuer,
		"aud":   "quizreport-admin",
		"sub":   "user-123",
		"email": "ops@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
}

func TestVerifier_Verify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("maps configured groups claim", func(t *testing.T) {
		claims := baseClaims()
		claims["roles"] = []string{"ops", "eng"}
		id, err := staticVerifier(t, key, "roles").Verify(ctx, signToken(t, key, claims))
		require.NoError(t, err)
		assert.Equal(t, "user-123", id.Subject)
		assert.Equal(t, "ops@example.com", id.Email)
		assert.Equal(t, []string{"ops", "eng"}, id.Groups)
		assert.False(t, id.ExpiresAt.IsZero())
	})

	t.Run("falls back to AD claim shapes", func(t *testing.T) {
		claims := baseClaims()
		delete(claims, "email")
		claims["samaccountname"] = "z001"
		claims["mail"] = "z001@example.com"
		claims["memberof"] = "ops"
		id, err := staticVerifier(t, key, "").Verify(ctx, signToken(t, key, claims))
		require.NoError(t, err)
		assert.Equal(t, "z001", id.Subject)
		assert.Equal(t, "z001@example.com", id.Email)
		assert.Equal(t, []string{"ops"}, id.Groups)
	})

	t.Run("rejects wrong audience", func(t *testing.T) {
		claims := baseClaims()
		claims["aud"] = "someone-else"
		_, err := staticVerifier(t, key, "").Verify(ctx, signToken(t, key, claims))
		require.Error(t, err)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		claims := baseClaims()
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		_, err := staticVerifier(t, key, "").Verify(ctx, signToken(t, key, claims))
		require.Error(t, err)
	})

	t.Run("rejects token signed by another key", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		_, err = staticVerifier(t, key, "").Verify(ctx, signToken(t, other, baseClaims()))
		require.Error(t, err)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := staticVerifier(t, key, "").Verify(ctx, "  ")
		require.ErrorIs(t, err, ErrMissingToken)
	})
}

func TestNewVerifier_Discovery(t *testing.T) {
	var issuer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 issuer,
			"authorization_endpoint": issuer + "/auth",
			"token_endpoint":         issuer + "/token",
			"jwks_uri":               issuer + "/jwks",
		})
	}))
	defer srv.Close()
	issuer = srv.URL

	v, err := NewVerifier(context.Background(), VerifierConfig{
		IssuerURL: srv.URL + "/.well-known/openid-configuration",
		ClientID:  "quizreport-admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "groups", v.groupsClaim)
}

func TestNewVerifier_ValidationErrors(t *testing.T) {
	_, err := NewVerifier(context.Background(), VerifierConfig{IssuerURL: "https://x"})
	require.EqualError(t, err, "client ID is required")
	_, err = NewVerifier(context.Background(), VerifierConfig{ClientID: "c"})
	require.EqualError(t, err, "issuer URL is required")
}
