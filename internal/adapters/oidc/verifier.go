package oidc

// Package oidc verifies bearer ID tokens presented to the admin API.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/target/quizreport/internal/domain/auth"
)

// ErrMissingToken is returned when no bearer token was presented.
var ErrMissingToken = errors.New("bearer token is required")

// VerifierConfig holds configuration for the token verifier.
type VerifierConfig struct {
	IssuerURL string
	ClientID  string
	// GroupsClaim names the claim holding group membership. Defaults to "groups".
	GroupsClaim string
	HTTPClient  *http.Client // Optional, defaults to a client with a 30s timeout
}

// Verifier validates ID tokens against the issuer's published keys.
type Verifier struct {
	verifier    *gooidc.IDTokenVerifier
	groupsClaim string
}

// NewVerifier discovers the issuer and builds a verifier bound to the client ID.
func NewVerifier(ctx context.Context, cfg VerifierConfig) (*Verifier, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	// go-oidc reads the client from the context for discovery and for later JWKS refreshes.
	ctx = gooidc.ClientContext(context.WithValue(ctx, oauth2.HTTPClient, httpClient), httpClient)
	issuer := strings.TrimSuffix(cfg.IssuerURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return newVerifier(op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}), cfg.GroupsClaim), nil
}

func newVerifier(v *gooidc.IDTokenVerifier, groupsClaim string) *Verifier {
	if groupsClaim == "" {
		groupsClaim = "groups"
	}
	return &Verifier{verifier: v, groupsClaim: groupsClaim}
}

// Verify checks the token signature, issuer, audience and expiry and maps its claims.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (domainauth.Identity, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return domainauth.Identity{}, ErrMissingToken
	}
	tok, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}

	var claims map[string]any
	if err := tok.Claims(&claims); err != nil {
		return domainauth.Identity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	return mapClaims(claims, tok.Subject, tok.Expiry, v.groupsClaim), nil
}

// mapClaims maps raw claims into an Identity. AD/ADFS shapes (samaccountname, mail, memberof)
// are accepted as fallbacks.
func mapClaims(claims map[string]any, subject string, expiry time.Time, groupsClaim string) domainauth.Identity {
	groups := stringList(claims[groupsClaim])
	if len(groups) == 0 {
		groups = stringList(claims["memberof"])
	}
	return domainauth.Identity{
		Subject:   firstNonEmpty(stringClaim(claims, "samaccountname"), subject),
		Email:     firstNonEmpty(stringClaim(claims, "email"), stringClaim(claims, "mail")),
		Groups:    groups,
		ExpiresAt: expiry,
	}
}

func stringClaim(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}

// stringList accepts either a JSON array of strings or a single string.
func stringList(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
