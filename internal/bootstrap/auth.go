package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/quizreport/config"
	"github.com/target/quizreport/internal/adapters/authroles"
	"github.com/target/quizreport/internal/adapters/oidc"
	httpx "github.com/target/quizreport/internal/http"
)

// AuthConfig contains configuration for building the request authenticator.
type AuthConfig struct {
	AdminAuth    config.AdminAuthConfig
	WorkerSecret string
	Logger       *slog.Logger
}

// BuildAuthenticator wires the worker secret and, in OIDC mode, the bearer token verifier.
func BuildAuthenticator(ctx context.Context, cfg AuthConfig) (*httpx.Authenticator, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := httpx.AuthenticatorOptions{
		WorkerSecret:  cfg.WorkerSecret,
		SecretIsAdmin: cfg.AdminAuth.AllowWorkerSecret,
		Logger:        logger,
	}

	if cfg.AdminAuth.OIDCEnabled() {
		verifier, err := oidc.NewVerifier(ctx, oidc.VerifierConfig{
			IssuerURL:   cfg.AdminAuth.IssuerURL,
			ClientID:    cfg.AdminAuth.ClientID,
			GroupsClaim: cfg.AdminAuth.GroupsClaim,
		})
		if err != nil {
			return nil, fmt.Errorf("build oidc verifier: %w", err)
		}
		opts.Verifier = verifier
		opts.Roles = authroles.GroupRoleMapper{AdminGroups: cfg.AdminAuth.AdminGroups}
		logger.Info("admin bearer tokens enabled",
			"issuer", cfg.AdminAuth.IssuerURL,
			"admin_groups", len(cfg.AdminAuth.AdminGroups),
		)
		if len(cfg.AdminAuth.AdminGroups) == 0 {
			logger.Warn("ADMIN_AUTH_ADMIN_GROUPS is empty; every bearer token will be forbidden")
		}
	}

	return httpx.NewAuthenticator(opts), nil
}
