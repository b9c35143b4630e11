package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Admin API authentication
//   - database.go: Database and cache configuration
//   - http.go: HTTP server configuration
//   - report.go: Report worker, LLM and artifact storage configuration
//   - services.go: Service mode, poller and reaper configuration
type AppConfig struct {
	// IsDev controls development mode behavior (text logs, relaxed auth warnings).
	// Set DEV=true or APP_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// ContentCache controls the published test cache.
	ContentCache ContentCacheConfig `envPrefix:"CONTENT_CACHE_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Admin API authentication
	AdminAuth AdminAuthConfig `envPrefix:"ADMIN_AUTH_"`

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"http"`

	// Report worker configuration
	Report ReportConfig `envPrefix:"REPORT_"`

	// OpenAI generator configuration
	OpenAI OpenAIConfig `envPrefix:"OPENAI_"`

	// ArtifactStore mirrors generated reports to object storage.
	ArtifactStore ArtifactStoreConfig `envPrefix:"ARTIFACT_STORE_"`

	// Reaper configuration
	Reaper ReaperConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.ContentCache.Sanitize()
	c.AdminAuth.Sanitize()
	c.Report.Sanitize()
	c.OpenAI.Sanitize()
	c.ArtifactStore.Sanitize()
	c.Reaper.Sanitize()
	c.Observability.Sanitize()

	// Slack links default to the admin job endpoint of this service.
	if slack := &c.Observability.Notifications.Slack; slack.ReportURLPrefix == "" && c.HTTP.BaseURL != "" {
		slack.ReportURLPrefix = c.HTTP.BaseURL + "/api/admin/report-jobs/"
	}

	c.detectDevMode()
}

// detectDevMode checks both DEV and APP_ENV environment variables.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		appEnv := strings.ToLower(os.Getenv("APP_ENV"))
		c.IsDev = appEnv == "development" || appEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

func (c *AppConfig) serviceEnabled(mode ServiceMode) bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[mode]
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool { return c.serviceEnabled(ServiceModeHTTP) }

// IsPollerEnabled returns true if the in-process report poller is enabled.
func (c *AppConfig) IsPollerEnabled() bool { return c.serviceEnabled(ServiceModePoller) }

// IsReaperEnabled returns true if the reaper service is enabled.
func (c *AppConfig) IsReaperEnabled() bool { return c.serviceEnabled(ServiceModeReaper) }
