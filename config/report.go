package config

import (
	"strings"
	"time"
)

// ReportConfig configures the report worker.
type ReportConfig struct {
	// WorkerSecret authenticates internal callers via the x-worker-secret header.
	// An empty secret rejects every internal request.
	WorkerSecret string `env:"WORKER_SECRET"`

	// Concurrency is the number of jobs processed at once within a batch (1-16).
	Concurrency int `env:"WORKER_CONCURRENCY" envDefault:"1"`

	// PollInterval is the poller tick interval when SERVICES includes poller.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"30s"`

	// PollLimit is the claim size used by the poller.
	PollLimit int `env:"POLL_LIMIT" envDefault:"5"`

	// JobTimeout bounds one batch started by the poller.
	JobTimeout time.Duration `env:"BATCH_TIMEOUT" envDefault:"4m"`
}

// Sanitize applies guardrails to report worker configuration values.
func (r *ReportConfig) Sanitize() {
	r.WorkerSecret = strings.TrimSpace(r.WorkerSecret)
	if r.Concurrency < 1 {
		r.Concurrency = 1
	}
	if r.Concurrency > 16 {
		r.Concurrency = 16
	}
	if r.PollInterval < time.Second {
		r.PollInterval = time.Second
	}
	if r.PollLimit < 1 {
		r.PollLimit = 5
	}
	if r.PollLimit > 50 {
		r.PollLimit = 50
	}
	if r.JobTimeout <= 0 {
		r.JobTimeout = 4 * time.Minute
	}
}

// OpenAIConfig configures the report generator.
type OpenAIConfig struct {
	APIKey  string        `env:"API_KEY"`
	Model   string        `env:"MODEL"    envDefault:"gpt-4o"`
	BaseURL string        `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"15s"`
}

// Sanitize normalises the OpenAI configuration.
func (o *OpenAIConfig) Sanitize() {
	o.APIKey = strings.TrimSpace(o.APIKey)
	if o.Model = strings.TrimSpace(o.Model); o.Model == "" {
		o.Model = "gpt-4o"
	}
	if o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/"); o.BaseURL == "" {
		o.BaseURL = "https://api.openai.com/v1"
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
}

// Configured reports whether an API key is present.
func (o *OpenAIConfig) Configured() bool {
	return o.APIKey != ""
}

// ArtifactStoreConfig configures the optional S3-compatible artifact mirror.
type ArtifactStoreConfig struct {
	Enabled   bool   `env:"ENABLED"    envDefault:"false"`
	Endpoint  string `env:"ENDPOINT"   envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET"     envDefault:"quiz-reports"`
	Region    string `env:"REGION"`
	UseSSL    bool   `env:"USE_SSL"    envDefault:"false"`
	// Prefix is prepended to every object key.
	Prefix string `env:"PREFIX" envDefault:"reports"`
}

// Sanitize disables the mirror when it cannot possibly work.
func (a *ArtifactStoreConfig) Sanitize() {
	a.Endpoint = strings.TrimSpace(a.Endpoint)
	a.Bucket = strings.TrimSpace(a.Bucket)
	a.Prefix = strings.Trim(strings.TrimSpace(a.Prefix), "/")
	if a.Endpoint == "" || a.Bucket == "" {
		a.Enabled = false
	}
}
