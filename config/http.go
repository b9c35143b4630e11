package config

import (
	"strings"
	"time"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the public base URL of the service, used for links in failure notifications.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// MaxConns caps concurrently accepted connections. Zero disables the cap.
	MaxConns int `env:"HTTP_MAX_CONNS" envDefault:"256"`

	// ReadHeaderTimeout bounds how long a client may take to send request headers.
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"10s"`

	// WriteTimeout must exceed the slowest batch a run request may trigger.
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"5m"`

	// InternalRateLimit is the sustained requests per second allowed per client on /api/internal routes.
	InternalRateLimit float64 `env:"HTTP_INTERNAL_RATE_LIMIT" envDefault:"5"`

	// InternalRateBurst is the burst allowance for InternalRateLimit.
	InternalRateBurst int `env:"HTTP_INTERNAL_RATE_BURST" envDefault:"10"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
	if h.MaxConns < 0 {
		h.MaxConns = 0
	}
	if h.ReadHeaderTimeout <= 0 {
		h.ReadHeaderTimeout = 10 * time.Second
	}
	if h.WriteTimeout < 30*time.Second {
		h.WriteTimeout = 30 * time.Second
	}
	if h.InternalRateLimit < 0 {
		h.InternalRateLimit = 0
	}
	if h.InternalRateBurst < 1 {
		h.InternalRateBurst = 1
	}
}
