// Package notify defines the report failure notification contract shared by the outbound sinks.
package notify

import (
	"context"
	"strings"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityError    = "error"
	SeverityWarning  = "warning"
)

// ReportFailurePayload is what every sink receives when a report job lands in the dead-letter state.
type ReportFailurePayload struct {
	PurchaseID string
	TenantID   string
	TestID     string
	SessionID  string
	Attempts   int
	Error      string
	ErrorClass string
	Severity   string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink describes a destination capable of consuming report failure notifications.
type Sink interface {
	SendReportFailure(ctx context.Context, payload ReportFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, payload ReportFailurePayload) error

// SendReportFailure implements the Sink interface.
func (f SinkFunc) SendReportFailure(ctx context.Context, payload ReportFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}

// FallbackString returns fallback when value is blank.
func FallbackString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
