// Package pagerduty raises PagerDuty incidents for failed report jobs.
package pagerduty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/target/quizreport/internal/observability/notify"
)

// APIEndpoint is the PagerDuty Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

// Config captures runtime configuration for the PagerDuty sink.
type Config struct {
	RoutingKey string
	Source     string
	Component  string
	// Endpoint overrides APIEndpoint.
	Endpoint   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client publishes events via PagerDuty's Events API v2.
type Client struct {
	hook       *notify.Webhook
	routingKey string
	source     string
	component  string
}

var _ notify.Sink = (*Client)(nil)

// NewClient constructs a PagerDuty events client. A routing key is required.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.RoutingKey)
	if key == "" {
		return nil, errors.New("pagerduty routing key is required")
	}
	return &Client{
		hook: &notify.Webhook{
			Name:       "pagerduty api",
			URL:        notify.FallbackString(strings.TrimSpace(cfg.Endpoint), APIEndpoint),
			RetryLimit: cfg.RetryLimit,
			Client:     notify.NewHTTPClient(cfg.Client, cfg.Timeout),
		},
		routingKey: key,
		source:     notify.FallbackString(strings.TrimSpace(cfg.Source), "quizreport"),
		component:  notify.FallbackString(strings.TrimSpace(cfg.Component), "report-worker"),
	}, nil
}

// SendReportFailure submits a trigger event to PagerDuty.
func (c *Client) SendReportFailure(ctx context.Context, payload notify.ReportFailurePayload) error {
	body, err := json.Marshal(c.buildEvent(payload))
	if err != nil {
		return fmt.Errorf("encode pagerduty payload: %w", err)
	}
	return c.hook.Post(ctx, body)
}

type event struct {
	RoutingKey  string       `json:"routing_key"`
	EventAction string       `json:"event_action"`
	DedupKey    string       `json:"dedup_key"`
	Payload     eventPayload `json:"payload"`
}

type eventPayload struct {
	Summary       string         `json:"summary"`
	Severity      string         `json:"severity"`
	Source        string         `json:"source"`
	Component     string         `json:"component"`
	Timestamp     string         `json:"timestamp"`
	CustomDetails map[string]any `json:"custom_details"`
}

func (c *Client) buildEvent(payload notify.ReportFailurePayload) event {
	occurredAt := payload.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	details := map[string]any{
		"purchase_id": payload.PurchaseID,
		"tenant_id":   payload.TenantID,
		"test_id":     payload.TestID,
		"session_id":  payload.SessionID,
		"attempts":    payload.Attempts,
		"error":       payload.Error,
		"error_class": payload.ErrorClass,
	}
	for k, v := range payload.Metadata {
		if _, taken := details[k]; !taken {
			details[k] = v
		}
	}

	purchase := notify.FallbackString(payload.PurchaseID, "unknown")
	return event{
		RoutingKey:  c.routingKey,
		EventAction: "trigger",
		// One open incident per purchase, however many times it fails.
		DedupKey: "report:" + purchase,
		Payload: eventPayload{
			Summary:       fmt.Sprintf("Report for purchase %s failed: %s", purchase, notify.FallbackString(payload.Error, "unknown error")),
			Severity:      strings.ToLower(notify.FallbackString(payload.Severity, notify.SeverityCritical)),
			Source:        c.source,
			Component:     c.component,
			Timestamp:     occurredAt.UTC().Format(time.RFC3339),
			CustomDetails: details,
		},
	}
}
