// Package slack delivers report failure notifications to a Slack incoming webhook.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/target/quizreport/internal/observability/notify"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// ReportURLPrefix, when set, links the purchase id to the admin artifact view.
	ReportURLPrefix string
}

// Client delivers report failure notifications to a Slack webhook.
type Client struct {
	hook            *notify.Webhook
	channel         string
	username        string
	reportURLPrefix string
}

var _ notify.Sink = (*Client)(nil)

// NewClient builds a Slack webhook client.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}
	return &Client{
		hook: &notify.Webhook{
			Name:       "slack webhook",
			URL:        webhookURL,
			RetryLimit: cfg.RetryLimit,
			Client:     notify.NewHTTPClient(cfg.Client, cfg.Timeout),
		},
		channel:         strings.TrimSpace(cfg.Channel),
		username:        notify.FallbackString(strings.TrimSpace(cfg.Username), "quizreport"),
		reportURLPrefix: strings.TrimSpace(cfg.ReportURLPrefix),
	}, nil
}

// SendReportFailure posts a formatted message to Slack.
func (c *Client) SendReportFailure(ctx context.Context, payload notify.ReportFailurePayload) error {
	body, err := json.Marshal(c.formatMessage(payload))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}
	return c.hook.Post(ctx, body)
}

func (c *Client) formatMessage(payload notify.ReportFailurePayload) map[string]any {
	ts := payload.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}

	var text strings.Builder
	text.WriteString("*Report generation failed*")
	if purchase := c.purchaseValue(payload.PurchaseID); purchase != "" {
		text.WriteString(" ")
		text.WriteString(purchase)
	}
	text.WriteByte('\n')

	attempts := ""
	if payload.Attempts > 0 {
		attempts = strconv.Itoa(payload.Attempts)
	}
	for _, f := range []struct{ label, value string }{
		{"Severity", notify.FallbackString(payload.Severity, notify.SeverityCritical)},
		{"Tenant", escape(payload.TenantID)},
		{"Test", escape(payload.TestID)},
		{"Session", escape(payload.SessionID)},
		{"Attempts", attempts},
		{"Error class", payload.ErrorClass},
		{"Error", escape(payload.Error)},
	} {
		writeField(&text, f.label, f.value)
	}

	if len(payload.Metadata) > 0 {
		keys := make([]string, 0, len(payload.Metadata))
		for k := range payload.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		text.WriteString("• Metadata:\n")
		for _, k := range keys {
			fmt.Fprintf(&text, "    • %s: %s\n", k, escape(payload.Metadata[k]))
		}
	}
	text.WriteString("• Timestamp: ")
	text.WriteString(ts.UTC().Format(time.RFC3339))

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

// purchaseValue renders the purchase id, linked when a report URL prefix is configured.
func (c *Client) purchaseValue(purchaseID string) string {
	id := strings.TrimSpace(purchaseID)
	if id == "" {
		return ""
	}
	if link := c.reportLink(id); link != "" {
		return fmt.Sprintf("<%s|%s>", link, escape(id))
	}
	return "`" + escape(id) + "`"
}

func (c *Client) reportLink(purchaseID string) string {
	if c.reportURLPrefix == "" {
		return ""
	}
	u, err := url.Parse(c.reportURLPrefix)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	link, err := url.JoinPath(u.String(), purchaseID)
	if err != nil {
		return ""
	}
	return link
}

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(value string) string {
	return slackEscaper.Replace(strings.TrimSpace(value))
}

func writeField(text *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	text.WriteString("• ")
	text.WriteString(label)
	text.WriteString(": ")
	text.WriteString(value)
	text.WriteByte('\n')
}
