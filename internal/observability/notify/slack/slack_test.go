package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/target/quizreport/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when webhook url missing")
	}
}

func TestFormatMessageIncludesFields(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
		Channel:    "#reports",
		Username:   "bot",
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.ReportFailurePayload{
		PurchaseID: "p-123",
		TenantID:   "tenant-a",
		TestID:     "test-focus",
		Attempts:   2,
		Error:      "attempt summary missing <x>",
		ErrorClass: "summary_missing",
		Metadata:   map[string]string{"locale": "es"},
	})

	if msg["username"] != "bot" {
		t.Fatalf("expected username to be preserved, got %v", msg["username"])
	}
	if msg["channel"] != "#reports" {
		t.Fatalf("expected channel to be set, got %v", msg["channel"])
	}
	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}
	for _, want := range []string{
		"Report generation failed", "`p-123`", "tenant-a", "test-focus", "Attempts: 2",
		"attempt summary missing &lt;x&gt;", "summary_missing", "locale: es",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("message text missing %q: %s", want, text)
		}
	}
}

func TestFormatMessageReportLink(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL:      "https://hooks.slack.com/services/test",
		ReportURLPrefix: "https://reports.example.com/api/admin/report-artifacts",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, _ := client.formatMessage(notify.ReportFailurePayload{PurchaseID: "p-9"})["text"].(string)
	expected := "<https://reports.example.com/api/admin/report-artifacts/p-9|p-9>"
	if !strings.Contains(text, expected) {
		t.Fatalf("expected report link %q in text: %s", expected, text)
	}
}

func TestSendReportFailurePostsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.SendReportFailure(context.Background(), notify.ReportFailurePayload{PurchaseID: "p-1"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["username"] != "quizreport" {
		t.Fatalf("expected default username, got %v", got["username"])
	}
}
