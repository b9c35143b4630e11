package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultWebhookTimeout bounds a single webhook delivery.
const DefaultWebhookTimeout = 5 * time.Second

// Webhook posts JSON documents with linear-backoff retries.
type Webhook struct {
	Name       string
	URL        string
	RetryLimit int
	Client     *http.Client
	// Backoff is the delay unit; attempt n waits n*Backoff. Zero selects 200ms.
	Backoff time.Duration
}

// NewHTTPClient returns client, or a fresh client with timeout (default DefaultWebhookTimeout) when nil.
func NewHTTPClient(client *http.Client, timeout time.Duration) *http.Client {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Post delivers body, retrying up to RetryLimit times on transport errors and non-2xx replies.
func (w *Webhook) Post(ctx context.Context, body []byte) error {
	backoff := w.Backoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := max(w.RetryLimit, 0) + 1

	var lastErr error
	for attempt := range attempts {
		if lastErr = w.postOnce(ctx, body); lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

func (w *Webhook) postOnce(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", w.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", w.Name, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, drainErr := io.Copy(io.Discard, resp.Body)
		return joinClose(w.Name, resp, drainErr)
	}

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := joinClose(w.Name, resp, readErr); err != nil {
		return err
	}
	return fmt.Errorf("%s %s: %s", w.Name, resp.Status, strings.TrimSpace(string(respBody)))
}

func joinClose(name string, resp *http.Response, readErr error) error {
	closeErr := resp.Body.Close()
	if readErr == nil && closeErr == nil {
		return nil
	}
	var errs []error
	if readErr != nil {
		errs = append(errs, fmt.Errorf("read %s response: %w", name, readErr))
	}
	if closeErr != nil {
		errs = append(errs, fmt.Errorf("close response body: %w", closeErr))
	}
	return errors.Join(errs...)
}
