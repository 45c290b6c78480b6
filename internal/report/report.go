package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

// Result envelope statuses. Exactly one envelope is delivered per
// execution, terminal either way.
const (
	StatusSuccessful = "successful"
	StatusFailed     = "failed"
)

// Envelope is the uniform success/failure report delivered to the results
// webhook. Results holds the presentational HTML fragment.
type Envelope struct {
	ExecutionID string `json:"execution_id"`
	UserID      string `json:"user_id"`
	ProductID   string `json:"product_id"`
	Token       string `json:"token"`
	Status      string `json:"status"`
	Results     string `json:"results"`
}

// DeliveryError reports a webhook response other than 200, carrying the
// remote status and response text verbatim.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, %s", e.StatusCode, e.Body)
}

// Reporter delivers result envelopes. No retry policy: a delivery failure
// propagates to the caller.
type Reporter interface {
	Report(ctx context.Context, env Envelope) error
}

// WebhookReporter POSTs envelopes to a fixed endpoint.
type WebhookReporter struct {
	url    string
	client *http.Client
	logger *log.Logger
}

// NewWebhookReporter creates a Reporter for the given webhook URL.
func NewWebhookReporter(url string, timeout time.Duration, logger *log.Logger) *WebhookReporter {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &WebhookReporter{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Report serializes env as JSON and POSTs it with an explicit
// Content-Length. Success is exactly HTTP 200.
func (r *WebhookReporter) Report(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal result envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Length", strconv.Itoa(len(payload)))
	req.ContentLength = int64(len(payload))

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("report request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &DeliveryError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	r.logger.Printf("result for execution %s reported (%s)", env.ExecutionID, env.Status)
	return nil
}
