package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Invocation is the request envelope sent to the generation service. The
// routing identifiers travel with every call so the remote side can account
// usage per execution.
type Invocation struct {
	ExecutionID string `json:"execution_id"`
	UserID      string `json:"user_id"`
	ProductID   string `json:"product_id"`
	Service     string `json:"service"`
	Size        string `json:"size"`
	Prompt      string `json:"prompt"`
}

// Client is the boundary to the external generation service. Invoke blocks
// until the remote side answers and returns the raw body for the caller to
// destructure according to the service kind it requested.
type Client interface {
	Invoke(ctx context.Context, inv Invocation) (json.RawMessage, error)
}

// InvocationError reports a generation call whose status code was not the
// success code. It carries the remote status and body for diagnostics.
type InvocationError struct {
	StatusCode int
	Body       string
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("generation service returned status code %d with body %s", e.StatusCode, e.Body)
}

// envelope is the wrapping contract of the invocation boundary: the remote
// side always answers with its own status code plus an opaque body.
type envelope struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

// HTTPClient invokes the generation service over HTTP.
type HTTPClient struct {
	url    string
	client *http.Client
	logger *log.Logger
}

// NewHTTPClient creates a Client that POSTs invocations to url.
func NewHTTPClient(url string, timeout time.Duration, logger *log.Logger) *HTTPClient {
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &HTTPClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Invoke performs one synchronous generation call. The body is trusted only
// when the reported status code is 200; anything else becomes an
// InvocationError carrying the remote status and body.
func (c *HTTPClient) Invoke(ctx context.Context, inv Invocation) (json.RawMessage, error) {
	payload, err := json.Marshal(inv)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invocation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create invocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Printf("invoking %s service for execution %s", inv.Service, inv.ExecutionID)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invocation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read invocation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &InvocationError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode invocation envelope: %w", err)
	}
	if env.StatusCode != http.StatusOK {
		return nil, &InvocationError{StatusCode: env.StatusCode, Body: string(env.Body)}
	}
	return env.Body, nil
}

// ChatText destructures a chat-completion shaped body and returns the
// generated text.
func ChatText(body json.RawMessage) (string, error) {
	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode chat body: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("chat body contains no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}

// ImageURL destructures an image-generation shaped body and returns the URL
// of the first generated image.
func ImageURL(body json.RawMessage) (string, error) {
	var decoded struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode image body: %w", err)
	}
	if len(decoded.Data) == 0 || decoded.Data[0].URL == "" {
		return "", fmt.Errorf("image body contains no image URL")
	}
	return decoded.Data[0].URL, nil
}
