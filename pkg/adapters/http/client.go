package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/davidvanstory/flowgenius/internal/logging"
	"github.com/davidvanstory/flowgenius/pkg/domain"
	"github.com/davidvanstory/flowgenius/pkg/observability"
)

const (
	defaultAttempts  = 3
	defaultBaseDelay = time.Second
)

// Client is the caller-side wrapper over the transport boundary. Execute
// is retried up to a fixed attempt count with linear backoff
// (attempt * baseDelay); the other operations are single-shot.
type Client struct {
	base      string
	hc        *http.Client
	attempts  int
	baseDelay time.Duration
	logger    *slog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.hc = hc
	}
}

// WithRetry overrides the execute retry budget.
func WithRetry(attempts int, baseDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.attempts = attempts
		c.baseDelay = baseDelay
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the boundary at base (e.g.
// "http://localhost:8080").
func NewClient(base string, opts ...ClientOption) *Client {
	c := &Client{
		base:      base,
		hc:        &http.Client{Timeout: 60 * time.Second},
		attempts:  defaultAttempts,
		baseDelay: defaultBaseDelay,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var res struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data,omitempty"`
		Error   string          `json:"error,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if !res.Success {
		return fmt.Errorf("operation failed (status %d): %s", resp.StatusCode, res.Error)
	}
	if out != nil && len(res.Data) > 0 && string(res.Data) != "null" {
		if err := json.Unmarshal(res.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// Execute runs one workflow tick, retrying on failure up to the attempt
// budget. The final error names the attempt count and the last failure.
func (c *Client) Execute(ctx context.Context, state *domain.SessionState) (*domain.SessionState, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		var next domain.SessionState
		err := c.do(ctx, http.MethodPost, "/v1/workflow/execute", state, &next)
		if err == nil {
			return &next, nil
		}
		lastErr = err
		c.logger.Warn("execute attempt failed",
			"attempt", attempt,
			"session_id", state.SessionID,
			"err", err,
		)

		if attempt < c.attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.baseDelay):
			}
		}
	}
	return nil, fmt.Errorf("workflow execution failed after %d attempts: %w", c.attempts, lastErr)
}

// CreateSession creates a fresh session on the server.
func (c *Client) CreateSession(ctx context.Context, sessionID, userID string) (*domain.SessionState, error) {
	var state domain.SessionState
	err := c.do(ctx, http.MethodPost, "/v1/sessions", createSessionRequest{
		SessionID: sessionID,
		UserID:    userID,
	}, &state)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// ValidateState runs the server-side pre-flight validation.
func (c *Client) ValidateState(ctx context.Context, state *domain.SessionState) (*ValidationResult, error) {
	var result ValidationResult
	if err := c.do(ctx, http.MethodPost, "/v1/workflow/validate", state, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Metrics fetches the workflow execution summary. Returns nil for a
// session that has never ticked.
func (c *Client) Metrics(ctx context.Context, sessionID string) (*observability.Summary, error) {
	var summary observability.Summary
	if err := c.do(ctx, http.MethodGet, "/v1/sessions/"+sessionID+"/metrics", nil, &summary); err != nil {
		return nil, err
	}
	if summary.SessionID == "" {
		return nil, nil
	}
	return &summary, nil
}

// ClearSession removes the session binding on the server.
func (c *Client) ClearSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/sessions/"+sessionID, nil, nil)
}
