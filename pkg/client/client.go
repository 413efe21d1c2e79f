package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrUnauthorized is returned when the daemon rejects the webhook token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnreachable wraps transport failures reaching the daemon.
	ErrUnreachable = errors.New("daemon unreachable")
)

// Client is the CourseSensei SDK client.
type Client struct {
	endpoint   string
	token      string
	http       *http.Client
	backoff    BackoffStrategy
	maxRetries int
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent to /webhook.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRetries sets how many times a failed call is retried.
func WithRetries(n int, b BackoffStrategy) Option {
	return func(c *Client) {
		c.maxRetries = n
		if b != nil {
			c.backoff = b
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a new client.
// endpoint defaults to "http://127.0.0.1:8090" if empty.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = "http://127.0.0.1:8090"
	}
	c := &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		backoff:    DefaultBackoff(),
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the daemon base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fulfill sends one query with the given contexts and session. Network
// failures and 5xx responses are retried with backoff.
func (c *Client) Fulfill(ctx context.Context, session string, q Query, contexts []Context) (Answer, error) {
	if q.Intent == "" {
		return Answer{}, fmt.Errorf("invalid query: missing intent")
	}

	body, err := json.Marshal(webhookRequest{
		Session: session,
		QueryResult: queryResult{
			Parameters:     q.Params,
			Intent:         intent{DisplayName: q.Intent},
			OutputContexts: contexts,
		},
	})
	if err != nil {
		return Answer{}, fmt.Errorf("failed to marshal query: %w", err)
	}

	var answer Answer
	err = c.do(ctx, http.MethodPost, "/webhook", body, &answer)
	return answer, err
}

// Ping checks the health of the daemon.
func (c *Client) Ping(ctx context.Context) (Status, error) {
	var status Status
	err := c.do(ctx, http.MethodGet, "/v1/health", nil, &status)
	return status, err
}

// Intents lists the intent names the daemon answers.
func (c *Client) Intents(ctx context.Context) ([]string, error) {
	var out struct {
		Intents []string `json:"intents"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/intents", nil, &out); err != nil {
		return nil, err
	}
	return out.Intents, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff.Next(attempt - 1)):
			case <-ctx.Done():
				return fmt.Errorf("%w after: %w", ctx.Err(), lastErr)
			}
		}

		retry, err := c.once(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return lastErr
}

// once performs a single call and reports whether a failure is retryable.
func (c *Client) once(ctx context.Context, method, path string, body []byte, out any) (bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return false, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return false, ErrUnauthorized
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}
	if hr, ok := out.(interface{ readHeader(http.Header) }); ok {
		hr.readHeader(resp.Header)
	}
	return false, nil
}
