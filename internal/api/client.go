// Package api is the REST client for the remote expense service. Every
// endpoint answers with the same envelope: {"status", "message", "data"}.
// A response whose status field is not "success" is a failure regardless of
// the HTTP status code.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnauthorized marks a 401-equivalent response. The dispatcher treats it
// as a session-wide event, not just a per-call failure.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a structured failure from the service.
type Error struct {
	StatusCode int    // HTTP status, 0 when the envelope itself reported failure
	Message    string // server-provided message, may be empty
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error (http %d)", e.StatusCode)
}

// Unwrap exposes ErrUnauthorized for 401 responses, so errors.Is sees the
// sentinel while Message still reads the server's text.
func (e *Error) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Message extracts the server's message from err, falling back to the given
// resource-specific default. This is the normalization rule every
// orchestrator applies before surfacing an error as state.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// TokenSource supplies the bearer token for authenticated calls. Returning
// false means no token is attached.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// StaticToken is a fixed-token TokenSource, mostly for tests.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, bool) { return string(t), t != "" }

// Client talks to the expense service. It is stateless apart from the
// injected token source and safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

const DefaultTimeout = 10 * time.Second

// NewClient builds a client for the given base URL ("https://host/api").
// A nil tokens source means calls go out unauthenticated.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do performs one call and decodes the envelope's data field into out (out
// may be nil when the caller only cares about success).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if decodeErr := json.Unmarshal(raw, &env); decodeErr != nil {
		if resp.StatusCode == http.StatusUnauthorized {
			return &Error{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("decode envelope (http %d): %w", resp.StatusCode, decodeErr)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &Error{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if env.Status != "success" {
		return &Error{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
