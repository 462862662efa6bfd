// Package client provides the HTTP client for the Suno automation backend.
//
// The backend exposes three endpoints:
//   - GET /status reports whether the browser automation is connected and logged in
//   - POST /generate submits one song generation request and blocks until it finishes
//   - GET /health is a plain liveness probe
//
// Callers bound every call with a context deadline; the client itself only
// enforces a generous outer cap.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sunoctl/sunoctl/internal/buildinfo"
)

const (
	// DefaultBaseURL is where the automation server listens by default.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout caps any single HTTP exchange. Generation runs a full
	// browser session on the backend, so the cap is long.
	DefaultTimeout = 10 * time.Minute

	maxErrorBody = 4096
)

// Client is the automation backend client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the backend at baseURL. Requests are traced
// through an otelhttp transport; spans are no-ops unless telemetry is enabled.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: otelhttp.NewTransport(
				http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "backend " + r.Method + " " + r.URL.Path
				}),
			),
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Operation string
	Code      int
	Body      string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s failed with status %d", e.Operation, e.Code)
	}

	return fmt.Sprintf("%s failed with status %d: %s", e.Operation, e.Code, e.Body)
}

// StatusCode returns the HTTP status code.
func (e *StatusError) StatusCode() int { return e.Code }

// Reason returns the standard reason phrase for the status code.
func (e *StatusError) Reason() string { return http.StatusText(e.Code) }

// Detail extracts the server's own explanation from a JSON error body,
// e.g. {"detail": "Song generation failed"}. It returns "" when none is present.
func (e *StatusError) Detail() string {
	var payload struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}

	if err := json.Unmarshal([]byte(e.Body), &payload); err != nil {
		return ""
	}

	if s, ok := payload.Detail.(string); ok && s != "" {
		return s
	}

	return payload.Error
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	if body == nil {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req)

	return req, nil
}

func (c *Client) setRequestHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "sunoctl/"+buildinfo.Version)
}

// do executes req and converts any non-2xx response into a *StatusError.
// On success the caller owns the response body.
func (c *Client) do(req *http.Request, operation string) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, unexpectedStatus(operation, resp.StatusCode, resp.Body)
	}

	return resp, nil
}

// unexpectedStatus creates a StatusError from an unexpected HTTP status code.
func unexpectedStatus(operation string, statusCode int, body io.Reader) error {
	respBody, readErr := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if readErr != nil {
		return &StatusError{Operation: operation, Code: statusCode}
	}

	return &StatusError{
		Operation: operation,
		Code:      statusCode,
		Body:      strings.TrimSpace(string(respBody)),
	}
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodeJSON(body io.Reader, v any, what string) error {
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}

		return fmt.Errorf("failed to parse %s response: %w", what, err)
	}

	return nil
}
