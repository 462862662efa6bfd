package client

import (
	"bytes"
	"context"
	"fmt"
)

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
	LoggedIn  bool   `json:"logged_in"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Prompt       string `json:"prompt"`
	Style        string `json:"style,omitempty"`
	Title        string `json:"title,omitempty"`
	Instrumental bool   `json:"instrumental"`
	Download     bool   `json:"download"`
}

// GenerateResponse is the body the backend returns for a finished generation.
type GenerateResponse struct {
	Success       bool   `json:"success"`
	URL           string `json:"url,omitempty"`
	Prompt        string `json:"prompt,omitempty"`
	Style         string `json:"style,omitempty"`
	Title         string `json:"title,omitempty"`
	FilePath      string `json:"file_path,omitempty"`
	DownloadError string `json:"download_error,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Status fetches the automation connection status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	req, err := c.newRequest(ctx, "GET", c.baseURL+"/status", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "get status")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var status StatusResponse
	if err := decodeJSON(resp.Body, &status, "status"); err != nil {
		return nil, err
	}

	return &status, nil
}

// Health probes the backend liveness endpoint.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := c.newRequest(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "check health")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var health HealthResponse
	if err := decodeJSON(resp.Body, &health, "health"); err != nil {
		return nil, err
	}

	return &health, nil
}

// Generate submits a song generation request and waits for the backend to
// finish. A 2xx response is returned as-is even when Success is false; the
// caller decides what an unsuccessful body means.
func (c *Client) Generate(ctx context.Context, body *GenerateRequest) (*GenerateResponse, error) {
	if body == nil {
		return nil, fmt.Errorf("generate request must not be nil")
	}

	jsonBody, err := encodeJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, "POST", c.baseURL+"/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "generate song")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result GenerateResponse
	if err := decodeJSON(resp.Body, &result, "generate"); err != nil {
		return nil, err
	}

	return &result, nil
}
