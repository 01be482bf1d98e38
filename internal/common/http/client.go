// internal/common/http/client.go

// Package http holds the thin HTTP client the planner calls go through.
package http

import (
	"bytes"
	"context"
	"net/http"
	"time"
)

// Client is an http.Client with a fixed per-request timeout.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a Client whose requests time out after timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// PostJSON issues a JSON POST and returns the raw response. The caller
// owns the response body.
func (c *Client) PostJSON(ctx context.Context, url string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}
