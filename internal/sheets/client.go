// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package sheets

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
	URL     string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d for %s", e.Status, e.URL)
	}
	return fmt.Sprintf("backend returned %d for %s: %s", e.Status, e.URL, e.Message)
}

// Client performs range fetches over HTTP.
type Client struct {
	HTTP *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client, mostly for tests and for
// callers that want their own timeouts.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTP = h }
}

// NewClient returns a Client using http.DefaultClient unless overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{HTTP: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Values fetches the grid for req. There is no retry; transport and API
// errors go straight back to the caller.
func (c *Client) Values(ctx context.Context, req Request) (Grid, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	log.Debugf("GET %s", req.Redacted())

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: gjson.GetBytes(doc.Bytes(), "error.message").String(),
			URL:     req.Redacted(),
		}
	}

	return ParseGrid(doc.Bytes()), nil
}
