// Package mcp exposes the REST API as Model Context Protocol tools so an AI
// assistant can browse and transition entities through the same surface the
// web dashboard uses.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIClient is a thin HTTP client for the backend REST API. Tools never talk
// to the database; every call goes through the public API so validation and
// lifecycle rules apply exactly once.
type APIClient struct {
	BaseURL string
	ActorID string
	HTTP    *http.Client
}

// NewAPIClient creates a client for the API mounted at baseURL.
func NewAPIClient(baseURL, actorID string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		ActorID: actorID,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Get performs a GET request and returns the raw response body and status.
func (c *APIClient) Get(ctx context.Context, path string, query url.Values) (string, int, error) {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", 0, err
	}
	return c.do(req)
}

// Send performs a request carrying a JSON body and returns the raw response
// body and status.
func (c *APIClient) Send(ctx context.Context, method, path string, payload interface{}) (string, int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return "", 0, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.ActorID != "" {
		req.Header.Set("X-Actor-Id", c.ActorID)
	}
	return c.do(req)
}

func (c *APIClient) do(req *http.Request) (string, int, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read API response: %w", err)
	}
	return string(data), resp.StatusCode, nil
}
