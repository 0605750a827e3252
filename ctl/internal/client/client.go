package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vitalsim/vitalsim/pkg/types"
)

// DefaultTimeout bounds each request when the caller passes no timeout.
const DefaultTimeout = 10 * time.Second

// Client talks to one vitalsim server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the server at baseURL (e.g. "http://localhost:8080").
// A trailing slash on baseURL is tolerated.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Status returns the server's current generation mode.
func (c *Client) Status(ctx context.Context) (string, error) {
	var resp types.StatusResponse
	if err := c.get(ctx, "/status", &resp); err != nil {
		return "", err
	}
	return resp.Mode, nil
}

// SetMode asks the server to switch to mode. The mode string is passed
// through unvalidated — the server is the single authority on mode names,
// and its rejection message is surfaced in the returned error.
func (c *Client) SetMode(ctx context.Context, mode string) (types.SetModeResponse, error) {
	var resp types.SetModeResponse

	u := c.baseURL + "/set_mode/" + url.PathEscape(mode)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return resp, fmt.Errorf("build request: %w", err)
	}
	httpResp, err := c.http.Do(req)
	if err != nil {
		return resp, fmt.Errorf("POST %s: %w", u, err)
	}
	defer httpResp.Body.Close()

	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return resp, fmt.Errorf("POST %s: decode response: %w", u, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		if resp.Message != "" {
			return resp, fmt.Errorf("server rejected mode %q: %s", mode, resp.Message)
		}
		return resp, fmt.Errorf("POST %s: status %d", u, httpResp.StatusCode)
	}
	return resp, nil
}

// Data fetches the next batch of points. An empty slice means the generator
// is stopped.
func (c *Client) Data(ctx context.Context) ([]types.Point, error) {
	var pts []types.Point
	if err := c.get(ctx, "/data", &pts); err != nil {
		return nil, err
	}
	return pts, nil
}

func (c *Client) get(ctx context.Context, path string, v interface{}) error {
	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", u, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", u, err)
	}
	return nil
}
