// package sink is the boundary to the external title display. The host
// plugin exposes two IPC calls on loopback HTTP: set the title for a slot,
// clear it. Slot 0 is the only slot this companion ever addresses.
package sink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sink displays and clears titles. Implementations must treat the payload
// as opaque: the update loop relies on byte-for-byte comparison of what it
// handed over.
type Sink interface {
	SetTitle(ctx context.Context, slot int, payload string) error
	ClearTitle(ctx context.Context, slot int) error
}

const defaultBaseURL = "http://127.0.0.1:7163"

// HonorificClient talks to the local Honorific host endpoint:
// PUT /title/{slot} with the JSON payload, DELETE /title/{slot} to clear.
type HonorificClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHonorificClient creates a sink client. The HTTP client defaults to a
// short timeout so a wedged host cannot stall callers for long.
func NewHonorificClient(baseURL string, client *http.Client) *HonorificClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}
	return &HonorificClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

func (c *HonorificClient) SetTitle(ctx context.Context, slot int, payload string) error {
	url := fmt.Sprintf("%s/title/%d", c.baseURL, slot)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, strings.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *HonorificClient) ClearTitle(ctx context.Context, slot int) error {
	url := fmt.Sprintf("%s/title/%d", c.baseURL, slot)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req)
}

func (c *HonorificClient) do(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("honorific sink request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("honorific sink error: status %d", resp.StatusCode)
	}
	return nil
}
