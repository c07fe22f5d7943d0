package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client fetches and decrypts upstream feed payloads.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a feed client. timeout bounds the whole request,
// including the response body read; the upstream specifies no timeout of its
// own so a slow feed would otherwise stall a refresh cycle indefinitely.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch performs a GET and returns the raw response body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

// FetchDecrypted fetches a feed endpoint and unwraps its encryption,
// returning the feed's JSON text.
func (c *Client) FetchDecrypted(ctx context.Context, url string) ([]byte, error) {
	body, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := Decrypt(body)
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", url, err)
	}
	return doc, nil
}
