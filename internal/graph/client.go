// Package graph is a minimal client for the Microsoft-Graph-style
// document store the platform keeps matter files in. It covers exactly
// one concern: downloading drive item content on the caller's behalf.
package graph

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client downloads drive item content over HTTP. It holds no
// credentials of its own; every call forwards the caller's token.
type Client struct {
	baseURL    string
	maxBytes   int64
	httpClient *http.Client
	limiter    *RateLimiter
}

func NewClient(baseURL string, maxBytes int64, rl RateLimit) *Client {
	if maxBytes <= 0 {
		maxBytes = 100 << 20
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: NewRateLimiter(rl),
	}
}

// FetchItemContent downloads the raw bytes of a drive item.
// Failures map to the package's error taxonomy: ErrItemNotFound,
// ErrUnauthorized, or TransientError for anything retryable.
func (c *Client) FetchItemContent(ctx context.Context, itemID, accessToken string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + "/drives/items/" + url.PathEscape(itemID) + "/content"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransientError{Message: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrItemNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.RecordThrottle(retryAfterSeconds(resp))
		}
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &TransientError{StatusCode: resp.StatusCode, Message: string(respBody)}
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch item %s: status %d: %s", itemID, resp.StatusCode, string(respBody))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, &TransientError{Message: fmt.Sprintf("read item %s: %s", itemID, err)}
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("item %s exceeds max size (%d bytes)", itemID, c.maxBytes)
	}
	return data, nil
}

func retryAfterSeconds(resp *http.Response) int {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
