// Package twitter implements the microblog-search source adapter on the
// v2 recent-search endpoint.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

const (
	defaultBaseURL     = "https://api.twitter.com"
	defaultHTTPTimeout = 10 * time.Second
	defaultMaxResults  = 100
)

// Client wraps the v2 recent-search API with bearer-token auth.
type Client struct {
	baseURL     string
	bearerToken string
	maxResults  int
	httpClient  *http.Client
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithMaxResults bounds results per search (API accepts 10..100).
func WithMaxResults(n int) Option {
	return func(c *Client) {
		if n >= 10 && n <= 100 {
			c.maxResults = n
		}
	}
}

// NewClient constructs a recent-search client.
func NewClient(bearerToken string, opts ...Option) *Client {
	client := &Client{
		baseURL:     defaultBaseURL,
		bearerToken: bearerToken,
		maxResults:  defaultMaxResults,
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// SearchRecent returns recent tweets matching the query.
func (c *Client) SearchRecent(ctx context.Context, query string) ([]Tweet, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", fmt.Sprintf("%d", c.maxResults))
	params.Set("tweet.fields", "created_at")

	endpoint := fmt.Sprintf("%s/2/tweets/search/recent?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("twitter: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("twitter: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("twitter: read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, source.ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("twitter: http status %d: %s", resp.StatusCode, string(body))
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("twitter: decode response: %w", err)
	}
	return payload.Data, nil
}
