// Package newsapi implements the News source adapter on top of the
// NewsAPI.org "everything" endpoint.
package newsapi

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
	defaultBaseURL     = "https://newsapi.org"
	defaultHTTPTimeout = 10 * time.Second
	defaultPageSize    = 100
)

// Client wraps access to the NewsAPI everything endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
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

// WithPageSize bounds how many articles one search returns.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= 100 {
			c.pageSize = n
		}
	}
}

// NewClient constructs a NewsAPI client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		pageSize:   defaultPageSize,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Everything searches recent English articles matching the query, scoped to
// the last day and sorted newest first.
func (c *Client) Everything(ctx context.Context, query string, since time.Time) ([]Article, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("from", since.UTC().Format("2006-01-02"))
	params.Set("pageSize", fmt.Sprintf("%d", c.pageSize))
	params.Set("apiKey", c.apiKey)

	endpoint := fmt.Sprintf("%s/v2/everything?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("newsapi: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("newsapi: read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, source.ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("newsapi: http status %d: %s", resp.StatusCode, string(body))
	}

	var payload everythingResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("newsapi: decode response: %w", err)
	}
	if payload.Status != "ok" {
		if payload.Code == "rateLimited" {
			return nil, source.ErrRateLimited
		}
		return nil, fmt.Errorf("newsapi: api error %s: %s", payload.Code, payload.Message)
	}
	return payload.Articles, nil
}
