// Package cryptocompare implements the aggregator-news source adapter on
// the CryptoCompare latest-news feed.
package cryptocompare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

const (
	defaultBaseURL     = "https://min-api.cryptocompare.com"
	defaultHTTPTimeout = 10 * time.Second
)

// Client wraps the CryptoCompare news feed.
type Client struct {
	baseURL    string
	apiKey     string
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

// NewClient constructs a CryptoCompare client. The API key is optional for
// the public news feed but raises the rate limit when present.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// LatestNews fetches the most recent fixed-size batch of English articles.
func (c *Client) LatestNews(ctx context.Context) ([]NewsItem, error) {
	endpoint := fmt.Sprintf("%s/data/v2/news/?lang=EN", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptocompare: build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Apikey "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("cryptocompare: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cryptocompare: read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, source.ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cryptocompare: http status %d: %s", resp.StatusCode, string(body))
	}

	var payload newsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("cryptocompare: decode response: %w", err)
	}
	return payload.Data, nil
}

type newsResponse struct {
	Data []NewsItem `json:"Data"`
}

// NewsItem is one article from the aggregator feed.
type NewsItem struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	URL         string `json:"url"`
	PublishedOn int64  `json:"published_on"`
}
