// Package binance implements the exchange-news source adapter on the
// public Binance announcement catalog.
package binance

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
	defaultBaseURL     = "https://www.binance.com"
	defaultHTTPTimeout = 10 * time.Second
	defaultPageSize    = 50
	announcementURL    = "https://www.binance.com/en/support/announcement/%s"
)

// Client wraps the public announcement catalog endpoint.
type Client struct {
	baseURL    string
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

// WithPageSize bounds how many announcements one fetch returns.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient constructs an announcement catalog client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		pageSize:   defaultPageSize,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// LatestAnnouncements fetches one fixed-size page of recent announcements
// across all catalogs.
func (c *Client) LatestAnnouncements(ctx context.Context) ([]Announcement, error) {
	endpoint := fmt.Sprintf(
		"%s/bapi/apex/v1/public/apex/cms/article/list/query?type=1&pageNo=1&pageSize=%d",
		c.baseURL, c.pageSize,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("binance: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("binance: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("binance: read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, source.ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("binance: http status %d: %s", resp.StatusCode, string(body))
	}

	var payload catalogResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("binance: decode response: %w", err)
	}

	var announcements []Announcement
	for _, catalog := range payload.Data.Catalogs {
		announcements = append(announcements, catalog.Articles...)
	}
	return announcements, nil
}

type catalogResponse struct {
	Data struct {
		Catalogs []struct {
			Articles []Announcement `json:"articles"`
		} `json:"catalogs"`
	} `json:"data"`
}

// Announcement is one exchange announcement headline.
type Announcement struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	ReleaseDate int64  `json:"releaseDate"` // unix millis
}
