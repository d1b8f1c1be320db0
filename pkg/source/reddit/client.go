// Package reddit implements the community-search source adapter against the
// public reddit JSON endpoints.
package reddit

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
	defaultBaseURL     = "https://www.reddit.com"
	defaultUserAgent   = "CryptoAiDataCollector/1.0"
	defaultHTTPTimeout = 10 * time.Second
	defaultSearchLimit = 100
)

// Client wraps the read-only reddit JSON API.
type Client struct {
	baseURL    string
	userAgent  string
	limit      int
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

// WithBaseURL overrides the default reddit root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithUserAgent sets the User-Agent reddit requires for API consumers.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithSearchLimit bounds results per subreddit search.
func WithSearchLimit(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= 100 {
			c.limit = n
		}
	}
}

// NewClient constructs a reddit client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		limit:      defaultSearchLimit,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// SubredditExists probes /r/<name>/about.json. Private, banned and missing
// subreddits all count as inaccessible.
func (c *Client) SubredditExists(ctx context.Context, subreddit string) (bool, error) {
	endpoint := fmt.Sprintf("%s/r/%s/about.json", c.baseURL, url.PathEscape(subreddit))
	status, _, err := c.get(ctx, endpoint)
	if err != nil {
		return false, err
	}
	return status == http.StatusOK, nil
}

// Search runs a subreddit-restricted search over roughly the last day,
// newest first, bounded by the configured limit.
func (c *Client) Search(ctx context.Context, subreddit, query string) ([]Post, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("restrict_sr", "1")
	params.Set("t", "day")
	params.Set("sort", "new")
	params.Set("limit", fmt.Sprintf("%d", c.limit))

	endpoint := fmt.Sprintf("%s/r/%s/search.json?%s", c.baseURL, url.PathEscape(subreddit), params.Encode())
	status, body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status == http.StatusTooManyRequests {
		return nil, source.ErrRateLimited
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("reddit: http status %d searching r/%s", status, subreddit)
	}

	var payload listingResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("reddit: decode listing: %w", err)
	}
	posts := make([]Post, 0, len(payload.Data.Children))
	for _, child := range payload.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("reddit: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, fmt.Errorf("reddit: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reddit: read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
