// Package coingecko implements the coin-metadata source adapter on the
// public CoinGecko API.
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

const (
	defaultBaseURL     = "https://api.coingecko.com"
	defaultHTTPTimeout = 10 * time.Second
)

// ErrCoinNotFound indicates the symbol is not listed on the provider.
var ErrCoinNotFound = errors.New("coingecko: coin not found")

// Client wraps the CoinGecko coins API. The symbol-to-id directory is
// fetched once and cached for the client's lifetime.
type Client struct {
	baseURL    string
	httpClient *http.Client

	directoryMu sync.RWMutex
	idBySymbol  map[string]string
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

// NewClient constructs a CoinGecko client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// CoinDetail fetches the coin page (description and links) for a symbol,
// refreshing the symbol directory on first use.
//
// requestIssued reports how many network calls actually went out, so the
// caller can charge them against its quota.
func (c *Client) CoinDetail(ctx context.Context, symbol string) (*Coin, int, error) {
	requests := 0
	id, ok := c.idFromCache(symbol)
	if !ok {
		requests++
		if err := c.refreshDirectory(ctx); err != nil {
			return nil, requests, err
		}
		if id, ok = c.idFromCache(symbol); !ok {
			return nil, requests, ErrCoinNotFound
		}
	}

	endpoint := fmt.Sprintf(
		"%s/api/v3/coins/%s?localization=false&tickers=false&market_data=false&community_data=false&developer_data=false",
		c.baseURL, url.PathEscape(id),
	)
	requests++
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, requests, err
	}

	var coin Coin
	if err := json.Unmarshal(body, &coin); err != nil {
		return nil, requests, fmt.Errorf("coingecko: decode coin: %w", err)
	}
	coin.ID = id
	return &coin, requests, nil
}

func (c *Client) idFromCache(symbol string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(symbol))
	if key == "" {
		return "", false
	}
	c.directoryMu.RLock()
	id, ok := c.idBySymbol[key]
	c.directoryMu.RUnlock()
	return id, ok
}

func (c *Client) refreshDirectory(ctx context.Context) error {
	body, err := c.get(ctx, c.baseURL+"/api/v3/coins/list")
	if err != nil {
		return err
	}
	var entries []listEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return fmt.Errorf("coingecko: decode coins list: %w", err)
	}

	index := make(map[string]string, len(entries))
	for _, entry := range entries {
		key := strings.ToLower(strings.TrimSpace(entry.Symbol))
		if key == "" || entry.ID == "" {
			continue
		}
		// First listing wins; CoinGecko orders canonical coins first.
		if _, exists := index[key]; !exists {
			index[key] = entry.ID
		}
	}

	c.directoryMu.Lock()
	c.idBySymbol = index
	c.directoryMu.Unlock()
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("coingecko: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("coingecko: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coingecko: read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, source.ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("coingecko: http status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

type listEntry struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Coin is the subset of the coin page the adapter consumes.
type Coin struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	Description struct {
		EN string `json:"en"`
	} `json:"description"`
	LastUpdated time.Time `json:"last_updated"`
}
