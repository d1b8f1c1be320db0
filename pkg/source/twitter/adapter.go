package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

type searchResponse struct {
	Data []Tweet `json:"data"`
}

// Tweet is one recent-search hit.
type Tweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

func init() {
	source.RegisterAdapter("twitter", func(name string, cfg *source.AdapterConfig, gate source.Gate) (source.Adapter, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("twitter: api_key (bearer token) is required")
		}
		opts := []Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.MaxResults > 0 {
			opts = append(opts, WithMaxResults(cfg.MaxResults))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		return NewAdapter(name, NewClient(cfg.APIKey, opts...), gate), nil
	})
}

// Adapter turns microblog recent-search results into mention candidates.
type Adapter struct {
	name   string
	client *Client
	gate   source.Gate
}

// NewAdapter wires a microblog adapter around the client and quota gate.
func NewAdapter(name string, client *Client, gate source.Gate) *Adapter {
	return &Adapter{name: name, client: client, gate: gate}
}

// Source returns the source name this adapter collects for.
func (a *Adapter) Source() string { return a.name }

// Fetch searches recent posts mentioning the asset, retweets excluded.
func (a *Adapter) Fetch(ctx context.Context, asset source.Asset) ([]source.Candidate, error) {
	if !a.gate.CanProceed(a.name) {
		logx.WithContext(ctx).Infof("source %s: quota reached, skipping %s", a.name, asset.Symbol)
		return nil, nil
	}

	query := fmt.Sprintf("(%s OR %q) -is:retweet lang:en", asset.Symbol, asset.FullName)
	a.gate.RecordRequest(a.name)
	tweets, err := a.client.SearchRecent(ctx, query)
	if err != nil {
		if errors.Is(err, source.ErrRateLimited) {
			a.gate.MarkExhausted(a.name)
			logx.WithContext(ctx).Infof("source %s: provider rate limit, exhausted for today", a.name)
			return nil, nil
		}
		return nil, err
	}

	candidates := make([]source.Candidate, 0, len(tweets))
	for _, tweet := range tweets {
		text := strings.TrimSpace(tweet.Text)
		if text == "" || tweet.ID == "" {
			continue
		}
		candidates = append(candidates, source.Candidate{
			Text:        text,
			URL:         fmt.Sprintf("https://twitter.com/i/web/status/%s", tweet.ID),
			PublishedAt: parseCreatedAt(tweet.CreatedAt),
		})
	}
	return candidates, nil
}
