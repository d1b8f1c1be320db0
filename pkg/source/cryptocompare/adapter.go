package cryptocompare

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

func init() {
	source.RegisterAdapter("cryptocompare", func(name string, cfg *source.AdapterConfig, gate source.Gate) (source.Adapter, error) {
		opts := []Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		adapter := NewAdapter(name, NewClient(cfg.APIKey, opts...), gate)
		if cfg.MaxResults > 0 {
			adapter.maxResults = cfg.MaxResults
		}
		return adapter, nil
	})
}

const defaultMaxResults = 50

// Adapter filters the aggregator's latest-news batch down to articles that
// actually mention the asset.
type Adapter struct {
	name       string
	client     *Client
	gate       source.Gate
	maxResults int
}

// NewAdapter wires an aggregator-news adapter around the client and gate.
func NewAdapter(name string, client *Client, gate source.Gate) *Adapter {
	return &Adapter{name: name, client: client, gate: gate, maxResults: defaultMaxResults}
}

// Source returns the source name this adapter collects for.
func (a *Adapter) Source() string { return a.name }

// Fetch pulls the latest batch and keeps items whose title or body mention
// the asset's symbol or full name.
func (a *Adapter) Fetch(ctx context.Context, asset source.Asset) ([]source.Candidate, error) {
	if !a.gate.CanProceed(a.name) {
		logx.WithContext(ctx).Infof("source %s: quota reached, skipping %s", a.name, asset.Symbol)
		return nil, nil
	}

	a.gate.RecordRequest(a.name)
	items, err := a.client.LatestNews(ctx)
	if err != nil {
		if errors.Is(err, source.ErrRateLimited) {
			a.gate.MarkExhausted(a.name)
			logx.WithContext(ctx).Infof("source %s: provider rate limit, exhausted for today", a.name)
			return nil, nil
		}
		return nil, err
	}

	var candidates []source.Candidate
	for _, item := range items {
		if len(candidates) >= a.maxResults {
			break
		}
		if item.URL == "" {
			continue
		}
		if !source.MatchesAsset(item.Title, asset) && !source.MatchesAsset(item.Body, asset) {
			continue
		}
		text := strings.TrimSpace(item.Title)
		if body := strings.TrimSpace(item.Body); body != "" {
			text = text + " " + body
		}
		if text == "" {
			continue
		}
		candidates = append(candidates, source.Candidate{
			Text:        text,
			URL:         item.URL,
			PublishedAt: time.Unix(item.PublishedOn, 0).UTC(),
		})
	}
	return candidates, nil
}
