package newsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

const defaultRecencyWindow = 24 * time.Hour

func init() {
	source.RegisterAdapter("newsapi", func(name string, cfg *source.AdapterConfig, gate source.Gate) (source.Adapter, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("newsapi: api_key is required")
		}
		opts := []Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.MaxResults > 0 {
			opts = append(opts, WithPageSize(cfg.MaxResults))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		return NewAdapter(name, NewClient(cfg.APIKey, opts...), gate), nil
	})
}

// Adapter turns NewsAPI article search into mention candidates.
type Adapter struct {
	name   string
	client *Client
	gate   source.Gate
	window time.Duration
}

// NewAdapter wires a News adapter around the given client and quota gate.
func NewAdapter(name string, client *Client, gate source.Gate) *Adapter {
	return &Adapter{
		name:   name,
		client: client,
		gate:   gate,
		window: defaultRecencyWindow,
	}
}

// Source returns the source name this adapter collects for.
func (a *Adapter) Source() string { return a.name }

// Fetch searches recent articles mentioning the asset's symbol or full name.
func (a *Adapter) Fetch(ctx context.Context, asset source.Asset) ([]source.Candidate, error) {
	if !a.gate.CanProceed(a.name) {
		logx.WithContext(ctx).Infof("source %s: quota reached, skipping %s", a.name, asset.Symbol)
		return nil, nil
	}

	query := fmt.Sprintf("%q OR %q", asset.Symbol, asset.FullName)
	since := time.Now().Add(-a.window)
	a.gate.RecordRequest(a.name)
	articles, err := a.client.Everything(ctx, query, since)
	if err != nil {
		if errors.Is(err, source.ErrRateLimited) {
			a.gate.MarkExhausted(a.name)
			logx.WithContext(ctx).Infof("source %s: provider rate limit, exhausted for today", a.name)
			return nil, nil
		}
		return nil, err
	}

	candidates := make([]source.Candidate, 0, len(articles))
	for _, article := range articles {
		text := strings.TrimSpace(article.Title)
		if desc := strings.TrimSpace(article.Description); desc != "" {
			text = text + " " + desc
		}
		if text == "" || article.URL == "" {
			logx.WithContext(ctx).Infof("source %s: dropping article without text or url", a.name)
			continue
		}
		candidates = append(candidates, source.Candidate{
			Text:        text,
			URL:         article.URL,
			PublishedAt: article.PublishedAt,
		})
	}
	return candidates, nil
}
