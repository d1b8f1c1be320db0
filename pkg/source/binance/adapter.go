package binance

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

func init() {
	source.RegisterAdapter("binance-news", func(name string, cfg *source.AdapterConfig, gate source.Gate) (source.Adapter, error) {
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
		return NewAdapter(name, NewClient(opts...), gate), nil
	})
}

// Adapter filters exchange announcements down to those naming the asset.
type Adapter struct {
	name   string
	client *Client
	gate   source.Gate
}

// NewAdapter wires an exchange-news adapter around the client and gate.
func NewAdapter(name string, client *Client, gate source.Gate) *Adapter {
	return &Adapter{name: name, client: client, gate: gate}
}

// Source returns the source name this adapter collects for.
func (a *Adapter) Source() string { return a.name }

// Fetch pulls the latest announcement page and keeps headlines mentioning
// the asset's symbol or full name.
func (a *Adapter) Fetch(ctx context.Context, asset source.Asset) ([]source.Candidate, error) {
	if !a.gate.CanProceed(a.name) {
		logx.WithContext(ctx).Infof("source %s: quota reached, skipping %s", a.name, asset.Symbol)
		return nil, nil
	}

	a.gate.RecordRequest(a.name)
	announcements, err := a.client.LatestAnnouncements(ctx)
	if err != nil {
		if errors.Is(err, source.ErrRateLimited) {
			a.gate.MarkExhausted(a.name)
			logx.WithContext(ctx).Infof("source %s: provider rate limit, exhausted for today", a.name)
			return nil, nil
		}
		return nil, err
	}

	var candidates []source.Candidate
	for _, announcement := range announcements {
		title := strings.TrimSpace(announcement.Title)
		if title == "" || announcement.Code == "" {
			continue
		}
		if !source.MatchesAsset(title, asset) {
			continue
		}
		candidates = append(candidates, source.Candidate{
			Text:        title,
			URL:         fmt.Sprintf(announcementURL, announcement.Code),
			PublishedAt: time.UnixMilli(announcement.ReleaseDate).UTC(),
		})
	}
	return candidates, nil
}
