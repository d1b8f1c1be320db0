package reddit

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

const (
	defaultMinTextLen          = 10
	defaultSymbolChannelMinLen = 3
	defaultRequestDelay        = time.Second
)

// defaultChannels is the fixed base set of general crypto subreddits every
// asset is searched in.
var defaultChannels = []string{"CryptoCurrency", "CryptoMarkets"}

func init() {
	source.RegisterAdapter("reddit", func(name string, cfg *source.AdapterConfig, gate source.Gate) (source.Adapter, error) {
		opts := []Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.UserAgent != "" {
			opts = append(opts, WithUserAgent(cfg.UserAgent))
		}
		if cfg.MaxResults > 0 {
			opts = append(opts, WithSearchLimit(cfg.MaxResults))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		adapter := NewAdapter(name, NewClient(opts...), gate)
		if len(cfg.Channels) > 0 {
			adapter.channels = cfg.Channels
		}
		if cfg.MinTextLen > 0 {
			adapter.minTextLen = cfg.MinTextLen
		}
		if cfg.SymbolChannelMinLen > 0 {
			adapter.symbolChannelMinLen = cfg.SymbolChannelMinLen
		}
		if cfg.Delay > 0 {
			adapter.delay = cfg.Delay
		}
		return adapter, nil
	})
}

// Adapter searches a set of subreddits for mentions of an asset.
type Adapter struct {
	name                string
	client              *Client
	gate                source.Gate
	channels            []string
	minTextLen          int
	symbolChannelMinLen int
	delay               time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// NewAdapter wires a community-search adapter around the client and gate.
func NewAdapter(name string, client *Client, gate source.Gate) *Adapter {
	return &Adapter{
		name:                name,
		client:              client,
		gate:                gate,
		channels:            defaultChannels,
		minTextLen:          defaultMinTextLen,
		symbolChannelMinLen: defaultSymbolChannelMinLen,
		delay:               defaultRequestDelay,
		sleep:               sleepCtx,
	}
}

// Source returns the source name this adapter collects for.
func (a *Adapter) Source() string { return a.name }

// Fetch searches the base subreddits plus the asset's own subreddit (only
// for symbols long enough that the channel plausibly exists). Inaccessible
// channels are skipped, never fatal; candidates below the minimum text
// length are discarded as noise.
func (a *Adapter) Fetch(ctx context.Context, asset source.Asset) ([]source.Candidate, error) {
	channels := make([]string, 0, len(a.channels)+1)
	channels = append(channels, a.channels...)
	if len(asset.Symbol) > a.symbolChannelMinLen {
		channels = append(channels, assetChannel(asset))
	}

	var candidates []source.Candidate
	for i, channel := range channels {
		if i > 0 && a.delay > 0 {
			if err := a.sleep(ctx, a.delay); err != nil {
				return candidates, err
			}
		}

		if !a.gate.CanProceed(a.name) {
			logx.WithContext(ctx).Infof("source %s: quota reached, stopping at r/%s", a.name, channel)
			return candidates, nil
		}
		a.gate.RecordRequest(a.name)
		exists, err := a.client.SubredditExists(ctx, channel)
		if err != nil {
			logx.WithContext(ctx).Errorf("source %s: probe r/%s failed: %v", a.name, channel, err)
			continue
		}
		if !exists {
			logx.WithContext(ctx).Infof("source %s: r/%s inaccessible, skipping", a.name, channel)
			continue
		}

		if !a.gate.CanProceed(a.name) {
			return candidates, nil
		}
		a.gate.RecordRequest(a.name)
		posts, err := a.client.Search(ctx, channel, asset.Symbol)
		if err != nil {
			if errors.Is(err, source.ErrRateLimited) {
				a.gate.MarkExhausted(a.name)
				logx.WithContext(ctx).Infof("source %s: provider rate limit, exhausted for today", a.name)
				return candidates, nil
			}
			logx.WithContext(ctx).Errorf("source %s: search r/%s failed: %v", a.name, channel, err)
			continue
		}

		for _, post := range posts {
			text := strings.TrimSpace(post.Title)
			if body := strings.TrimSpace(post.SelfText); body != "" {
				text = text + " " + body
			}
			if len(text) < a.minTextLen {
				continue
			}
			if post.Permalink == "" {
				continue
			}
			candidates = append(candidates, source.Candidate{
				Text:        text,
				URL:         defaultBaseURL + post.Permalink,
				PublishedAt: time.Unix(int64(post.CreatedUTC), 0).UTC(),
			})
		}
	}
	return candidates, nil
}

// assetChannel derives the asset-specific subreddit from the full name,
// e.g. "Bitcoin Cash" -> "BitcoinCash".
func assetChannel(asset source.Asset) string {
	return strings.ReplaceAll(asset.FullName, " ", "")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
