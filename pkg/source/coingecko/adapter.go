package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

func init() {
	source.RegisterAdapter("coingecko", func(name string, cfg *source.AdapterConfig, gate source.Gate) (source.Adapter, error) {
		opts := []Option{}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		return NewAdapter(name, NewClient(opts...), gate), nil
	})
}

// Adapter surfaces the provider's coin description as a metadata mention.
type Adapter struct {
	name   string
	client *Client
	gate   source.Gate
}

// NewAdapter wires a coin-metadata adapter around the client and gate.
func NewAdapter(name string, client *Client, gate source.Gate) *Adapter {
	return &Adapter{name: name, client: client, gate: gate}
}

// Source returns the source name this adapter collects for.
func (a *Adapter) Source() string { return a.name }

// Fetch looks the asset up by symbol and yields its description text as a
// single candidate. An unlisted symbol is a skip, not an error.
func (a *Adapter) Fetch(ctx context.Context, asset source.Asset) ([]source.Candidate, error) {
	if !a.gate.CanProceed(a.name) {
		logx.WithContext(ctx).Infof("source %s: quota reached, skipping %s", a.name, asset.Symbol)
		return nil, nil
	}

	coin, requests, err := a.client.CoinDetail(ctx, asset.Symbol)
	for i := 0; i < requests; i++ {
		a.gate.RecordRequest(a.name)
	}
	if err != nil {
		if errors.Is(err, source.ErrRateLimited) {
			a.gate.MarkExhausted(a.name)
			logx.WithContext(ctx).Infof("source %s: provider rate limit, exhausted for today", a.name)
			return nil, nil
		}
		if errors.Is(err, ErrCoinNotFound) {
			logx.WithContext(ctx).Infof("source %s: %s not listed, skipping", a.name, asset.Symbol)
			return nil, nil
		}
		return nil, err
	}

	description := strings.TrimSpace(coin.Description.EN)
	if description == "" {
		return nil, nil
	}
	candidate := source.Candidate{
		Text:        description,
		URL:         fmt.Sprintf("https://www.coingecko.com/en/coins/%s", coin.ID),
		PublishedAt: coin.LastUpdated,
	}
	return []source.Candidate{candidate}, nil
}
