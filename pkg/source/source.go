// Package source defines the contract between the collection pipeline and
// the external content providers it pulls asset mentions from.
package source

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimited signals that the provider itself reported a hard rate
// limit. Adapters mark their source exhausted before returning it.
var ErrRateLimited = errors.New("source: provider rate limited")

// Canonical source names. They match the rows of the store's chat_source
// table; an adapter registers under exactly one of them.
const (
	News           = "News"
	Reddit         = "Reddit"
	Microblog      = "Microblog"
	AggregatorNews = "AggregatorNews"
	ExchangeNews   = "ExchangeNews"
	CoinMetadata   = "CoinMetadata"
)

// Asset is the tracked instrument adapters search for. Reference data,
// loaded once per cycle and read-only inside the pipeline.
type Asset struct {
	ID       int64
	Symbol   string
	FullName string
}

// Candidate is one raw, unvalidated piece of text returned by an adapter.
// It is consumed immediately by the normalizer and never persisted as-is.
type Candidate struct {
	Text        string
	URL         string
	PublishedAt time.Time // zero when the provider doesn't say
}

// Adapter wraps one external content API.
//
// Fetch returns whatever it gathered successfully: per-item problems are
// logged and swallowed inside the adapter, and a quota denial yields an
// empty slice without touching the network. An error return means the
// whole fetch failed; the orchestrator records it and moves on.
type Adapter interface {
	Source() string
	Fetch(ctx context.Context, asset Asset) ([]Candidate, error)
}

// Gate is the quota surface adapters consult. Implemented by quota.Tracker.
type Gate interface {
	CanProceed(source string) bool
	RecordRequest(source string)
	MarkExhausted(source string)
}

// NopGate admits everything. Handy for tests and one-off backfills.
type NopGate struct{}

func (NopGate) CanProceed(string) bool { return true }
func (NopGate) RecordRequest(string)   {}
func (NopGate) MarkExhausted(string)   {}
