// Package collector implements the mention collection pipeline: candidate
// normalization, duplicate gating and the per-cycle orchestration across
// all tracked assets and configured sources.
package collector

import (
	"context"
	"time"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/sentiment"
	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

// Mention is the canonical persisted record of one piece of text
// referencing an asset. Mentions are append-only: created here, never
// updated or deleted.
type Mention struct {
	Timestamp      time.Time
	AssetID        int64
	SourceID       int64
	Content        string
	SentimentScore float64
	SentimentLabel sentiment.Label
	URL            string
}

// Store is the persistence contract the pipeline consumes. Schema and
// connection management live behind it.
type Store interface {
	// LoadSources maps source names to their ids.
	LoadSources(ctx context.Context) (map[string]int64, error)
	// LoadAssets returns all tracked assets.
	LoadAssets(ctx context.Context) ([]source.Asset, error)
	// ExistsMention reports whether a mention with this asset and url was
	// stored within the trailing window.
	ExistsMention(ctx context.Context, assetID int64, url string, window time.Duration) (bool, error)
	// InsertMention appends one mention.
	InsertMention(ctx context.Context, m *Mention) error
	// Ping verifies store liveness.
	Ping(ctx context.Context) error
	// Reconnect re-establishes the store connection after a failed Ping.
	Reconnect(ctx context.Context) error
}

// State is the lifecycle of one collection cycle.
type State string

const (
	StateIdle      State = "Idle"
	StateRunning   State = "Running"
	StateCompleted State = "Completed"
	StateFailed    State = "Failed"
)

// SourceStats breaks cycle counters down per source.
type SourceStats struct {
	Fetched int `json:"fetched"`
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Summary is the outcome of one cycle, consumable by a scheduler, a
// service wrapper or a UI.
type Summary struct {
	State           State                   `json:"state"`
	AssetsProcessed int                     `json:"assets_processed"`
	Saved           int                     `json:"mentions_saved"`
	Skipped         int                     `json:"mentions_skipped"`
	Errors          int                     `json:"errors"`
	PerSource       map[string]*SourceStats `json:"per_source"`
	StartedAt       time.Time               `json:"started_at"`
	FinishedAt      time.Time               `json:"finished_at"`
}

func (s *Summary) sourceStats(name string) *SourceStats {
	stats, ok := s.PerSource[name]
	if !ok {
		stats = &SourceStats{}
		s.PerSource[name] = stats
	}
	return stats
}
