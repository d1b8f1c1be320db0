package collector

import (
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/sentiment"
	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

// DefaultMaxContentLen is the store column capacity assumed when none is
// configured.
const DefaultMaxContentLen = 500

// Normalizer turns raw source candidates into canonical mentions. It
// validates required fields, truncates content to the store's capacity and
// scores sentiment exactly once per surviving candidate.
type Normalizer struct {
	maxContentLen int
	clock         clockwork.Clock
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithNormalizerClock injects the clock used for mention timestamps.
func WithNormalizerClock(clock clockwork.Clock) NormalizerOption {
	return func(n *Normalizer) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// NewNormalizer builds a Normalizer bounded by maxContentLen.
func NewNormalizer(maxContentLen int, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		maxContentLen: maxContentLen,
		clock:         clockwork.NewRealClock(),
	}
	if n.maxContentLen <= 0 {
		n.maxContentLen = DefaultMaxContentLen
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize validates and converts one candidate. A candidate without
// content or url is rejected with ErrInvalidCandidate; overlong content is
// silently truncated, never an error.
func (n *Normalizer) Normalize(candidate source.Candidate, asset source.Asset, sourceID int64) (*Mention, error) {
	content := strings.TrimSpace(candidate.Text)
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidCandidate)
	}
	if strings.TrimSpace(candidate.URL) == "" {
		return nil, fmt.Errorf("%w: missing url", ErrInvalidCandidate)
	}

	content = truncate(content, n.maxContentLen)
	score, label := sentiment.Score(content)

	return &Mention{
		Timestamp:      n.clock.Now().UTC(),
		AssetID:        asset.ID,
		SourceID:       sourceID,
		Content:        content,
		SentimentScore: score,
		SentimentLabel: label,
		URL:            candidate.URL,
	}, nil
}

// truncate bounds s to max characters without splitting a rune.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
