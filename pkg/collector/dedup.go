package collector

import (
	"context"
	"time"
)

// DefaultDedupWindow is the trailing window inside which (asset, url) must
// be unique.
const DefaultDedupWindow = 24 * time.Hour

// DedupGate drops mentions whose (asset, url) pair was already stored
// within the trailing window. The check runs immediately before the
// corresponding insert; two concurrent collectors can still race past it,
// a documented limitation rather than a guarantee.
type DedupGate struct {
	store  Store
	window time.Duration
}

// NewDedupGate builds a gate over the store's existence check.
func NewDedupGate(store Store, window time.Duration) *DedupGate {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &DedupGate{store: store, window: window}
}

// IsDuplicate reports whether the mention already exists within the window.
func (g *DedupGate) IsDuplicate(ctx context.Context, m *Mention) (bool, error) {
	return g.store.ExistsMention(ctx, m.AssetID, m.URL, g.window)
}
