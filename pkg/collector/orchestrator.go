package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/Rosssaab/CryptoAiDataCollector/pkg/source"
)

// DefaultRequestDelay smooths bursts against rate-limited providers.
const DefaultRequestDelay = time.Second

// QuotaResetter is the slice of the quota tracker the orchestrator drives;
// adapters hold the rest of it as their gate.
type QuotaResetter interface {
	ResetIfNewDay() bool
}

// Config enumerates the orchestrator's dependencies.
type Config struct {
	Store    Store
	Adapters []source.Adapter
	Quota    QuotaResetter

	MaxContentLen int           // store column capacity; 0 means default
	DedupWindow   time.Duration // 0 means 24h
	RequestDelay  time.Duration // pause between adapter calls; 0 means 1s
	Clock         clockwork.Clock
}

// Orchestrator runs one collection cycle over all tracked assets and
// configured sources. It is stateless across cycles except for the quota
// tracker, and non-reentrant: a second Run while one is in flight is
// rejected with ErrCycleRunning.
type Orchestrator struct {
	store        Store
	adapters     []source.Adapter
	quota        QuotaResetter
	normalizer   *Normalizer
	gate         *DedupGate
	requestDelay time.Duration
	clock        clockwork.Clock

	running atomic.Bool
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator wires a cycle orchestrator, validating required
// dependencies.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if cfg.Store == nil {
		return nil, errors.New("collector: missing store dependency")
	}
	if len(cfg.Adapters) == 0 {
		return nil, errors.New("collector: at least one source adapter is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	delay := cfg.RequestDelay
	if delay <= 0 {
		delay = DefaultRequestDelay
	}
	return &Orchestrator{
		store:        cfg.Store,
		adapters:     cfg.Adapters,
		quota:        cfg.Quota,
		normalizer:   NewNormalizer(cfg.MaxContentLen, WithNormalizerClock(clock)),
		gate:         NewDedupGate(cfg.Store, cfg.DedupWindow),
		requestDelay: delay,
		clock:        clock,
		sleep:        sleepCtx,
	}, nil
}

// Run executes one cycle and always returns a summary, also on failure.
//
// Only two conditions abort a cycle before completion: an unreachable
// store (after one reconnect attempt) and a reference-data load failure.
// Everything else degrades to per-(source, asset) errors and the cycle
// carries on.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrCycleRunning
	}
	defer o.running.Store(false)

	summary := &Summary{
		State:     StateRunning,
		PerSource: make(map[string]*SourceStats, len(o.adapters)),
		StartedAt: o.clock.Now().UTC(),
	}
	fail := func(err error) (*Summary, error) {
		summary.State = StateFailed
		summary.FinishedAt = o.clock.Now().UTC()
		return summary, err
	}

	if o.quota != nil && o.quota.ResetIfNewDay() {
		logx.WithContext(ctx).Info("quota counters reset for new day")
	}

	if err := o.store.Ping(ctx); err != nil {
		logx.WithContext(ctx).Errorf("store ping failed, attempting reconnect: %v", err)
		if err := o.store.Reconnect(ctx); err != nil {
			return fail(fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
		}
	}

	sources, err := o.store.LoadSources(ctx)
	if err != nil {
		return fail(fmt.Errorf("collector: load sources: %w", err))
	}
	assets, err := o.store.LoadAssets(ctx)
	if err != nil {
		return fail(fmt.Errorf("collector: load assets: %w", err))
	}
	if len(assets) == 0 {
		return fail(ErrNoAssets)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })

	firstCall := true
	for _, asset := range assets {
		if ctx.Err() != nil {
			return fail(ctx.Err())
		}
		for _, adapter := range o.adapters {
			if ctx.Err() != nil {
				return fail(ctx.Err())
			}
			if !firstCall {
				if err := o.sleep(ctx, o.requestDelay); err != nil {
					return fail(err)
				}
			}
			firstCall = false
			o.collect(ctx, adapter, asset, sources, summary)
		}
		summary.AssetsProcessed++
	}

	summary.State = StateCompleted
	summary.FinishedAt = o.clock.Now().UTC()
	logx.WithContext(ctx).Infof(
		"cycle completed: assets=%d saved=%d skipped=%d errors=%d",
		summary.AssetsProcessed, summary.Saved, summary.Skipped, summary.Errors,
	)
	return summary, nil
}

// collect runs one (source, asset) fetch and feeds the results through
// normalization, the duplicate gate and the store.
func (o *Orchestrator) collect(ctx context.Context, adapter source.Adapter, asset source.Asset, sources map[string]int64, summary *Summary) {
	name := adapter.Source()
	stats := summary.sourceStats(name)

	sourceID, ok := sources[name]
	if !ok {
		logx.WithContext(ctx).Errorf("source %s not present in store, skipping %s", name, asset.Symbol)
		stats.Errors++
		summary.Errors++
		return
	}

	candidates, err := adapter.Fetch(ctx, asset)
	if err != nil {
		logx.WithContext(ctx).Errorf("fetch %s/%s failed: %v", name, asset.Symbol, err)
		stats.Errors++
		summary.Errors++
		// Keep whatever the adapter handed back before failing.
	}
	stats.Fetched += len(candidates)

	for _, candidate := range candidates {
		mention, err := o.normalizer.Normalize(candidate, asset, sourceID)
		if err != nil {
			logx.WithContext(ctx).Infof("dropping candidate from %s/%s: %v", name, asset.Symbol, err)
			continue
		}

		duplicate, err := o.gate.IsDuplicate(ctx, mention)
		if err != nil {
			logx.WithContext(ctx).Errorf("dedup check %s/%s failed: %v", name, asset.Symbol, err)
			stats.Errors++
			summary.Errors++
			continue
		}
		if duplicate {
			stats.Skipped++
			summary.Skipped++
			continue
		}

		if err := o.store.InsertMention(ctx, mention); err != nil {
			logx.WithContext(ctx).Errorf("insert mention %s/%s failed: %v", name, asset.Symbol, err)
			stats.Errors++
			summary.Errors++
			continue
		}
		stats.Saved++
		summary.Saved++
	}
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
