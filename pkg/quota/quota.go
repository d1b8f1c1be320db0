// Package quota tracks per-source request budgets across a calendar day.
//
// Every source adapter consults the tracker before touching the network and
// records each request actually issued. Stopping at a soft threshold below
// the provider's hard cap avoids mid-cycle hard failures and wasted retries.
package quota

import (
	"sync"

	"github.com/jonboulle/clockwork"
)

const dayFormat = "2006-01-02"

// sourceState holds the mutable counters for one source.
type sourceState struct {
	requestsMade int
	softLimit    int
	exhausted    bool
}

// Tracker owns request budgets keyed by source name. It is safe for
// concurrent use, though a collection cycle drives it sequentially.
type Tracker struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	dayMarker string
	states    map[string]*sourceState
	limits    map[string]int
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock injects a clock, used by tests to roll the day over.
func WithClock(clock clockwork.Clock) Option {
	return func(t *Tracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// NewTracker builds a tracker from per-source soft limits. A source with no
// configured limit (or a non-positive one) is unlimited until MarkExhausted.
func NewTracker(limits map[string]int, opts ...Option) *Tracker {
	t := &Tracker{
		clock:  clockwork.NewRealClock(),
		states: make(map[string]*sourceState, len(limits)),
		limits: make(map[string]int, len(limits)),
	}
	for source, limit := range limits {
		t.limits[source] = limit
	}
	for _, opt := range opts {
		opt(t)
	}
	t.dayMarker = t.clock.Now().Format(dayFormat)
	return t
}

// CanProceed reports whether the source may issue another request today.
func (t *Tracker) CanProceed(source string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.state(source)
	if st.exhausted {
		return false
	}
	if st.softLimit <= 0 {
		return true
	}
	return st.requestsMade < st.softLimit
}

// RecordRequest counts one issued network call against the source's budget.
// Call it after the request has actually gone out.
func (t *Tracker) RecordRequest(source string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state(source).requestsMade++
}

// MarkExhausted forces CanProceed to false for the rest of the day. Used
// when the provider itself reports a hard rate limit.
func (t *Tracker) MarkExhausted(source string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state(source).exhausted = true
}

// ResetIfNewDay clears all counters when the calendar day has advanced
// since the marker was last set. Called at the start of each cycle.
// It returns true when a reset happened.
func (t *Tracker) ResetIfNewDay() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	today := t.clock.Now().Format(dayFormat)
	if today == t.dayMarker {
		return false
	}
	t.dayMarker = today
	for _, st := range t.states {
		st.requestsMade = 0
		st.exhausted = false
	}
	return true
}

// RequestsMade returns the number of requests recorded for the source today.
func (t *Tracker) RequestsMade(source string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state(source).requestsMade
}

// state returns the entry for source, creating it lazily so that sources
// appearing only at runtime still get tracked.
func (t *Tracker) state(source string) *sourceState {
	st, ok := t.states[source]
	if !ok {
		st = &sourceState{softLimit: t.limits[source]}
		t.states[source] = st
	}
	return st
}
