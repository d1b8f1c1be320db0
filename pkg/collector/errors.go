package collector

import "errors"

var (
	// ErrCycleRunning rejects a second cycle while one is in flight.
	ErrCycleRunning = errors.New("collector: cycle already running")

	// ErrStoreUnavailable aborts a cycle when the store cannot be reached
	// even after one reconnect attempt.
	ErrStoreUnavailable = errors.New("collector: store unavailable")

	// ErrNoAssets aborts a cycle when no tracked assets exist; nothing to
	// do is an error, not a silent success.
	ErrNoAssets = errors.New("collector: no tracked assets")

	// ErrInvalidCandidate marks a candidate missing required fields. The
	// candidate is dropped and logged, never fatal.
	ErrInvalidCandidate = errors.New("collector: invalid candidate")
)
