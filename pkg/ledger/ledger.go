package ledger

import (
	"context"
	"sync"
)

// Ledger is the authoritative store for the running spend total.
//
// Increment never fails: implementations that delegate to an external
// store fall back to local accounting rather than dropping the amount.
type Ledger interface {
	// Increment atomically adds cost to the running total and returns the
	// resulting total.
	Increment(ctx context.Context, cost float64) float64

	// Total returns the current total. ok is false when the ledger
	// operates in shared mode and the authoritative state could not be
	// read; callers must not assume ok.
	Total(ctx context.Context) (total float64, ok bool)

	// Reset zeroes the total.
	Reset(ctx context.Context)
}

// Local is a single in-process accumulator.
type Local struct {
	mu    sync.Mutex
	total float64
}

// NewLocal creates a local in-process ledger.
func NewLocal() *Local {
	return &Local{}
}

// Increment atomically adds cost and returns the new total.
func (l *Local) Increment(_ context.Context, cost float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total += cost
	return l.total
}

// Total returns the current total. Always ok for a local ledger.
func (l *Local) Total(_ context.Context) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total, true
}

// Reset zeroes the total.
func (l *Local) Reset(_ context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total = 0
}
