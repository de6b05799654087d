package batch

import (
	"context"
	"time"
)

// DefaultPause is the default wait between consecutive batches.
const DefaultPause = 500 * time.Millisecond

// Pacer waits between consecutive batches.
type Pacer interface {
	Pause(ctx context.Context) error
}

// NoPause is a Pacer that never waits.
type NoPause struct{}

// Pause returns immediately.
func (NoPause) Pause(context.Context) error { return nil }

// FixedPause waits a fixed duration between batches. The wait ends early with
// the context error if ctx is cancelled.
type FixedPause struct {
	Interval time.Duration
}

// NewFixedPause returns a pacer waiting d between batches. Non-positive
// durations behave like NoPause.
func NewFixedPause(d time.Duration) *FixedPause {
	return &FixedPause{Interval: d}
}

// Pause blocks for the configured interval.
func (f *FixedPause) Pause(ctx context.Context) error {
	if f.Interval <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(f.Interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
