// Package executor runs a long fit call under an optional hard wall-clock
// deadline, distinguishing a timeout from an in-band failure.
package executor

import (
	"context"
	"time"
)

// State classifies the outcome of a bounded fit. Exactly one state is ever
// produced for a given future.
type State int

const (
	// Completed means the fit returned without error before the deadline.
	Completed State = iota
	// Failed means the fit returned an error before the deadline.
	Failed
	// TimedOut means the deadline elapsed before the fit returned.
	TimedOut
)

// String implements fmt.Stringer for diagnostics.
func (s State) String() string {
	switch s {
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Result is the tri-state outcome of TryGet. Err is non-nil only for Failed.
type Result struct {
	State   State
	Err     error
	Elapsed time.Duration
}

// Future represents a fit call running in its own goroutine.
//
// Cancellation on timeout is best-effort only: the goroutine (and whatever
// internal workers the engine spawned) is abandoned, not stopped, and its
// resources are leaked until it returns on its own. Callers proceed as if the
// fit never happened.
type Future struct {
	done  chan error
	start time.Time
}

// Go starts fit in a new goroutine and returns its future.
func Go(fit func() error) *Future {
	f := &Future{
		done:  make(chan error, 1),
		start: time.Now(),
	}
	go func() {
		f.done <- fit()
	}()
	return f
}

// TryGet waits for the fit to finish, for the deadline to elapse, or for the
// context to be cancelled, whichever comes first. A zero deadline means
// unbounded. Context cancellation is reported as TimedOut; callers that care
// about the distinction inspect ctx.Err.
func (f *Future) TryGet(ctx context.Context, deadline time.Duration) Result {
	var expired <-chan time.Time
	if deadline > 0 {
		timer := time.NewTimer(deadline)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case err := <-f.done:
		elapsed := time.Since(f.start)
		if err != nil {
			return Result{State: Failed, Err: err, Elapsed: elapsed}
		}
		return Result{State: Completed, Elapsed: elapsed}
	case <-expired:
		return Result{State: TimedOut, Elapsed: time.Since(f.start)}
	case <-ctx.Done():
		return Result{State: TimedOut, Elapsed: time.Since(f.start)}
	}
}
