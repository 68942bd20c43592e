// Package hold implements the condition-or-timeout wait primitive used to
// time transient displays.
package hold

import (
	"errors"
	"time"
)

// Quantum is the polling cadence. The condition is re-evaluated once per
// quantum, so callers should expect up to one quantum of slack on both
// termination paths.
const Quantum = 50 * time.Millisecond

// ErrInvalidTimeout is returned when the requested timeout is not positive.
var ErrInvalidTimeout = errors.New("hold: timeout must be positive")

// Until blocks until cond returns true or timeout elapses, whichever comes
// first. A nil cond makes this an unconditional sleep for the full timeout.
//
// The loop sleeps in fixed quanta and cannot be shortened by the host's
// idle processing; callers relying on an exact hold duration get at least
// the requested time (within one quantum).
func Until(cond func() bool, timeout time.Duration) error {
	if timeout <= 0 {
		return ErrInvalidTimeout
	}
	wait(cond, timeout)
	return nil
}

// Task is a handle to a background hold started by UntilAsync. Done is
// closed when the poll loop exits, on either termination path.
//
// Task carries no outcome and no cancellation: a caller that needs to know
// whether the condition fired must close over its own flag inside cond,
// and timeout is the only bound on the loop's lifetime.
type Task struct {
	done chan struct{}
}

// Done returns a channel closed when the hold has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// UntilAsync runs the same poll loop as Until on its own goroutine and
// returns immediately. The timeout is validated before the goroutine is
// spawned, so an error means nothing is running.
func UntilAsync(cond func() bool, timeout time.Duration) (*Task, error) {
	if timeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		wait(cond, timeout)
	}()
	return t, nil
}

func wait(cond func() bool, timeout time.Duration) {
	for remaining := timeout; remaining > 0; remaining -= Quantum {
		if cond != nil && cond() {
			return
		}
		time.Sleep(Quantum)
	}
}
