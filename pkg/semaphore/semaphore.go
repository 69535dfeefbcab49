// Package semaphore limits how many connections a listener serves at once.
package semaphore

import (
	"context"
	"fmt"
	"time"
)

// Slots is a counting semaphore over connection slots. A nil *Slots never
// blocks and never rejects.
type Slots struct {
	taken   chan struct{}
	timeout time.Duration
}

// New returns n free slots. Acquire gives up after timeout.
func New(n int, timeout time.Duration) *Slots {
	return &Slots{taken: make(chan struct{}, n), timeout: timeout}
}

// Acquire takes a slot, waiting up to the configured timeout.
func (s *Slots) Acquire(ctx context.Context) error {
	if s == nil {
		return nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	select {
	case s.taken <- struct{}{}:
		return nil
	case <-timeoutCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("timeout acquiring connection slot after %v", s.timeout)
	}
}

// TryAcquire takes a slot if one is free right now.
func (s *Slots) TryAcquire() bool {
	if s == nil {
		return true
	}

	select {
	case s.taken <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees a slot. Releasing more slots than were taken is a no-op.
func (s *Slots) Release() {
	if s == nil {
		return
	}

	select {
	case <-s.taken:
	default:
	}
}

// InUse returns the number of taken slots.
func (s *Slots) InUse() int {
	if s == nil {
		return 0
	}
	return len(s.taken)
}

// Cap returns the total number of slots.
func (s *Slots) Cap() int {
	if s == nil {
		return 0
	}
	return cap(s.taken)
}
