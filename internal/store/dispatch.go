package store

import (
	"context"

	"github.com/vk/mapboot/internal/ctxlog"
)

// Flush drains the broadcast queue on the caller's goroutine, invoking
// every apply observer for each queued delta in FIFO order. It returns
// the number of deltas delivered.
func (s *Store) Flush() int {
	delivered := 0
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return delivered
		}
		delta := s.queue[0]
		s.queue = s.queue[1:]
		observers := make([]ApplyFunc, len(s.observers))
		copy(observers, s.observers)
		s.mu.Unlock()

		for _, fn := range observers {
			fn(delta.Clone())
		}
		delivered++
	}
}

// Dispatch runs the broadcast loop until the context is canceled. It is
// the single delivery goroutine: because all broadcasts funnel through
// it, a rapid sequence of applies is observed in call order. Queued
// deltas present at cancellation are dropped.
func (s *Store) Dispatch(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Store dispatcher started.")
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Store dispatcher stopping.", "reason", ctx.Err())
			return
		case <-s.wake:
			s.Flush()
		}
	}
}

// Pending reports the number of deltas waiting for broadcast.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
