package store

import (
	"context"
	"time"
)

// ReapInterval is the active-expiration tick period.
const ReapInterval = 5 * time.Second

// RunReaper sweeps s for due expirations every ReapInterval until ctx is
// canceled. The caller is expected to track completion with its own
// sync.WaitGroup, the way the supervisor does for every other background
// goroutine; RunReaper itself just returns once ctx is done.
func RunReaper(ctx context.Context, s *Store) {
	ticker := time.NewTicker(ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			// Peek under the shared lock; take the exclusive lock only
			// when the earliest deadline has already passed.
			if at, ok := s.NextDeadline(); ok && !at.After(now) {
				s.ExpireDue(now)
			}
		}
	}
}
