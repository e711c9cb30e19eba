package repository

import (
	"context"
	"time"
)

// SeatLockRepository defines the atomic operations against the seat lock
// store. The store is the only cross-worker mutual exclusion primitive:
// acquisition must be a single set-if-absent round trip and release must
// compare the holder before deleting.
type SeatLockRepository interface {
	// TryAcquire sets the lock if absent, returning false when the key
	// already exists
	TryAcquire(ctx context.Context, seatID, holderID string, ttl time.Duration) (bool, error)

	// GetHolder returns the current holder, or "" when the lock is absent
	GetHolder(ctx context.Context, seatID string) (string, error)

	// Release deletes the lock only if the stored holder matches.
	// Returns false when the lock was absent or owned by someone else.
	Release(ctx context.Context, seatID, holderID string) (bool, error)

	// RemainingTTL returns the remaining lifetime of the lock; exists is
	// false when the lock is absent
	RemainingTTL(ctx context.Context, seatID string) (ttl time.Duration, exists bool, err error)

	// IsLocked reports whether any holder currently owns the seat
	IsLocked(ctx context.Context, seatID string) (bool, error)
}
