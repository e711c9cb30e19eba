package repository

import (
	"context"
	"time"
)

// QueueRepository defines the ordered waiting line per concert: a sorted
// set scored by arrival time plus a membership index for O(1)
// "already registered" checks.
type QueueRepository interface {
	// Enqueue inserts the user with the given arrival time as ordering
	// key. Returns false when the user was already in line.
	Enqueue(ctx context.Context, concertID, userID string, arrivedAt time.Time, membershipTTL time.Duration) (bool, error)

	// Position returns the 1-based rank of the user, or 0 when absent
	Position(ctx context.Context, concertID, userID string) (int64, error)

	// Size returns the number of users waiting for the concert
	Size(ctx context.Context, concertID string) (int64, error)

	// PopEarliest removes and returns the earliest-arrived user, clearing
	// their membership record. ok is false when the line is empty.
	PopEarliest(ctx context.Context, concertID string) (userID string, ok bool, err error)

	// IsMember reports whether the user is currently in line
	IsMember(ctx context.Context, concertID, userID string) (bool, error)

	// Remove takes the user out of the line regardless of position
	Remove(ctx context.Context, concertID, userID string) error
}
