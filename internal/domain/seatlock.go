package domain

import "time"

// LockStatus is the outcome of a seat lock acquisition attempt
type LockStatus string

const (
	// LockAcquired means the caller now holds the seat exclusively
	LockAcquired LockStatus = "ACQUIRED"
	// LockAlreadyOwned means the caller held the seat already; treat as success
	LockAlreadyOwned LockStatus = "ALREADY_OWNED"
	// LockOwnedByOther means another holder owns the seat
	LockOwnedByOther LockStatus = "OWNED_BY_OTHER"
	// LockRetryNeeded means the owner expired between the set and the read;
	// the caller should retry rather than assume either outcome
	LockRetryNeeded LockStatus = "RETRY_NEEDED"
)

// LockResult describes the outcome of a lock acquisition attempt
type LockResult struct {
	Status       LockStatus    `json:"status"`
	SeatID       string        `json:"seat_id"`
	HolderID     string        `json:"holder_id"`
	RemainingTTL time.Duration `json:"remaining_ttl"`
	ExpiresAt    time.Time     `json:"expires_at"`
}

// Acquired reports whether the caller may proceed to reserve the seat
func (r *LockResult) Acquired() bool {
	return r.Status == LockAcquired || r.Status == LockAlreadyOwned
}
