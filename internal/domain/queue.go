package domain

import "time"

// QueueOutcome is the result of a queue registration attempt
type QueueOutcome string

const (
	// QueueOutcomeAdmitted means a seat was free and the user bypassed the queue
	QueueOutcomeAdmitted QueueOutcome = "ADMITTED_IMMEDIATELY"
	// QueueOutcomeQueued means the user was inserted at the tail of the line
	QueueOutcomeQueued QueueOutcome = "QUEUED"
	// QueueOutcomeAlreadyQueued means the user was already in line; position unchanged
	QueueOutcomeAlreadyQueued QueueOutcome = "ALREADY_QUEUED"
)

// QueueRegistration is the outcome of a queue registration attempt
type QueueRegistration struct {
	Outcome  QueueOutcome `json:"outcome"`
	Position int64        `json:"position"`
}

// QueueSnapshot is a point-in-time view of a user's place in the waiting
// line. Guarantees are per-tick: each poll independently re-evaluates
// seat freedom and fairness.
type QueueSnapshot struct {
	Position             int64     `json:"position"`
	TotalQueue           int64     `json:"total_queue"`
	EstimatedWaitSeconds int64     `json:"estimated_wait_seconds"`
	CanEnter             bool      `json:"can_enter"`
	Timestamp            time.Time `json:"timestamp"`
}

// Admitted reports whether the user is out of the line
func (s *QueueSnapshot) Admitted() bool {
	return s.Position == 0
}
