package domain

import "time"

// ReservationEventType identifies a reservation lifecycle event
type ReservationEventType string

const (
	ReservationEventCreated   ReservationEventType = "reservation.created"
	ReservationEventConfirmed ReservationEventType = "reservation.confirmed"
	ReservationEventFailed    ReservationEventType = "reservation.failed"
	ReservationEventExpired   ReservationEventType = "reservation.expired"
	ReservationEventCancelled ReservationEventType = "reservation.cancelled"
)

// ReservationEvent is the message published on every lifecycle transition
type ReservationEvent struct {
	EventID       string               `json:"event_id"`
	EventType     ReservationEventType `json:"event_type"`
	ReservationID string               `json:"reservation_id"`
	UserID        string               `json:"user_id"`
	ConcertID     string               `json:"concert_id"`
	Status        ReservationStatus    `json:"status"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// NewReservationEvent builds an event from a reservation snapshot
func NewReservationEvent(eventType ReservationEventType, reservation *Reservation, eventID string) *ReservationEvent {
	return &ReservationEvent{
		EventID:       eventID,
		EventType:     eventType,
		ReservationID: reservation.ID,
		UserID:        reservation.UserID,
		ConcertID:     reservation.ConcertID,
		Status:        reservation.Status,
		OccurredAt:    time.Now().UTC(),
	}
}

// Key returns the partition key; keyed per reservation so events of one
// reservation stay ordered
func (e *ReservationEvent) Key() string {
	return e.ReservationID
}
