package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	ReservationStatusInProgress ReservationStatus = "IN_PROGRESS"
	ReservationStatusConfirmed  ReservationStatus = "CONFIRMED"
	ReservationStatusFailed     ReservationStatus = "FAILED"
	ReservationStatusCanceled   ReservationStatus = "CANCELED"
	ReservationStatusExpired    ReservationStatus = "EXPIRED"
)

// CanTransitionTo reports whether the transition to target is legal.
// IN_PROGRESS fans out to CONFIRMED, FAILED or EXPIRED; only CONFIRMED
// may move on to CANCELED.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	switch s {
	case ReservationStatusInProgress:
		return target == ReservationStatusConfirmed ||
			target == ReservationStatusFailed ||
			target == ReservationStatusExpired
	case ReservationStatusConfirmed:
		return target == ReservationStatusCanceled
	default:
		return false
	}
}

// IsTerminal returns true if no further transition is possible
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusFailed ||
		s == ReservationStatusCanceled ||
		s == ReservationStatusExpired
}

// IsActive returns true if the reservation still claims its seats
func (s ReservationStatus) IsActive() bool {
	return s == ReservationStatusInProgress || s == ReservationStatusConfirmed
}

// Reservation represents a seat reservation. Status is the single source
// of truth for whether a seat is taken.
type Reservation struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	ConcertID       string            `json:"concert_id"`
	Status          ReservationStatus `json:"status"`
	ReservationTime time.Time         `json:"reservation_time"`
	ExpireTime      time.Time         `json:"expire_time"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewReservation creates an IN_PROGRESS reservation. ExpireTime is fixed
// at creation and never extended.
func NewReservation(userID, concertID string, holdDuration time.Duration) (*Reservation, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if concertID == "" {
		return nil, ErrInvalidConcertID
	}

	now := time.Now().UTC()
	return &Reservation{
		ID:              uuid.New().String(),
		UserID:          userID,
		ConcertID:       concertID,
		Status:          ReservationStatusInProgress,
		ReservationTime: now,
		ExpireTime:      now.Add(holdDuration),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsExpired reports whether the hold window has passed at the given time
func (r *Reservation) IsExpired(now time.Time) bool {
	return now.After(r.ExpireTime)
}

// TransitionTo moves the reservation to target, rejecting illegal transitions
func (r *Reservation) TransitionTo(target ReservationStatus) error {
	if !r.Status.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	r.Status = target
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// ReservationSeat binds one reservation to one seat. The booking flow
// attaches exactly one seat per reservation; the model allows more for
// future multi-seat checkout.
type ReservationSeat struct {
	ID            string    `json:"id"`
	ReservationID string    `json:"reservation_id"`
	SeatID        string    `json:"seat_id"`
	Price         float64   `json:"price"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewReservationSeat creates a reservation-seat binding
func NewReservationSeat(reservationID, seatID string, price float64) (*ReservationSeat, error) {
	if reservationID == "" {
		return nil, ErrInvalidReservationID
	}
	if seatID == "" {
		return nil, ErrInvalidSeatID
	}

	return &ReservationSeat{
		ID:            uuid.New().String(),
		ReservationID: reservationID,
		SeatID:        seatID,
		Price:         price,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
