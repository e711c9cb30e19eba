package repository

import (
	"context"
	"time"

	"github.com/supark0206/ticketing/internal/domain"
)

// ReservationRepository owns the reservation, reservation-seat and payment
// rows. Every state transition writes both the reservation and its payment
// in one transaction so a crash mid-transition cannot leave them
// inconsistent with each other.
type ReservationRepository interface {
	// Create persists the reservation, its seat binding and the pending
	// payment atomically
	Create(ctx context.Context, reservation *domain.Reservation, seat *domain.ReservationSeat, payment *domain.Payment) error

	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	GetSeats(ctx context.Context, reservationID string) ([]*domain.ReservationSeat, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Reservation, error)
	ListByConcert(ctx context.Context, concertID string, limit, offset int) ([]*domain.Reservation, error)

	// Confirm moves the reservation to CONFIRMED and its payment to
	// SUCCESS in one transaction
	Confirm(ctx context.Context, reservationID, paymentID string, paymentTime time.Time) error

	// Fail moves the reservation to FAILED and its payment to FAILED
	Fail(ctx context.Context, reservationID, paymentID string) error

	// Expire moves the reservation to EXPIRED and its payment to FAILED
	Expire(ctx context.Context, reservationID, paymentID string) error

	// CancelWithRefund moves the reservation to CANCELED and, when
	// paymentID is non-empty, the payment to REFUNDED with the given amount
	CancelWithRefund(ctx context.Context, reservationID, paymentID string, refundAmount float64) error

	// HasActiveForSeat reports whether any IN_PROGRESS or CONFIRMED
	// reservation references the seat
	HasActiveForSeat(ctx context.Context, seatID string) (bool, error)

	// ActiveSeatIDs returns seat IDs of the concert referenced by an
	// IN_PROGRESS or CONFIRMED reservation
	ActiveSeatIDs(ctx context.Context, concertID string) ([]string, error)

	// FindExpiredInProgress returns IN_PROGRESS reservations whose expire
	// time passed before the given instant
	FindExpiredInProgress(ctx context.Context, before time.Time, limit int) ([]*domain.Reservation, error)
}

// PaymentRepository reads payment rows. Writes happen through
// ReservationRepository transitions to keep both rows in step.
type PaymentRepository interface {
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error)
	GetByReservationID(ctx context.Context, reservationID string) (*domain.Payment, error)
}
