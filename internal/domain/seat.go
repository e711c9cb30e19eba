package domain

import (
	"time"

	"github.com/google/uuid"
)

// SeatGrade represents the pricing grade of a seat
type SeatGrade string

const (
	SeatGradeVIP SeatGrade = "VIP"
	SeatGradeR   SeatGrade = "R"
	SeatGradeS   SeatGrade = "S"
	SeatGradeA   SeatGrade = "A"
)

// Seat represents a single seat of a concert. Immutable once created
// except administrative edits; ownership during booking is expressed
// through seat locks and reservations, not on the seat row itself.
type Seat struct {
	ID         string     `json:"id"`
	ConcertID  string     `json:"concert_id"`
	SeatNumber string     `json:"seat_number"`
	Grade      SeatGrade  `json:"grade"`
	Price      float64    `json:"price"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewSeat creates a seat for a concert
func NewSeat(concertID, seatNumber string, grade SeatGrade, price float64) (*Seat, error) {
	if concertID == "" {
		return nil, ErrInvalidConcertID
	}
	if seatNumber == "" {
		return nil, ErrInvalidSeatNumber
	}
	if price < 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now().UTC()
	return &Seat{
		ID:         uuid.New().String(),
		ConcertID:  concertID,
		SeatNumber: seatNumber,
		Grade:      grade,
		Price:      price,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsDeleted reports whether the seat was soft-deleted
func (s *Seat) IsDeleted() bool {
	return s.DeletedAt != nil
}
