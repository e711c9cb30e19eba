package dto

import "time"

// SelectSeatResponse is returned when a seat lock is acquired
type SelectSeatResponse struct {
	SeatID       string    `json:"seat_id"`
	SeatNumber   string    `json:"seat_number"`
	Grade        string    `json:"grade"`
	Price        float64   `json:"price"`
	LockStatus   string    `json:"lock_status"`
	ExpiresAt    time.Time `json:"expires_at"`
	RemainingTTL int64     `json:"remaining_ttl_seconds"`
}

// SeatInput describes one seat in a batch create request
type SeatInput struct {
	SeatNumber string  `json:"seat_number" binding:"required"`
	Grade      string  `json:"grade" binding:"required,oneof=VIP R S A"`
	Price      float64 `json:"price" binding:"required,gt=0"`
}

// CreateSeatsRequest creates seats for a concert in one batch
type CreateSeatsRequest struct {
	ConcertID string      `json:"concert_id" binding:"required"`
	Seats     []SeatInput `json:"seats" binding:"required,min=1,dive"`
}

// UpdateSeatRequest updates an existing seat
type UpdateSeatRequest struct {
	SeatNumber string  `json:"seat_number"`
	Grade      string  `json:"grade" binding:"omitempty,oneof=VIP R S A"`
	Price      float64 `json:"price" binding:"omitempty,gt=0"`
}

// SeatResponse is the public view of a seat
type SeatResponse struct {
	ID         string  `json:"id"`
	ConcertID  string  `json:"concert_id"`
	SeatNumber string  `json:"seat_number"`
	Grade      string  `json:"grade"`
	Price      float64 `json:"price"`
}

// SeatMapEntry is one seat in the seat map, annotated with its current
// availability
type SeatMapEntry struct {
	SeatResponse
	Reserved bool `json:"reserved"`
	Locked   bool `json:"locked"`
}
