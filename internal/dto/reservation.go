package dto

import "time"

// CancelReservationRequest cancels a confirmed reservation
type CancelReservationRequest struct {
	ReservationID string `json:"reservation_id" binding:"required"`
	Reason        string `json:"reason"`
}

// CancelReservationResponse returns the refund computation
type CancelReservationResponse struct {
	ReservationID string  `json:"reservation_id"`
	Status        string  `json:"status"`
	RefundAmount  float64 `json:"refund_amount"`
}

// ReservationSeatView is one seat binding in a reservation view
type ReservationSeatView struct {
	SeatID     string  `json:"seat_id"`
	SeatNumber string  `json:"seat_number,omitempty"`
	Price      float64 `json:"price"`
}

// ReservationResponse is the public view of a reservation
type ReservationResponse struct {
	ID              string                `json:"id"`
	UserID          string                `json:"user_id"`
	ConcertID       string                `json:"concert_id"`
	Status          string                `json:"status"`
	ReservationTime time.Time             `json:"reservation_time"`
	ExpireTime      time.Time             `json:"expire_time"`
	Seats           []ReservationSeatView `json:"seats,omitempty"`
	TotalAmount     float64               `json:"total_amount"`
}
