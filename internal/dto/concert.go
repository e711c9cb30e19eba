package dto

import "time"

// CreateConcertRequest creates a concert
type CreateConcertRequest struct {
	Title            string    `json:"title" binding:"required"`
	Venue            string    `json:"venue" binding:"required"`
	ConcertDate      time.Time `json:"concert_date" binding:"required"`
	BookingOpenTime  time.Time `json:"booking_open_time" binding:"required"`
	BookingCloseTime time.Time `json:"booking_close_time" binding:"required"`
}

// UpdateConcertRequest updates a concert
type UpdateConcertRequest struct {
	Title            string     `json:"title"`
	Venue            string     `json:"venue"`
	ConcertDate      *time.Time `json:"concert_date"`
	BookingOpenTime  *time.Time `json:"booking_open_time"`
	BookingCloseTime *time.Time `json:"booking_close_time"`
	Status           string     `json:"status" binding:"omitempty,oneof=SCHEDULED BOOKING_OPEN BOOKING_CLOSED SOLD_OUT COMPLETED CANCELLED"`
}

// ConcertResponse is the public view of a concert
type ConcertResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Venue            string    `json:"venue"`
	ConcertDate      time.Time `json:"concert_date"`
	BookingOpenTime  time.Time `json:"booking_open_time"`
	BookingCloseTime time.Time `json:"booking_close_time"`
	Status           string    `json:"status"`
}
