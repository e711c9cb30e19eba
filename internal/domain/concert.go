package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConcertStatus represents the lifecycle status of a concert
type ConcertStatus string

const (
	ConcertStatusScheduled     ConcertStatus = "SCHEDULED"
	ConcertStatusBookingOpen   ConcertStatus = "BOOKING_OPEN"
	ConcertStatusBookingClosed ConcertStatus = "BOOKING_CLOSED"
	ConcertStatusSoldOut       ConcertStatus = "SOLD_OUT"
	ConcertStatusCompleted     ConcertStatus = "COMPLETED"
	ConcertStatusCancelled     ConcertStatus = "CANCELLED"
)

// Concert represents a concert event
type Concert struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Venue            string        `json:"venue"`
	ConcertDate      time.Time     `json:"concert_date"`
	BookingOpenTime  time.Time     `json:"booking_open_time"`
	BookingCloseTime time.Time     `json:"booking_close_time"`
	Status           ConcertStatus `json:"status"`
	DeletedAt        *time.Time    `json:"deleted_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// NewConcert creates a scheduled concert
func NewConcert(title, venue string, concertDate, bookingOpen, bookingClose time.Time) (*Concert, error) {
	if title == "" || venue == "" {
		return nil, ErrInvalidConcertID
	}

	now := time.Now().UTC()
	return &Concert{
		ID:               uuid.New().String(),
		Title:            title,
		Venue:            venue,
		ConcertDate:      concertDate,
		BookingOpenTime:  bookingOpen,
		BookingCloseTime: bookingClose,
		Status:           ConcertStatusScheduled,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// IsBookingOpen reports whether bookings are accepted at the given time
func (c *Concert) IsBookingOpen(now time.Time) bool {
	if c.DeletedAt != nil {
		return false
	}
	if c.Status == ConcertStatusCancelled || c.Status == ConcertStatusCompleted {
		return false
	}
	return !now.Before(c.BookingOpenTime) && now.Before(c.BookingCloseTime)
}

// IsCancellable reports whether a reservation for this concert may still
// be cancelled: the cancel window must not have closed yet.
func (c *Concert) IsCancellable(now time.Time, cancelWindow time.Duration) bool {
	return now.Before(c.ConcertDate.Add(-cancelWindow))
}
