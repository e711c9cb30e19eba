package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConcert_IsBookingOpen(t *testing.T) {
	open := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	close := open.Add(8 * time.Hour)
	concert := &Concert{
		Status:           ConcertStatusBookingOpen,
		BookingOpenTime:  open,
		BookingCloseTime: close,
	}

	assert.False(t, concert.IsBookingOpen(open.Add(-time.Minute)))
	assert.True(t, concert.IsBookingOpen(open))
	assert.True(t, concert.IsBookingOpen(open.Add(time.Hour)))
	assert.False(t, concert.IsBookingOpen(close))
}

func TestConcert_IsBookingOpen_CancelledOrDeleted(t *testing.T) {
	open := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	inWindow := open.Add(time.Hour)

	cancelled := &Concert{
		Status:           ConcertStatusCancelled,
		BookingOpenTime:  open,
		BookingCloseTime: open.Add(8 * time.Hour),
	}
	assert.False(t, cancelled.IsBookingOpen(inWindow))

	deletedAt := open
	deleted := &Concert{
		Status:           ConcertStatusBookingOpen,
		BookingOpenTime:  open,
		BookingCloseTime: open.Add(8 * time.Hour),
		DeletedAt:        &deletedAt,
	}
	assert.False(t, deleted.IsBookingOpen(inWindow))
}

func TestConcert_IsCancellable(t *testing.T) {
	concertDate := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)
	concert := &Concert{ConcertDate: concertDate}
	window := 2 * time.Hour

	assert.True(t, concert.IsCancellable(concertDate.Add(-3*time.Hour), window))
	// The window closes exactly two hours before the show
	assert.False(t, concert.IsCancellable(concertDate.Add(-2*time.Hour), window))
	assert.False(t, concert.IsCancellable(concertDate.Add(-time.Hour), window))
	assert.False(t, concert.IsCancellable(concertDate, window))
}

func TestNewConcert(t *testing.T) {
	date := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)
	concert, err := NewConcert("Live at the Dome", "Dome", date, date.Add(-72*time.Hour), date.Add(-2*time.Hour))

	assert.NoError(t, err)
	assert.Equal(t, ConcertStatusScheduled, concert.Status)
	assert.NotEmpty(t, concert.ID)
}
