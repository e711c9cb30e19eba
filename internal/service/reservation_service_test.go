package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/supark0206/ticketing/internal/domain"
)

type reservationServiceFixture struct {
	svc             ReservationService
	reservationRepo *MockReservationRepository
	paymentRepo     *MockPaymentRepository
	concertRepo     *MockConcertRepository
	lockRepo        *MockSeatLockRepository
}

func newReservationServiceFixture(cfg *ReservationServiceConfig) *reservationServiceFixture {
	reservationRepo := new(MockReservationRepository)
	paymentRepo := new(MockPaymentRepository)
	concertRepo := new(MockConcertRepository)
	lockRepo := new(MockSeatLockRepository)

	lockService := NewSeatLockService(lockRepo, nil)
	publisher := NewNoOpEventPublisher()
	guard := NewExpirationGuard(reservationRepo, paymentRepo, lockService, publisher)

	return &reservationServiceFixture{
		svc:             NewReservationService(reservationRepo, paymentRepo, concertRepo, guard, publisher, cfg),
		reservationRepo: reservationRepo,
		paymentRepo:     paymentRepo,
		concertRepo:     concertRepo,
		lockRepo:        lockRepo,
	}
}

func confirmedReservation() *domain.Reservation {
	now := time.Now().UTC()
	return &domain.Reservation{
		ID:              "res-1",
		UserID:          "user-1",
		ConcertID:       "concert-1",
		Status:          domain.ReservationStatusConfirmed,
		ReservationTime: now.Add(-time.Hour),
		ExpireTime:      now.Add(-50 * time.Minute),
	}
}

func TestReservationService_Create(t *testing.T) {
	f := newReservationServiceFixture(&ReservationServiceConfig{HoldDuration: 10 * time.Minute})

	f.reservationRepo.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	reservation, payment, err := f.svc.Create(context.Background(), "user-1", "concert-1", "seat-1", domain.PaymentMethodCreditCard, 150000)

	assert.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusInProgress, reservation.Status)
	assert.Equal(t, domain.PaymentStatusInProgress, payment.Status)
	assert.Equal(t, reservation.ID, payment.ReservationID)
	assert.Contains(t, payment.TransactionID, "TXN_")
	assert.WithinDuration(t, reservation.ReservationTime.Add(10*time.Minute), reservation.ExpireTime, time.Second)
	f.reservationRepo.AssertExpectations(t)
}

func TestReservationService_Create_InvalidMethod(t *testing.T) {
	f := newReservationServiceFixture(nil)

	_, _, err := f.svc.Create(context.Background(), "user-1", "concert-1", "seat-1", domain.PaymentMethod("CASH"), 150000)

	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)
	f.reservationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationService_Cancel(t *testing.T) {
	f := newReservationServiceFixture(&ReservationServiceConfig{CancelWindow: 2 * time.Hour})

	reservation := confirmedReservation()
	payment := &domain.Payment{
		ID:            "pay-1",
		ReservationID: "res-1",
		Amount:        150000,
		Status:        domain.PaymentStatusSuccess,
	}

	f.reservationRepo.On("GetByID", mock.Anything, "res-1").Return(reservation, nil)
	f.concertRepo.On("GetByID", mock.Anything, "concert-1").Return(&domain.Concert{
		ID:          "concert-1",
		ConcertDate: time.Now().UTC().Add(48 * time.Hour),
	}, nil)
	f.paymentRepo.On("GetByReservationID", mock.Anything, "res-1").Return(payment, nil)
	f.reservationRepo.On("CancelWithRefund", mock.Anything, "res-1", "pay-1", float64(150000)).Return(nil)

	result, err := f.svc.Cancel(context.Background(), "res-1", "user-1")

	assert.NoError(t, err)
	assert.Equal(t, "CANCELED", result.Status)
	assert.Equal(t, float64(150000), result.RefundAmount)
	f.reservationRepo.AssertExpectations(t)
}

func TestReservationService_Cancel_NotOwner(t *testing.T) {
	f := newReservationServiceFixture(nil)

	f.reservationRepo.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)

	_, err := f.svc.Cancel(context.Background(), "res-1", "user-9")

	assert.ErrorIs(t, err, domain.ErrNotReservationOwner)
}

func TestReservationService_Cancel_NotConfirmed(t *testing.T) {
	f := newReservationServiceFixture(nil)

	reservation := confirmedReservation()
	reservation.Status = domain.ReservationStatusFailed

	f.reservationRepo.On("GetByID", mock.Anything, "res-1").Return(reservation, nil)

	_, err := f.svc.Cancel(context.Background(), "res-1", "user-1")

	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestReservationService_Cancel_ExpiresStalePending(t *testing.T) {
	f := newReservationServiceFixture(nil)

	// Cancelling a pending reservation whose hold window already passed
	// performs the expiry instead
	reservation := confirmedReservation()
	reservation.Status = domain.ReservationStatusInProgress

	f.reservationRepo.On("GetByID", mock.Anything, "res-1").Return(reservation, nil)
	f.paymentRepo.On("GetByReservationID", mock.Anything, "res-1").Return(&domain.Payment{
		ID:            "pay-1",
		ReservationID: "res-1",
		Status:        domain.PaymentStatusInProgress,
	}, nil)
	f.reservationRepo.On("Expire", mock.Anything, "res-1", "pay-1").Return(nil)
	f.reservationRepo.On("GetSeats", mock.Anything, "res-1").Return([]*domain.ReservationSeat{
		{ReservationID: "res-1", SeatID: "seat-1", Price: 150000},
	}, nil)
	f.lockRepo.On("Release", mock.Anything, "seat-1", "user-1").Return(true, nil)

	_, err := f.svc.Cancel(context.Background(), "res-1", "user-1")

	assert.ErrorIs(t, err, domain.ErrReservationExpired)
	f.reservationRepo.AssertExpectations(t)
}

func TestReservationService_Cancel_WindowClosed(t *testing.T) {
	f := newReservationServiceFixture(&ReservationServiceConfig{CancelWindow: 2 * time.Hour})

	f.reservationRepo.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	// Concert starts in one hour, inside the two hour cancel window
	f.concertRepo.On("GetByID", mock.Anything, "concert-1").Return(&domain.Concert{
		ID:          "concert-1",
		ConcertDate: time.Now().UTC().Add(time.Hour),
	}, nil)

	_, err := f.svc.Cancel(context.Background(), "res-1", "user-1")

	assert.ErrorIs(t, err, domain.ErrCancelWindowClosed)
	f.reservationRepo.AssertNotCalled(t, "CancelWithRefund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationService_Cancel_NoRefundWithoutSuccessfulPayment(t *testing.T) {
	f := newReservationServiceFixture(&ReservationServiceConfig{CancelWindow: 2 * time.Hour})

	f.reservationRepo.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.concertRepo.On("GetByID", mock.Anything, "concert-1").Return(&domain.Concert{
		ID:          "concert-1",
		ConcertDate: time.Now().UTC().Add(48 * time.Hour),
	}, nil)
	f.paymentRepo.On("GetByReservationID", mock.Anything, "res-1").Return(&domain.Payment{
		ID:            "pay-1",
		ReservationID: "res-1",
		Amount:        150000,
		Status:        domain.PaymentStatusInProgress,
	}, nil)
	f.reservationRepo.On("CancelWithRefund", mock.Anything, "res-1", "", float64(0)).Return(nil)

	result, err := f.svc.Cancel(context.Background(), "res-1", "user-1")

	assert.NoError(t, err)
	assert.Equal(t, float64(0), result.RefundAmount)
	f.reservationRepo.AssertExpectations(t)
}

func TestReservationService_GetByID_NotOwner(t *testing.T) {
	f := newReservationServiceFixture(nil)

	f.reservationRepo.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)

	_, err := f.svc.GetByID(context.Background(), "res-1", "user-9")

	assert.ErrorIs(t, err, domain.ErrNotReservationOwner)
}

func TestReservationService_GetByID(t *testing.T) {
	f := newReservationServiceFixture(nil)

	f.reservationRepo.On("GetByID", mock.Anything, "res-1").Return(confirmedReservation(), nil)
	f.reservationRepo.On("GetSeats", mock.Anything, "res-1").Return([]*domain.ReservationSeat{
		{ReservationID: "res-1", SeatID: "seat-1", Price: 150000},
	}, nil)

	view, err := f.svc.GetByID(context.Background(), "res-1", "user-1")

	assert.NoError(t, err)
	assert.Equal(t, "res-1", view.ID)
	assert.Equal(t, "CONFIRMED", view.Status)
	assert.Len(t, view.Seats, 1)
	assert.Equal(t, float64(150000), view.TotalAmount)
}
