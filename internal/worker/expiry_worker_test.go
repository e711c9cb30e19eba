package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/supark0206/ticketing/internal/domain"
	"github.com/supark0206/ticketing/internal/service"
)

type mockReservationRepo struct {
	mock.Mock
}

func (m *mockReservationRepo) Create(ctx context.Context, reservation *domain.Reservation, seat *domain.ReservationSeat, payment *domain.Payment) error {
	return m.Called(ctx, reservation, seat, payment).Error(0)
}

func (m *mockReservationRepo) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *mockReservationRepo) GetSeats(ctx context.Context, reservationID string) ([]*domain.ReservationSeat, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReservationSeat), args.Error(1)
}

func (m *mockReservationRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

func (m *mockReservationRepo) ListByConcert(ctx context.Context, concertID string, limit, offset int) ([]*domain.Reservation, error) {
	args := m.Called(ctx, concertID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

func (m *mockReservationRepo) Confirm(ctx context.Context, reservationID, paymentID string, paymentTime time.Time) error {
	return m.Called(ctx, reservationID, paymentID, paymentTime).Error(0)
}

func (m *mockReservationRepo) Fail(ctx context.Context, reservationID, paymentID string) error {
	return m.Called(ctx, reservationID, paymentID).Error(0)
}

func (m *mockReservationRepo) Expire(ctx context.Context, reservationID, paymentID string) error {
	return m.Called(ctx, reservationID, paymentID).Error(0)
}

func (m *mockReservationRepo) CancelWithRefund(ctx context.Context, reservationID, paymentID string, refundAmount float64) error {
	return m.Called(ctx, reservationID, paymentID, refundAmount).Error(0)
}

func (m *mockReservationRepo) HasActiveForSeat(ctx context.Context, seatID string) (bool, error) {
	args := m.Called(ctx, seatID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReservationRepo) ActiveSeatIDs(ctx context.Context, concertID string) ([]string, error) {
	args := m.Called(ctx, concertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockReservationRepo) FindExpiredInProgress(ctx context.Context, before time.Time, limit int) ([]*domain.Reservation, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *mockPaymentRepo) GetByReservationID(ctx context.Context, reservationID string) (*domain.Payment, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

type mockLockRepo struct {
	mock.Mock
}

func (m *mockLockRepo) TryAcquire(ctx context.Context, seatID, holderID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, seatID, holderID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockLockRepo) GetHolder(ctx context.Context, seatID string) (string, error) {
	args := m.Called(ctx, seatID)
	return args.String(0), args.Error(1)
}

func (m *mockLockRepo) Release(ctx context.Context, seatID, holderID string) (bool, error) {
	args := m.Called(ctx, seatID, holderID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLockRepo) RemainingTTL(ctx context.Context, seatID string) (time.Duration, bool, error) {
	args := m.Called(ctx, seatID)
	return args.Get(0).(time.Duration), args.Bool(1), args.Error(2)
}

func (m *mockLockRepo) IsLocked(ctx context.Context, seatID string) (bool, error) {
	args := m.Called(ctx, seatID)
	return args.Bool(0), args.Error(1)
}

func newWorkerFixture(cfg *ExpiryWorkerConfig) (*ExpiryWorker, *mockReservationRepo, *mockPaymentRepo, *mockLockRepo) {
	reservationRepo := new(mockReservationRepo)
	paymentRepo := new(mockPaymentRepo)
	lockRepo := new(mockLockRepo)

	guard := service.NewExpirationGuard(
		reservationRepo,
		paymentRepo,
		service.NewSeatLockService(lockRepo, nil),
		service.NewNoOpEventPublisher(),
	)
	return NewExpiryWorker(cfg, reservationRepo, guard), reservationRepo, paymentRepo, lockRepo
}

func overdueReservation(id string) *domain.Reservation {
	now := time.Now().UTC()
	return &domain.Reservation{
		ID:         id,
		UserID:     "user-1",
		ConcertID:  "concert-1",
		Status:     domain.ReservationStatusInProgress,
		ExpireTime: now.Add(-time.Minute),
	}
}

func TestExpiryWorker_SweepOnce(t *testing.T) {
	w, reservationRepo, paymentRepo, lockRepo := newWorkerFixture(&ExpiryWorkerConfig{BatchSize: 100})

	reservations := []*domain.Reservation{overdueReservation("res-1"), overdueReservation("res-2")}
	reservationRepo.On("FindExpiredInProgress", mock.Anything, mock.Anything, 100).Return(reservations, nil)

	for _, r := range reservations {
		paymentRepo.On("GetByReservationID", mock.Anything, r.ID).Return(&domain.Payment{
			ID:            "pay-" + r.ID,
			ReservationID: r.ID,
			Status:        domain.PaymentStatusInProgress,
		}, nil)
		reservationRepo.On("Expire", mock.Anything, r.ID, "pay-"+r.ID).Return(nil)
		reservationRepo.On("GetSeats", mock.Anything, r.ID).Return([]*domain.ReservationSeat{
			{ReservationID: r.ID, SeatID: "seat-" + r.ID},
		}, nil)
		lockRepo.On("Release", mock.Anything, "seat-"+r.ID, "user-1").Return(true, nil)
	}

	expired := w.SweepOnce(context.Background())

	assert.Equal(t, 2, expired)
	totalExpired, lastSweep := w.Metrics()
	assert.Equal(t, int64(2), totalExpired)
	assert.False(t, lastSweep.IsZero())
	reservationRepo.AssertExpectations(t)
}

func TestExpiryWorker_SweepOnce_ContinuesPastRaceLosses(t *testing.T) {
	w, reservationRepo, paymentRepo, lockRepo := newWorkerFixture(&ExpiryWorkerConfig{BatchSize: 100})

	reservations := []*domain.Reservation{overdueReservation("res-1"), overdueReservation("res-2")}
	reservationRepo.On("FindExpiredInProgress", mock.Anything, mock.Anything, 100).Return(reservations, nil)

	// res-1 was confirmed between the find and the expire
	paymentRepo.On("GetByReservationID", mock.Anything, "res-1").Return(&domain.Payment{
		ID: "pay-res-1", ReservationID: "res-1",
	}, nil)
	reservationRepo.On("Expire", mock.Anything, "res-1", "pay-res-1").Return(domain.ErrInvalidStatusTransition)

	paymentRepo.On("GetByReservationID", mock.Anything, "res-2").Return(&domain.Payment{
		ID: "pay-res-2", ReservationID: "res-2",
	}, nil)
	reservationRepo.On("Expire", mock.Anything, "res-2", "pay-res-2").Return(nil)
	reservationRepo.On("GetSeats", mock.Anything, "res-2").Return([]*domain.ReservationSeat{
		{ReservationID: "res-2", SeatID: "seat-2"},
	}, nil)
	lockRepo.On("Release", mock.Anything, "seat-2", "user-1").Return(true, nil)

	expired := w.SweepOnce(context.Background())

	assert.Equal(t, 1, expired)
	reservationRepo.AssertExpectations(t)
}

func TestExpiryWorker_SweepOnce_EmptyBatch(t *testing.T) {
	w, reservationRepo, _, _ := newWorkerFixture(nil)

	reservationRepo.On("FindExpiredInProgress", mock.Anything, mock.Anything, 100).
		Return([]*domain.Reservation{}, nil)

	assert.Equal(t, 0, w.SweepOnce(context.Background()))
	totalExpired, _ := w.Metrics()
	assert.Equal(t, int64(0), totalExpired)
}

func TestExpiryWorker_SweepOnce_FindFails(t *testing.T) {
	w, reservationRepo, _, _ := newWorkerFixture(nil)

	reservationRepo.On("FindExpiredInProgress", mock.Anything, mock.Anything, 100).
		Return(nil, assert.AnError)

	assert.Equal(t, 0, w.SweepOnce(context.Background()))
}
