package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/supark0206/ticketing/internal/domain"
)

// MockSeatLockRepository is a mock implementation of SeatLockRepository
type MockSeatLockRepository struct {
	mock.Mock
}

func (m *MockSeatLockRepository) TryAcquire(ctx context.Context, seatID, holderID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, seatID, holderID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeatLockRepository) GetHolder(ctx context.Context, seatID string) (string, error) {
	args := m.Called(ctx, seatID)
	return args.String(0), args.Error(1)
}

func (m *MockSeatLockRepository) Release(ctx context.Context, seatID, holderID string) (bool, error) {
	args := m.Called(ctx, seatID, holderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeatLockRepository) RemainingTTL(ctx context.Context, seatID string) (time.Duration, bool, error) {
	args := m.Called(ctx, seatID)
	return args.Get(0).(time.Duration), args.Bool(1), args.Error(2)
}

func (m *MockSeatLockRepository) IsLocked(ctx context.Context, seatID string) (bool, error) {
	args := m.Called(ctx, seatID)
	return args.Bool(0), args.Error(1)
}

// MockQueueRepository is a mock implementation of QueueRepository
type MockQueueRepository struct {
	mock.Mock
}

func (m *MockQueueRepository) Enqueue(ctx context.Context, concertID, userID string, arrivedAt time.Time, membershipTTL time.Duration) (bool, error) {
	args := m.Called(ctx, concertID, userID, arrivedAt, membershipTTL)
	return args.Bool(0), args.Error(1)
}

func (m *MockQueueRepository) Position(ctx context.Context, concertID, userID string) (int64, error) {
	args := m.Called(ctx, concertID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueueRepository) Size(ctx context.Context, concertID string) (int64, error) {
	args := m.Called(ctx, concertID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueueRepository) PopEarliest(ctx context.Context, concertID string) (string, bool, error) {
	args := m.Called(ctx, concertID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockQueueRepository) IsMember(ctx context.Context, concertID, userID string) (bool, error) {
	args := m.Called(ctx, concertID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQueueRepository) Remove(ctx context.Context, concertID, userID string) error {
	args := m.Called(ctx, concertID, userID)
	return args.Error(0)
}

// MockConcertRepository is a mock implementation of ConcertRepository
type MockConcertRepository struct {
	mock.Mock
}

func (m *MockConcertRepository) Create(ctx context.Context, concert *domain.Concert) error {
	args := m.Called(ctx, concert)
	return args.Error(0)
}

func (m *MockConcertRepository) GetByID(ctx context.Context, id string) (*domain.Concert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Concert), args.Error(1)
}

func (m *MockConcertRepository) List(ctx context.Context, limit, offset int) ([]*domain.Concert, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Concert), args.Error(1)
}

func (m *MockConcertRepository) Update(ctx context.Context, concert *domain.Concert) error {
	args := m.Called(ctx, concert)
	return args.Error(0)
}

func (m *MockConcertRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSeatRepository is a mock implementation of SeatRepository
type MockSeatRepository struct {
	mock.Mock
}

func (m *MockSeatRepository) CreateBatch(ctx context.Context, seats []*domain.Seat) error {
	args := m.Called(ctx, seats)
	return args.Error(0)
}

func (m *MockSeatRepository) GetByID(ctx context.Context, id string) (*domain.Seat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Seat), args.Error(1)
}

func (m *MockSeatRepository) ListByConcert(ctx context.Context, concertID string) ([]*domain.Seat, error) {
	args := m.Called(ctx, concertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Seat), args.Error(1)
}

func (m *MockSeatRepository) ListByConcertAndGrade(ctx context.Context, concertID string, grade domain.SeatGrade) ([]*domain.Seat, error) {
	args := m.Called(ctx, concertID, grade)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Seat), args.Error(1)
}

func (m *MockSeatRepository) Update(ctx context.Context, seat *domain.Seat) error {
	args := m.Called(ctx, seat)
	return args.Error(0)
}

func (m *MockSeatRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSeatRepository) ExistsByNumber(ctx context.Context, concertID, seatNumber string) (bool, error) {
	args := m.Called(ctx, concertID, seatNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeatRepository) AvailableSeatIDs(ctx context.Context, concertID string) ([]string, error) {
	args := m.Called(ctx, concertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockReservationRepository is a mock implementation of ReservationRepository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, reservation *domain.Reservation, seat *domain.ReservationSeat, payment *domain.Payment) error {
	args := m.Called(ctx, reservation, seat, payment)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetSeats(ctx context.Context, reservationID string) ([]*domain.ReservationSeat, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReservationSeat), args.Error(1)
}

func (m *MockReservationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListByConcert(ctx context.Context, concertID string, limit, offset int) ([]*domain.Reservation, error) {
	args := m.Called(ctx, concertID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Confirm(ctx context.Context, reservationID, paymentID string, paymentTime time.Time) error {
	args := m.Called(ctx, reservationID, paymentID, paymentTime)
	return args.Error(0)
}

func (m *MockReservationRepository) Fail(ctx context.Context, reservationID, paymentID string) error {
	args := m.Called(ctx, reservationID, paymentID)
	return args.Error(0)
}

func (m *MockReservationRepository) Expire(ctx context.Context, reservationID, paymentID string) error {
	args := m.Called(ctx, reservationID, paymentID)
	return args.Error(0)
}

func (m *MockReservationRepository) CancelWithRefund(ctx context.Context, reservationID, paymentID string, refundAmount float64) error {
	args := m.Called(ctx, reservationID, paymentID, refundAmount)
	return args.Error(0)
}

func (m *MockReservationRepository) HasActiveForSeat(ctx context.Context, seatID string) (bool, error) {
	args := m.Called(ctx, seatID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) ActiveSeatIDs(ctx context.Context, concertID string) ([]string, error) {
	args := m.Called(ctx, concertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockReservationRepository) FindExpiredInProgress(ctx context.Context, before time.Time, limit int) ([]*domain.Reservation, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByReservationID(ctx context.Context, reservationID string) (*domain.Payment, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
