package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/supark0206/ticketing/internal/domain"
	"github.com/supark0206/ticketing/internal/dto"
	"github.com/supark0206/ticketing/internal/metrics"
	"github.com/supark0206/ticketing/internal/repository"
	"github.com/supark0206/ticketing/pkg/logger"
	"github.com/supark0206/ticketing/pkg/telemetry"
)

// ReservationService owns the reservation state machine. Reservations are
// created IN_PROGRESS together with their pending payment; terminal
// transitions happen through payment confirmation, expiry or cancellation,
// and rows are never deleted.
type ReservationService interface {
	// Create persists Reservation, ReservationSeat and Payment atomically.
	// It trusts that the caller verified the seat lock; the separation
	// between "who may call create" and "what create does" is deliberate.
	Create(ctx context.Context, userID, concertID, seatID string, method domain.PaymentMethod, amount float64) (*domain.Reservation, *domain.Payment, error)

	// Cancel transitions a CONFIRMED reservation to CANCELED with a
	// refund, rejecting anything after the cancel window closes
	Cancel(ctx context.Context, reservationID, userID string) (*dto.CancelReservationResponse, error)

	// GetByID returns a reservation view for its owner
	GetByID(ctx context.Context, reservationID, userID string) (*dto.ReservationResponse, error)

	// ListByUser returns the user's reservations, newest first
	ListByUser(ctx context.Context, userID string) ([]*dto.ReservationResponse, error)

	// ListByConcert returns a concert's reservations
	ListByConcert(ctx context.Context, concertID string, limit, offset int) ([]*dto.ReservationResponse, error)
}

// reservationService implements ReservationService
type reservationService struct {
	reservationRepo repository.ReservationRepository
	paymentRepo     repository.PaymentRepository
	concertRepo     repository.ConcertRepository
	guard           *ExpirationGuard
	publisher       EventPublisher
	holdDuration    time.Duration
	cancelWindow    time.Duration
}

// ReservationServiceConfig contains configuration for the reservation service
type ReservationServiceConfig struct {
	// HoldDuration is the window between creation and automatic expiry
	HoldDuration time.Duration
	// CancelWindow is how long before the concert date cancellation closes
	CancelWindow time.Duration
}

// NewReservationService creates a new reservation service
func NewReservationService(
	reservationRepo repository.ReservationRepository,
	paymentRepo repository.PaymentRepository,
	concertRepo repository.ConcertRepository,
	guard *ExpirationGuard,
	publisher EventPublisher,
	cfg *ReservationServiceConfig,
) ReservationService {
	holdDuration := 10 * time.Minute
	cancelWindow := 2 * time.Hour

	if cfg != nil {
		if cfg.HoldDuration > 0 {
			holdDuration = cfg.HoldDuration
		}
		if cfg.CancelWindow > 0 {
			cancelWindow = cfg.CancelWindow
		}
	}

	return &reservationService{
		reservationRepo: reservationRepo,
		paymentRepo:     paymentRepo,
		concertRepo:     concertRepo,
		guard:           guard,
		publisher:       publisher,
		holdDuration:    holdDuration,
		cancelWindow:    cancelWindow,
	}
}

// Create persists the reservation, seat binding and pending payment
func (s *reservationService) Create(ctx context.Context, userID, concertID, seatID string, method domain.PaymentMethod, amount float64) (*domain.Reservation, *domain.Payment, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("concert_id", concertID),
		attribute.String("seat_id", seatID),
	)

	reservation, err := domain.NewReservation(userID, concertID, s.holdDuration)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	seat, err := domain.NewReservationSeat(reservation.ID, seatID, amount)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	payment, err := domain.NewPayment(reservation.ID, userID, amount, method)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	if err := s.reservationRepo.Create(ctx, reservation, seat, payment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	if err := s.publisher.PublishReservationCreated(ctx, reservation); err != nil {
		logger.Get().Warn("failed to publish reservation created event",
			zap.String("reservation_id", reservation.ID),
			zap.Error(err),
		)
	}
	metrics.RecordReservationCreated(ctx, concertID)

	span.SetAttributes(
		attribute.String("reservation_id", reservation.ID),
		attribute.String("transaction_id", payment.TransactionID),
	)
	span.SetStatus(codes.Ok, "")
	return reservation, payment, nil
}

// Cancel transitions a CONFIRMED reservation to CANCELED with a refund.
// Any violated precondition rejects the whole operation without touching
// a single field.
func (s *reservationService) Cancel(ctx context.Context, reservationID, userID string) (*dto.CancelReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.cancel")
	defer span.End()

	if reservationID == "" {
		span.SetStatus(codes.Error, "invalid reservation_id")
		return nil, domain.ErrInvalidReservationID
	}
	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	span.SetAttributes(
		attribute.String("reservation_id", reservationID),
		attribute.String("user_id", userID),
	)

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if reservation.UserID != userID {
		span.SetStatus(codes.Error, "not owner")
		return nil, domain.ErrNotReservationOwner
	}

	// Lazy expiry on the cancel read path
	if reservation.Status == domain.ReservationStatusInProgress && reservation.IsExpired(time.Now().UTC()) {
		if err := s.guard.ExpireNow(ctx, reservation); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		span.SetStatus(codes.Error, "expired")
		return nil, domain.ErrReservationExpired
	}

	if reservation.Status != domain.ReservationStatusConfirmed {
		span.SetStatus(codes.Error, "not confirmed")
		return nil, domain.ErrInvalidStatusTransition
	}

	concert, err := s.concertRepo.GetByID(ctx, reservation.ConcertID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !concert.IsCancellable(time.Now().UTC(), s.cancelWindow) {
		span.SetStatus(codes.Error, "cancel window closed")
		return nil, domain.ErrCancelWindowClosed
	}

	payment, err := s.paymentRepo.GetByReservationID(ctx, reservation.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var refundAmount float64
	refundPaymentID := ""
	if payment.Status == domain.PaymentStatusSuccess {
		refundAmount = payment.Amount
		refundPaymentID = payment.ID
	}

	if err := s.reservationRepo.CancelWithRefund(ctx, reservation.ID, refundPaymentID, refundAmount); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	reservation.Status = domain.ReservationStatusCanceled

	if err := s.publisher.PublishReservationCancelled(ctx, reservation); err != nil {
		logger.Get().Warn("failed to publish reservation cancelled event",
			zap.String("reservation_id", reservation.ID),
			zap.Error(err),
		)
	}
	metrics.RecordCancellation(ctx, reservation.ConcertID)

	logger.Get().Info("reservation cancelled",
		zap.String("reservation_id", reservation.ID),
		zap.String("user_id", userID),
		zap.Float64("refund_amount", refundAmount),
	)

	span.SetAttributes(attribute.Float64("refund_amount", refundAmount))
	span.SetStatus(codes.Ok, "")
	return &dto.CancelReservationResponse{
		ReservationID: reservation.ID,
		Status:        string(domain.ReservationStatusCanceled),
		RefundAmount:  refundAmount,
	}, nil
}

// GetByID returns a reservation view for its owner
func (s *reservationService) GetByID(ctx context.Context, reservationID, userID string) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.get")
	defer span.End()

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if reservation.UserID != userID {
		span.SetStatus(codes.Error, "not owner")
		return nil, domain.ErrNotReservationOwner
	}

	view, err := s.toResponse(ctx, reservation)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return view, nil
}

// ListByUser returns the user's reservations, newest first
func (s *reservationService) ListByUser(ctx context.Context, userID string) ([]*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.list_by_user")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	reservations, err := s.reservationRepo.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	views := make([]*dto.ReservationResponse, 0, len(reservations))
	for _, reservation := range reservations {
		view, err := s.toResponse(ctx, reservation)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		views = append(views, view)
	}

	span.SetStatus(codes.Ok, "")
	return views, nil
}

// ListByConcert returns a concert's reservations
func (s *reservationService) ListByConcert(ctx context.Context, concertID string, limit, offset int) ([]*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.list_by_concert")
	defer span.End()

	if concertID == "" {
		span.SetStatus(codes.Error, "invalid concert_id")
		return nil, domain.ErrInvalidConcertID
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	reservations, err := s.reservationRepo.ListByConcert(ctx, concertID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	views := make([]*dto.ReservationResponse, 0, len(reservations))
	for _, reservation := range reservations {
		view, err := s.toResponse(ctx, reservation)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		views = append(views, view)
	}

	span.SetStatus(codes.Ok, "")
	return views, nil
}

func (s *reservationService) toResponse(ctx context.Context, reservation *domain.Reservation) (*dto.ReservationResponse, error) {
	seats, err := s.reservationRepo.GetSeats(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}

	var total float64
	seatViews := make([]dto.ReservationSeatView, 0, len(seats))
	for _, seat := range seats {
		total += seat.Price
		seatViews = append(seatViews, dto.ReservationSeatView{
			SeatID: seat.SeatID,
			Price:  seat.Price,
		})
	}

	return &dto.ReservationResponse{
		ID:              reservation.ID,
		UserID:          reservation.UserID,
		ConcertID:       reservation.ConcertID,
		Status:          string(reservation.Status),
		ReservationTime: reservation.ReservationTime,
		ExpireTime:      reservation.ExpireTime,
		Seats:           seatViews,
		TotalAmount:     total,
	}, nil
}
