package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/supark0206/ticketing/internal/domain"
	"github.com/supark0206/ticketing/internal/dto"
	"github.com/supark0206/ticketing/internal/metrics"
	"github.com/supark0206/ticketing/internal/notification"
	"github.com/supark0206/ticketing/internal/repository"
	"github.com/supark0206/ticketing/pkg/logger"
	"github.com/supark0206/ticketing/pkg/telemetry"
)

// PaymentService opens pending payments and finalizes them from the
// asynchronous gateway callback. Confirm is the only writer of terminal
// payment states besides expiry handling, and it is idempotent against
// duplicate callbacks.
type PaymentService interface {
	// Start verifies the caller holds the seat lock, then opens the
	// reservation with its pending payment
	Start(ctx context.Context, userID string, req *dto.StartPaymentRequest) (*dto.StartPaymentResponse, error)

	// Confirm finalizes the payment identified by transactionID with the
	// gateway's verdict
	Confirm(ctx context.Context, transactionID string, externalSuccess bool) (*dto.WebhookResponse, error)
}

// paymentService implements PaymentService
type paymentService struct {
	paymentRepo        repository.PaymentRepository
	reservationRepo    repository.ReservationRepository
	seatRepo           repository.SeatRepository
	lockService        SeatLockService
	reservationService ReservationService
	guard              *ExpirationGuard
	publisher          EventPublisher
	notifier           notification.Notifier
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	reservationRepo repository.ReservationRepository,
	seatRepo repository.SeatRepository,
	lockService SeatLockService,
	reservationService ReservationService,
	guard *ExpirationGuard,
	publisher EventPublisher,
	notifier notification.Notifier,
) PaymentService {
	return &paymentService{
		paymentRepo:        paymentRepo,
		reservationRepo:    reservationRepo,
		seatRepo:           seatRepo,
		lockService:        lockService,
		reservationService: reservationService,
		guard:              guard,
		publisher:          publisher,
		notifier:           notifier,
	}
}

// Start opens a reservation and pending payment for a locked seat
func (s *paymentService) Start(ctx context.Context, userID string, req *dto.StartPaymentRequest) (*dto.StartPaymentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.start")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if req == nil || req.SeatID == "" {
		span.SetStatus(codes.Error, "invalid seat_id")
		return nil, domain.ErrInvalidSeatID
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("seat_id", req.SeatID),
	)

	seat, err := s.seatRepo.GetByID(ctx, req.SeatID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	active, err := s.reservationRepo.HasActiveForSeat(ctx, seat.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if active {
		span.SetStatus(codes.Error, "seat already reserved")
		return nil, domain.ErrSeatAlreadyReserved
	}

	// The lock check lives here, not in ReservationService.Create
	held, err := s.lockService.IsHeldBy(ctx, seat.ID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !held {
		span.SetStatus(codes.Error, "seat not selected")
		return nil, domain.ErrSeatNotSelected
	}

	reservation, payment, err := s.reservationService.Create(ctx, userID, seat.ConcertID, seat.ID, domain.PaymentMethod(req.Method), req.Amount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("reservation_id", reservation.ID),
		attribute.String("transaction_id", payment.TransactionID),
	)
	span.SetStatus(codes.Ok, "")
	return &dto.StartPaymentResponse{
		ReservationID: reservation.ID,
		Status:        string(reservation.Status),
		TransactionID: payment.TransactionID,
	}, nil
}

// Confirm finalizes the payment. The ordering here is deliberate:
// validate, branch, always release. Releasing after the commit makes the
// seat selectable again immediately after a failure without waiting for
// TTL expiry, and a success outcome is never downgraded by a late lock
// race.
func (s *paymentService) Confirm(ctx context.Context, transactionID string, externalSuccess bool) (*dto.WebhookResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.confirm")
	defer span.End()

	if transactionID == "" {
		span.SetStatus(codes.Error, "invalid transaction_id")
		return nil, domain.ErrInvalidTransactionID
	}

	span.SetAttributes(
		attribute.String("transaction_id", transactionID),
		attribute.Bool("external_success", externalSuccess),
	)

	payment, err := s.paymentRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if payment.IsProcessed() {
		span.SetStatus(codes.Error, "already processed")
		return nil, domain.ErrPaymentAlreadyProcessed
	}

	reservation, err := s.reservationRepo.GetByID(ctx, payment.ReservationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if reservation.Status == domain.ReservationStatusConfirmed {
		span.SetStatus(codes.Error, "reservation already confirmed")
		return nil, domain.ErrReservationConfirmed
	}

	// A late success callback must not resurrect an expired hold
	now := time.Now().UTC()
	if reservation.Status == domain.ReservationStatusInProgress && reservation.IsExpired(now) {
		if err := s.guard.ExpireNow(ctx, reservation); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		span.SetStatus(codes.Error, "expired")
		return nil, domain.ErrReservationExpired
	}

	if externalSuccess {
		err = s.confirmSuccess(ctx, reservation, payment, now)
	} else {
		err = s.confirmFailure(ctx, reservation)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Always release, whichever branch committed. Failures are logged
	// only: the state change is already durable.
	s.guard.ReleaseSeatLocks(ctx, reservation)

	paymentStatus := domain.PaymentStatusSuccess
	if !externalSuccess {
		paymentStatus = domain.PaymentStatusFailed
	}

	span.SetAttributes(attribute.String("reservation_status", string(reservation.Status)))
	span.SetStatus(codes.Ok, "")
	return &dto.WebhookResponse{
		TransactionID:     transactionID,
		Success:           externalSuccess,
		ReservationStatus: string(reservation.Status),
		PaymentStatus:     string(paymentStatus),
	}, nil
}

func (s *paymentService) confirmSuccess(ctx context.Context, reservation *domain.Reservation, payment *domain.Payment, now time.Time) error {
	if err := s.reservationRepo.Confirm(ctx, reservation.ID, payment.ID, now); err != nil {
		return err
	}
	reservation.Status = domain.ReservationStatusConfirmed

	if err := s.publisher.PublishReservationConfirmed(ctx, reservation); err != nil {
		logger.Get().Warn("failed to publish reservation confirmed event",
			zap.String("reservation_id", reservation.ID),
			zap.Error(err),
		)
	}
	metrics.RecordConfirmation(ctx, reservation.ConcertID, now.Sub(reservation.ReservationTime).Seconds())

	// Email delivery is asynchronous and best-effort; the confirmation
	// has already committed
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		notif := &notification.EmailNotification{
			To:            reservation.UserID,
			Subject:       "Booking confirmed",
			ReservationID: reservation.ID,
			TransactionID: payment.TransactionID,
			Amount:        payment.Amount,
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.notifier.SendBookingConfirmation(sendCtx, notif); err != nil {
			logger.Get().Warn("failed to send booking confirmation",
				zap.String("reservation_id", reservation.ID),
				zap.Error(err),
			)
		}
	}()

	logger.Get().Info("payment confirmed",
		zap.String("reservation_id", reservation.ID),
		zap.String("transaction_id", payment.TransactionID),
	)
	return nil
}

func (s *paymentService) confirmFailure(ctx context.Context, reservation *domain.Reservation) error {
	payment, err := s.paymentRepo.GetByReservationID(ctx, reservation.ID)
	if err != nil {
		return fmt.Errorf("failed to load payment for failure: %w", err)
	}

	if err := s.reservationRepo.Fail(ctx, reservation.ID, payment.ID); err != nil {
		return err
	}
	reservation.Status = domain.ReservationStatusFailed

	if err := s.publisher.PublishReservationFailed(ctx, reservation); err != nil {
		logger.Get().Warn("failed to publish reservation failed event",
			zap.String("reservation_id", reservation.ID),
			zap.Error(err),
		)
	}
	metrics.RecordFailure(ctx, reservation.ConcertID)

	logger.Get().Info("payment failed",
		zap.String("reservation_id", reservation.ID),
	)
	return nil
}
