package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/supark0206/ticketing/internal/domain"
	"github.com/supark0206/ticketing/internal/metrics"
	"github.com/supark0206/ticketing/internal/repository"
	"github.com/supark0206/ticketing/pkg/logger"
	"github.com/supark0206/ticketing/pkg/telemetry"
)

// ExpirationGuard performs the terminal transition for a reservation whose
// hold window has passed while still IN_PROGRESS. Expiry is detected lazily
// by the confirm and cancel read paths, and by the optional sweep worker;
// all of them funnel through here so the semantics live in one place.
type ExpirationGuard struct {
	reservationRepo repository.ReservationRepository
	paymentRepo     repository.PaymentRepository
	lockService     SeatLockService
	publisher       EventPublisher
}

// NewExpirationGuard creates a new expiration guard
func NewExpirationGuard(
	reservationRepo repository.ReservationRepository,
	paymentRepo repository.PaymentRepository,
	lockService SeatLockService,
	publisher EventPublisher,
) *ExpirationGuard {
	return &ExpirationGuard{
		reservationRepo: reservationRepo,
		paymentRepo:     paymentRepo,
		lockService:     lockService,
		publisher:       publisher,
	}
}

// ExpireNow moves the reservation to EXPIRED and its payment to FAILED,
// then attempts to release every seat lock of the reservation. Lock
// release failures are logged, never propagated: the terminal state has
// already committed.
func (g *ExpirationGuard) ExpireNow(ctx context.Context, reservation *domain.Reservation) error {
	ctx, span := telemetry.StartSpan(ctx, "service.expiration_guard.expire")
	defer span.End()

	span.SetAttributes(attribute.String("reservation_id", reservation.ID))

	payment, err := g.paymentRepo.GetByReservationID(ctx, reservation.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := g.reservationRepo.Expire(ctx, reservation.ID, payment.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	reservation.Status = domain.ReservationStatusExpired

	g.ReleaseSeatLocks(ctx, reservation)

	if err := g.publisher.PublishReservationExpired(ctx, reservation); err != nil {
		logger.Get().Warn("failed to publish reservation expired event",
			zap.String("reservation_id", reservation.ID),
			zap.Error(err),
		)
	}
	metrics.RecordExpiration(ctx, reservation.ConcertID, 1)

	logger.Get().Info("reservation expired",
		zap.String("reservation_id", reservation.ID),
		zap.String("user_id", reservation.UserID),
	)

	span.SetStatus(codes.Ok, "")
	return nil
}

// ReleaseSeatLocks attempts to release every seat lock of the reservation.
// A lock already gone, or owned by a new holder after a TTL race, is not
// an error.
func (g *ExpirationGuard) ReleaseSeatLocks(ctx context.Context, reservation *domain.Reservation) {
	seats, err := g.reservationRepo.GetSeats(ctx, reservation.ID)
	if err != nil {
		logger.Get().Warn("failed to load reservation seats for lock release",
			zap.String("reservation_id", reservation.ID),
			zap.Error(err),
		)
		return
	}

	for _, seat := range seats {
		if err := g.lockService.Release(ctx, seat.SeatID, reservation.UserID); err != nil {
			logger.Get().Warn("failed to release seat lock",
				zap.String("reservation_id", reservation.ID),
				zap.String("seat_id", seat.SeatID),
				zap.Error(err),
			)
		}
	}
}
