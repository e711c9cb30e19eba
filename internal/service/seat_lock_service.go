package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/supark0206/ticketing/internal/domain"
	"github.com/supark0206/ticketing/internal/repository"
	"github.com/supark0206/ticketing/pkg/logger"
	"github.com/supark0206/ticketing/pkg/telemetry"
)

// SeatLockService expresses acquire/release/query semantics for a single
// seat per holder on top of the atomic lock store
type SeatLockService interface {
	// Acquire attempts to take exclusive time-bounded ownership of a seat
	Acquire(ctx context.Context, seatID, holderID string) (*domain.LockResult, error)

	// Release removes the caller's lock. Releasing a lock the caller no
	// longer owns is idempotent cleanup, not an error.
	Release(ctx context.Context, seatID, holderID string) error

	// RemainingTTL returns the remaining lifetime of a seat's lock
	RemainingTTL(ctx context.Context, seatID string) (time.Duration, bool, error)

	// IsLocked reports whether any holder currently owns the seat
	IsLocked(ctx context.Context, seatID string) (bool, error)

	// IsHeldBy reports whether the given holder currently owns the seat
	IsHeldBy(ctx context.Context, seatID, holderID string) (bool, error)
}

// seatLockService implements SeatLockService
type seatLockService struct {
	lockRepo repository.SeatLockRepository
	lockTTL  time.Duration
}

// SeatLockServiceConfig contains configuration for the seat lock service
type SeatLockServiceConfig struct {
	LockTTL time.Duration
}

// NewSeatLockService creates a new seat lock service
func NewSeatLockService(lockRepo repository.SeatLockRepository, cfg *SeatLockServiceConfig) SeatLockService {
	ttl := 10 * time.Minute
	if cfg != nil && cfg.LockTTL > 0 {
		ttl = cfg.LockTTL
	}

	return &seatLockService{
		lockRepo: lockRepo,
		lockTTL:  ttl,
	}
}

// Acquire attempts the lock with a single set-if-absent round trip. On
// conflict a second read decides between ALREADY_OWNED, OWNED_BY_OTHER and
// RETRY_NEEDED; the TTL can race to expiry between the failed set and the
// read, in which case guessing either way would be wrong.
func (s *seatLockService) Acquire(ctx context.Context, seatID, holderID string) (*domain.LockResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat_lock.acquire")
	defer span.End()

	if seatID == "" {
		span.SetStatus(codes.Error, "invalid seat_id")
		return nil, domain.ErrInvalidSeatID
	}
	if holderID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	span.SetAttributes(
		attribute.String("seat_id", seatID),
		attribute.String("holder_id", holderID),
	)

	acquired, err := s.lockRepo.TryAcquire(ctx, seatID, holderID, s.lockTTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if acquired {
		span.SetAttributes(attribute.String("lock_status", string(domain.LockAcquired)))
		span.SetStatus(codes.Ok, "")
		return &domain.LockResult{
			Status:       domain.LockAcquired,
			SeatID:       seatID,
			HolderID:     holderID,
			RemainingTTL: s.lockTTL,
			ExpiresAt:    time.Now().UTC().Add(s.lockTTL),
		}, nil
	}

	holder, err := s.lockRepo.GetHolder(ctx, seatID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	switch holder {
	case "":
		span.SetAttributes(attribute.String("lock_status", string(domain.LockRetryNeeded)))
		span.SetStatus(codes.Ok, "")
		return &domain.LockResult{
			Status: domain.LockRetryNeeded,
			SeatID: seatID,
		}, nil
	case holderID:
		ttl, exists, err := s.lockRepo.RemainingTTL(ctx, seatID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if !exists {
			// The caller's own lock expired between the two reads
			span.SetAttributes(attribute.String("lock_status", string(domain.LockRetryNeeded)))
			span.SetStatus(codes.Ok, "")
			return &domain.LockResult{
				Status: domain.LockRetryNeeded,
				SeatID: seatID,
			}, nil
		}
		span.SetAttributes(attribute.String("lock_status", string(domain.LockAlreadyOwned)))
		span.SetStatus(codes.Ok, "")
		return &domain.LockResult{
			Status:       domain.LockAlreadyOwned,
			SeatID:       seatID,
			HolderID:     holderID,
			RemainingTTL: ttl,
			ExpiresAt:    time.Now().UTC().Add(ttl),
		}, nil
	default:
		span.SetAttributes(attribute.String("lock_status", string(domain.LockOwnedByOther)))
		span.SetStatus(codes.Ok, "")
		return &domain.LockResult{
			Status: domain.LockOwnedByOther,
			SeatID: seatID,
		}, nil
	}
}

// Release deletes the lock only if the caller still holds it
func (s *seatLockService) Release(ctx context.Context, seatID, holderID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.seat_lock.release")
	defer span.End()

	span.SetAttributes(
		attribute.String("seat_id", seatID),
		attribute.String("holder_id", holderID),
	)

	released, err := s.lockRepo.Release(ctx, seatID, holderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if !released {
		logger.Get().Debug("seat lock not released, already gone or owned by other",
			zap.String("seat_id", seatID),
			zap.String("holder_id", holderID),
		)
	}

	span.SetAttributes(attribute.Bool("released", released))
	span.SetStatus(codes.Ok, "")
	return nil
}

// RemainingTTL returns the remaining lifetime of a seat's lock
func (s *seatLockService) RemainingTTL(ctx context.Context, seatID string) (time.Duration, bool, error) {
	return s.lockRepo.RemainingTTL(ctx, seatID)
}

// IsLocked reports whether any holder currently owns the seat
func (s *seatLockService) IsLocked(ctx context.Context, seatID string) (bool, error) {
	return s.lockRepo.IsLocked(ctx, seatID)
}

// IsHeldBy reports whether the given holder currently owns the seat
func (s *seatLockService) IsHeldBy(ctx context.Context, seatID, holderID string) (bool, error) {
	holder, err := s.lockRepo.GetHolder(ctx, seatID)
	if err != nil {
		return false, err
	}
	return holder != "" && holder == holderID, nil
}
