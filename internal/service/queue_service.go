package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/supark0206/ticketing/internal/domain"
	"github.com/supark0206/ticketing/internal/metrics"
	"github.com/supark0206/ticketing/internal/repository"
	"github.com/supark0206/ticketing/pkg/telemetry"
)

// QueueService is the admission controller for a concert's waiting line.
// Ordering is strictly FIFO by arrival time; admission bypasses the line
// entirely when a seat is currently selectable.
type QueueService interface {
	// Register enters the user into the line, unless a seat is free right
	// now or the user is already waiting
	Register(ctx context.Context, concertID, userID string) (*domain.QueueRegistration, error)

	// Position returns the user's 1-based rank, or 0 when absent
	Position(ctx context.Context, concertID, userID string) (int64, error)

	// Size returns the number of users waiting for the concert
	Size(ctx context.Context, concertID string) (int64, error)

	// AdmitNext removes the earliest-arrived member, making room in strict
	// arrival order. ok is false when the line is empty.
	AdmitNext(ctx context.Context, concertID string) (userID string, ok bool, err error)

	// StatusSnapshot re-evaluates seat freedom and fairness for one poll
	// tick. When a seat is free it opportunistically admits the head of
	// the line before answering.
	StatusSnapshot(ctx context.Context, concertID, userID string) (*domain.QueueSnapshot, error)
}

// queueService implements QueueService
type queueService struct {
	queueRepo     repository.QueueRepository
	seatRepo      repository.SeatRepository
	lockRepo      repository.SeatLockRepository
	waitPerSlot   time.Duration
	membershipTTL time.Duration
}

// QueueServiceConfig contains configuration for the queue service
type QueueServiceConfig struct {
	// WaitPerSlot is the estimated wait contributed by each position ahead
	WaitPerSlot time.Duration
	// MembershipTTL bounds how long an abandoned membership record survives
	MembershipTTL time.Duration
}

// NewQueueService creates a new queue admission service
func NewQueueService(
	queueRepo repository.QueueRepository,
	seatRepo repository.SeatRepository,
	lockRepo repository.SeatLockRepository,
	cfg *QueueServiceConfig,
) QueueService {
	waitPerSlot := 30 * time.Second
	membershipTTL := 24 * time.Hour

	if cfg != nil {
		if cfg.WaitPerSlot > 0 {
			waitPerSlot = cfg.WaitPerSlot
		}
		if cfg.MembershipTTL > 0 {
			membershipTTL = cfg.MembershipTTL
		}
	}

	return &queueService{
		queueRepo:     queueRepo,
		seatRepo:      seatRepo,
		lockRepo:      lockRepo,
		waitPerSlot:   waitPerSlot,
		membershipTTL: membershipTTL,
	}
}

// Register enters the user into the line for a concert
func (s *queueService) Register(ctx context.Context, concertID, userID string) (*domain.QueueRegistration, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.queue.register")
	defer span.End()

	if concertID == "" {
		span.SetStatus(codes.Error, "invalid concert_id")
		return nil, domain.ErrInvalidConcertID
	}
	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	span.SetAttributes(
		attribute.String("concert_id", concertID),
		attribute.String("user_id", userID),
	)

	// Callers must not wait in line while a seat could be taken directly
	free, err := s.hasFreeSeat(ctx, concertID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if free {
		span.SetAttributes(attribute.String("outcome", string(domain.QueueOutcomeAdmitted)))
		span.SetStatus(codes.Ok, "")
		return &domain.QueueRegistration{
			Outcome:  domain.QueueOutcomeAdmitted,
			Position: 0,
		}, nil
	}

	inLine, err := s.queueRepo.IsMember(ctx, concertID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !inLine {
		added, err := s.queueRepo.Enqueue(ctx, concertID, userID, time.Now().UTC(), s.membershipTTL)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		// A concurrent register can win the insert; either way the user
		// is in line now
		inLine = !added
		if added {
			metrics.RecordQueueJoin(ctx, concertID)
		}
	}

	position, err := s.queueRepo.Position(ctx, concertID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	outcome := domain.QueueOutcomeQueued
	if inLine {
		outcome = domain.QueueOutcomeAlreadyQueued
	}

	span.SetAttributes(
		attribute.String("outcome", string(outcome)),
		attribute.Int64("position", position),
	)
	span.SetStatus(codes.Ok, "")
	return &domain.QueueRegistration{
		Outcome:  outcome,
		Position: position,
	}, nil
}

// Position returns the user's 1-based rank, or 0 when absent
func (s *queueService) Position(ctx context.Context, concertID, userID string) (int64, error) {
	return s.queueRepo.Position(ctx, concertID, userID)
}

// Size returns the number of users waiting for the concert
func (s *queueService) Size(ctx context.Context, concertID string) (int64, error) {
	return s.queueRepo.Size(ctx, concertID)
}

// AdmitNext removes the earliest-arrived member
func (s *queueService) AdmitNext(ctx context.Context, concertID string) (string, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.queue.admit_next")
	defer span.End()

	span.SetAttributes(attribute.String("concert_id", concertID))

	userID, ok, err := s.queueRepo.PopEarliest(ctx, concertID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", false, err
	}

	if ok {
		metrics.RecordQueueAdmission(ctx, concertID)
		span.SetAttributes(attribute.String("admitted_user_id", userID))
	}
	span.SetStatus(codes.Ok, "")
	return userID, ok, nil
}

// StatusSnapshot computes one tick of the cooperative polling loop
func (s *queueService) StatusSnapshot(ctx context.Context, concertID, userID string) (*domain.QueueSnapshot, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.queue.status_snapshot")
	defer span.End()

	span.SetAttributes(
		attribute.String("concert_id", concertID),
		attribute.String("user_id", userID),
	)

	canEnter, err := s.hasFreeSeat(ctx, concertID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if canEnter {
		// A seat is free: let the head of the line through before
		// answering so this poll observes the updated order
		if _, _, err := s.AdmitNext(ctx, concertID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	position, err := s.queueRepo.Position(ctx, concertID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	total, err := s.queueRepo.Size(ctx, concertID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	snapshot := &domain.QueueSnapshot{
		Position:             position,
		TotalQueue:           total,
		EstimatedWaitSeconds: position * int64(s.waitPerSlot.Seconds()),
		CanEnter:             canEnter,
		Timestamp:            time.Now().UTC(),
	}

	span.SetAttributes(
		attribute.Int64("position", position),
		attribute.Int64("total_queue", total),
		attribute.Bool("can_enter", canEnter),
	)
	span.SetStatus(codes.Ok, "")
	return snapshot, nil
}

// hasFreeSeat reports whether at least one seat of the concert has no
// active reservation and no lock
func (s *queueService) hasFreeSeat(ctx context.Context, concertID string) (bool, error) {
	ids, err := s.seatRepo.AvailableSeatIDs(ctx, concertID)
	if err != nil {
		return false, err
	}

	for _, seatID := range ids {
		locked, err := s.lockRepo.IsLocked(ctx, seatID)
		if err != nil {
			return false, err
		}
		if !locked {
			return true, nil
		}
	}
	return false, nil
}
