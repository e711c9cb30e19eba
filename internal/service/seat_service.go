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

// SeatService covers the seat catalog and the select operation, which is
// where a user takes a temporary hold on a seat before paying
type SeatService interface {
	// Select attempts to lock the seat for the user. A non-acquired lock
	// status is returned in the response, not as an error.
	Select(ctx context.Context, seatID, userID string) (*dto.SelectSeatResponse, error)

	// SeatMap returns every seat of a concert annotated with reservation
	// and lock state
	SeatMap(ctx context.Context, concertID string) ([]*dto.SeatMapEntry, error)

	CreateBatch(ctx context.Context, req *dto.CreateSeatsRequest) ([]*domain.Seat, error)
	GetByID(ctx context.Context, seatID string) (*domain.Seat, error)
	ListByConcert(ctx context.Context, concertID string, grade string) ([]*domain.Seat, error)
	Update(ctx context.Context, seatID string, req *dto.UpdateSeatRequest) (*domain.Seat, error)
	Delete(ctx context.Context, seatID string) error
}

// seatService implements SeatService
type seatService struct {
	seatRepo        repository.SeatRepository
	concertRepo     repository.ConcertRepository
	reservationRepo repository.ReservationRepository
	lockService     SeatLockService
}

// NewSeatService creates a new seat service
func NewSeatService(
	seatRepo repository.SeatRepository,
	concertRepo repository.ConcertRepository,
	reservationRepo repository.ReservationRepository,
	lockService SeatLockService,
) SeatService {
	return &seatService{
		seatRepo:        seatRepo,
		concertRepo:     concertRepo,
		reservationRepo: reservationRepo,
		lockService:     lockService,
	}
}

// Select locks the seat for the user and returns the seat with its lock
// outcome. The booking window and reservation state are checked before
// the lock attempt so a rejected request never consumes the lock slot.
func (s *seatService) Select(ctx context.Context, seatID, userID string) (*dto.SelectSeatResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.select")
	defer span.End()

	if seatID == "" {
		span.SetStatus(codes.Error, "invalid seat_id")
		return nil, domain.ErrInvalidSeatID
	}
	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	span.SetAttributes(
		attribute.String("seat_id", seatID),
		attribute.String("user_id", userID),
	)

	seat, err := s.seatRepo.GetByID(ctx, seatID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	concert, err := s.concertRepo.GetByID(ctx, seat.ConcertID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !concert.IsBookingOpen(time.Now().UTC()) {
		span.SetStatus(codes.Error, "booking not open")
		return nil, domain.ErrBookingNotOpen
	}

	reserved, err := s.reservationRepo.HasActiveForSeat(ctx, seatID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if reserved {
		span.SetStatus(codes.Error, "seat already reserved")
		return nil, domain.ErrSeatAlreadyReserved
	}

	result, err := s.lockService.Acquire(ctx, seatID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	switch result.Status {
	case domain.LockAcquired:
		metrics.RecordLockAcquired(ctx, seat.ConcertID)
		logger.Get().Info("seat selected",
			zap.String("seat_id", seatID),
			zap.String("user_id", userID),
		)
	case domain.LockOwnedByOther:
		metrics.RecordLockConflict(ctx, seat.ConcertID)
	}

	span.SetAttributes(attribute.String("lock_status", string(result.Status)))
	span.SetStatus(codes.Ok, "")
	return &dto.SelectSeatResponse{
		SeatID:       seat.ID,
		SeatNumber:   seat.SeatNumber,
		Grade:        string(seat.Grade),
		Price:        seat.Price,
		LockStatus:   string(result.Status),
		ExpiresAt:    result.ExpiresAt,
		RemainingTTL: int64(result.RemainingTTL.Seconds()),
	}, nil
}

// SeatMap overlays reservation and lock state on the concert's seats
func (s *seatService) SeatMap(ctx context.Context, concertID string) ([]*dto.SeatMapEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.seat_map")
	defer span.End()

	if concertID == "" {
		span.SetStatus(codes.Error, "invalid concert_id")
		return nil, domain.ErrInvalidConcertID
	}
	span.SetAttributes(attribute.String("concert_id", concertID))

	seats, err := s.seatRepo.ListByConcert(ctx, concertID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	reservedIDs, err := s.reservationRepo.ActiveSeatIDs(ctx, concertID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	reserved := make(map[string]struct{}, len(reservedIDs))
	for _, id := range reservedIDs {
		reserved[id] = struct{}{}
	}

	entries := make([]*dto.SeatMapEntry, 0, len(seats))
	for _, seat := range seats {
		entry := &dto.SeatMapEntry{
			SeatResponse: dto.SeatResponse{
				ID:         seat.ID,
				ConcertID:  seat.ConcertID,
				SeatNumber: seat.SeatNumber,
				Grade:      string(seat.Grade),
				Price:      seat.Price,
			},
		}
		if _, ok := reserved[seat.ID]; ok {
			entry.Reserved = true
		} else {
			locked, err := s.lockService.IsLocked(ctx, seat.ID)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			entry.Locked = locked
		}
		entries = append(entries, entry)
	}

	span.SetAttributes(attribute.Int("seat_count", len(entries)))
	span.SetStatus(codes.Ok, "")
	return entries, nil
}

// CreateBatch creates seats for a concert, rejecting duplicate seat numbers
func (s *seatService) CreateBatch(ctx context.Context, req *dto.CreateSeatsRequest) ([]*domain.Seat, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.create_batch")
	defer span.End()

	if _, err := s.concertRepo.GetByID(ctx, req.ConcertID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	seen := make(map[string]struct{}, len(req.Seats))
	seats := make([]*domain.Seat, 0, len(req.Seats))
	for _, input := range req.Seats {
		if _, dup := seen[input.SeatNumber]; dup {
			span.SetStatus(codes.Error, "duplicate seat number in batch")
			return nil, domain.ErrSeatAlreadyExists
		}
		seen[input.SeatNumber] = struct{}{}

		exists, err := s.seatRepo.ExistsByNumber(ctx, req.ConcertID, input.SeatNumber)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if exists {
			span.SetStatus(codes.Error, "seat number already exists")
			return nil, domain.ErrSeatAlreadyExists
		}

		seat, err := domain.NewSeat(req.ConcertID, input.SeatNumber, domain.SeatGrade(input.Grade), input.Price)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		seats = append(seats, seat)
	}

	if err := s.seatRepo.CreateBatch(ctx, seats); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Get().Info("seats created",
		zap.String("concert_id", req.ConcertID),
		zap.Int("count", len(seats)),
	)

	span.SetAttributes(attribute.Int("seat_count", len(seats)))
	span.SetStatus(codes.Ok, "")
	return seats, nil
}

// GetByID returns a seat by ID
func (s *seatService) GetByID(ctx context.Context, seatID string) (*domain.Seat, error) {
	if seatID == "" {
		return nil, domain.ErrInvalidSeatID
	}
	return s.seatRepo.GetByID(ctx, seatID)
}

// ListByConcert lists a concert's seats, optionally filtered by grade
func (s *seatService) ListByConcert(ctx context.Context, concertID string, grade string) ([]*domain.Seat, error) {
	if concertID == "" {
		return nil, domain.ErrInvalidConcertID
	}
	if grade != "" {
		return s.seatRepo.ListByConcertAndGrade(ctx, concertID, domain.SeatGrade(grade))
	}
	return s.seatRepo.ListByConcert(ctx, concertID)
}

// Update applies administrative edits to a seat
func (s *seatService) Update(ctx context.Context, seatID string, req *dto.UpdateSeatRequest) (*domain.Seat, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.update")
	defer span.End()

	seat, err := s.seatRepo.GetByID(ctx, seatID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req.SeatNumber != "" && req.SeatNumber != seat.SeatNumber {
		exists, err := s.seatRepo.ExistsByNumber(ctx, seat.ConcertID, req.SeatNumber)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if exists {
			span.SetStatus(codes.Error, "seat number already exists")
			return nil, domain.ErrSeatAlreadyExists
		}
		seat.SeatNumber = req.SeatNumber
	}
	if req.Grade != "" {
		seat.Grade = domain.SeatGrade(req.Grade)
	}
	if req.Price > 0 {
		seat.Price = req.Price
	}
	seat.UpdatedAt = time.Now().UTC()

	if err := s.seatRepo.Update(ctx, seat); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return seat, nil
}

// Delete soft-deletes a seat unless it has an active reservation
func (s *seatService) Delete(ctx context.Context, seatID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.delete")
	defer span.End()

	if _, err := s.seatRepo.GetByID(ctx, seatID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	active, err := s.reservationRepo.HasActiveForSeat(ctx, seatID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if active {
		span.SetStatus(codes.Error, "seat has active reservation")
		return domain.ErrSeatHasActiveReservation
	}

	if err := s.seatRepo.SoftDelete(ctx, seatID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
