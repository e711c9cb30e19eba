package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/supark0206/ticketing/internal/domain"
	"github.com/supark0206/ticketing/internal/dto"
	"github.com/supark0206/ticketing/internal/repository"
	"github.com/supark0206/ticketing/pkg/logger"
	"github.com/supark0206/ticketing/pkg/telemetry"
)

// ConcertService manages the concert catalog
type ConcertService interface {
	Create(ctx context.Context, req *dto.CreateConcertRequest) (*domain.Concert, error)
	GetByID(ctx context.Context, id string) (*domain.Concert, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Concert, error)
	Update(ctx context.Context, id string, req *dto.UpdateConcertRequest) (*domain.Concert, error)
	Delete(ctx context.Context, id string) error
}

// concertService implements ConcertService
type concertService struct {
	concertRepo repository.ConcertRepository
}

// NewConcertService creates a new concert service
func NewConcertService(concertRepo repository.ConcertRepository) ConcertService {
	return &concertService{concertRepo: concertRepo}
}

// Create creates a scheduled concert
func (s *concertService) Create(ctx context.Context, req *dto.CreateConcertRequest) (*domain.Concert, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.concert.create")
	defer span.End()

	concert, err := domain.NewConcert(req.Title, req.Venue, req.ConcertDate, req.BookingOpenTime, req.BookingCloseTime)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.concertRepo.Create(ctx, concert); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Get().Info("concert created",
		zap.String("concert_id", concert.ID),
		zap.String("title", concert.Title),
	)

	span.SetAttributes(attribute.String("concert_id", concert.ID))
	span.SetStatus(codes.Ok, "")
	return concert, nil
}

// GetByID returns a concert by ID
func (s *concertService) GetByID(ctx context.Context, id string) (*domain.Concert, error) {
	if id == "" {
		return nil, domain.ErrInvalidConcertID
	}
	return s.concertRepo.GetByID(ctx, id)
}

// List returns concerts ordered by date
func (s *concertService) List(ctx context.Context, limit, offset int) ([]*domain.Concert, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.concertRepo.List(ctx, limit, offset)
}

// Update applies administrative edits to a concert
func (s *concertService) Update(ctx context.Context, id string, req *dto.UpdateConcertRequest) (*domain.Concert, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.concert.update")
	defer span.End()

	concert, err := s.concertRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req.Title != "" {
		concert.Title = req.Title
	}
	if req.Venue != "" {
		concert.Venue = req.Venue
	}
	if req.ConcertDate != nil {
		concert.ConcertDate = *req.ConcertDate
	}
	if req.BookingOpenTime != nil {
		concert.BookingOpenTime = *req.BookingOpenTime
	}
	if req.BookingCloseTime != nil {
		concert.BookingCloseTime = *req.BookingCloseTime
	}
	if req.Status != "" {
		concert.Status = domain.ConcertStatus(req.Status)
	}
	concert.UpdatedAt = time.Now().UTC()

	if err := s.concertRepo.Update(ctx, concert); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("concert_id", concert.ID))
	span.SetStatus(codes.Ok, "")
	return concert, nil
}

// Delete soft-deletes a concert
func (s *concertService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.concert.delete")
	defer span.End()

	if _, err := s.concertRepo.GetByID(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.concertRepo.SoftDelete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
