package repository

import (
	"context"

	"github.com/supark0206/ticketing/internal/domain"
)

// ConcertRepository defines persistence for concerts
type ConcertRepository interface {
	Create(ctx context.Context, concert *domain.Concert) error
	GetByID(ctx context.Context, id string) (*domain.Concert, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Concert, error)
	Update(ctx context.Context, concert *domain.Concert) error
	SoftDelete(ctx context.Context, id string) error
}

// SeatRepository defines persistence for seats
type SeatRepository interface {
	CreateBatch(ctx context.Context, seats []*domain.Seat) error
	GetByID(ctx context.Context, id string) (*domain.Seat, error)
	ListByConcert(ctx context.Context, concertID string) ([]*domain.Seat, error)
	ListByConcertAndGrade(ctx context.Context, concertID string, grade domain.SeatGrade) ([]*domain.Seat, error)
	Update(ctx context.Context, seat *domain.Seat) error
	SoftDelete(ctx context.Context, id string) error

	// ExistsByNumber reports whether the concert already has a seat with
	// the given seat number
	ExistsByNumber(ctx context.Context, concertID, seatNumber string) (bool, error)

	// AvailableSeatIDs returns IDs of non-deleted seats with no active
	// reservation. Lock state is not consulted here; callers overlay it.
	AvailableSeatIDs(ctx context.Context, concertID string) ([]string, error)
}
