package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/supark0206/ticketing/internal/domain"
	"github.com/supark0206/ticketing/pkg/database"
)

// PostgresConcertRepository implements ConcertRepository using PostgreSQL
type PostgresConcertRepository struct {
	db *database.PostgresDB
}

// NewPostgresConcertRepository creates a new PostgreSQL concert repository
func NewPostgresConcertRepository(db *database.PostgresDB) *PostgresConcertRepository {
	return &PostgresConcertRepository{db: db}
}

const concertColumns = `
	id, title, venue, concert_date, booking_open_time, booking_close_time,
	status, deleted_at, created_at, updated_at
`

// Create creates a new concert record
func (r *PostgresConcertRepository) Create(ctx context.Context, concert *domain.Concert) error {
	query := `
		INSERT INTO concerts (
			id, title, venue, concert_date, booking_open_time, booking_close_time,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Pool().Exec(ctx, query,
		concert.ID,
		concert.Title,
		concert.Venue,
		concert.ConcertDate,
		concert.BookingOpenTime,
		concert.BookingCloseTime,
		string(concert.Status),
		concert.CreatedAt,
		concert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create concert: %w", err)
	}
	return nil
}

// GetByID retrieves a concert by ID, excluding soft-deleted rows
func (r *PostgresConcertRepository) GetByID(ctx context.Context, id string) (*domain.Concert, error) {
	query := `SELECT ` + concertColumns + ` FROM concerts WHERE id = $1 AND deleted_at IS NULL`
	return r.scanConcert(r.db.Pool().QueryRow(ctx, query, id))
}

// List retrieves concerts ordered by concert date
func (r *PostgresConcertRepository) List(ctx context.Context, limit, offset int) ([]*domain.Concert, error) {
	query := `SELECT ` + concertColumns + ` FROM concerts
		WHERE deleted_at IS NULL
		ORDER BY concert_date ASC LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool().Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query concerts: %w", err)
	}
	defer rows.Close()

	var concerts []*domain.Concert
	for rows.Next() {
		concert, err := r.scanConcert(rows)
		if err != nil {
			return nil, err
		}
		concerts = append(concerts, concert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate concerts: %w", err)
	}
	return concerts, nil
}

// Update updates an existing concert
func (r *PostgresConcertRepository) Update(ctx context.Context, concert *domain.Concert) error {
	query := `
		UPDATE concerts
		SET title = $2,
		    venue = $3,
		    concert_date = $4,
		    booking_open_time = $5,
		    booking_close_time = $6,
		    status = $7,
		    updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Pool().Exec(ctx, query,
		concert.ID,
		concert.Title,
		concert.Venue,
		concert.ConcertDate,
		concert.BookingOpenTime,
		concert.BookingCloseTime,
		string(concert.Status),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update concert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcertNotFound
	}
	return nil
}

// SoftDelete marks a concert as deleted
func (r *PostgresConcertRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE concerts SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Pool().Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete concert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcertNotFound
	}
	return nil
}

func (r *PostgresConcertRepository) scanConcert(row pgx.Row) (*domain.Concert, error) {
	var concert domain.Concert
	var status string

	err := row.Scan(
		&concert.ID,
		&concert.Title,
		&concert.Venue,
		&concert.ConcertDate,
		&concert.BookingOpenTime,
		&concert.BookingCloseTime,
		&status,
		&concert.DeletedAt,
		&concert.CreatedAt,
		&concert.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConcertNotFound
		}
		return nil, fmt.Errorf("failed to scan concert: %w", err)
	}

	concert.Status = domain.ConcertStatus(status)
	return &concert, nil
}

// Ensure PostgresConcertRepository implements ConcertRepository
var _ ConcertRepository = (*PostgresConcertRepository)(nil)
