package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/supark0206/ticketing/internal/domain"
	"github.com/supark0206/ticketing/pkg/database"
)

// PostgreSQL error code for unique violation
const pgUniqueViolationCode = "23505"

// PostgresSeatRepository implements SeatRepository using PostgreSQL
type PostgresSeatRepository struct {
	db *database.PostgresDB
}

// NewPostgresSeatRepository creates a new PostgreSQL seat repository
func NewPostgresSeatRepository(db *database.PostgresDB) *PostgresSeatRepository {
	return &PostgresSeatRepository{db: db}
}

const seatColumns = `
	id, concert_id, seat_number, grade, price, deleted_at, created_at, updated_at
`

// CreateBatch inserts seats in a single transaction
func (r *PostgresSeatRepository) CreateBatch(ctx context.Context, seats []*domain.Seat) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO seats (id, concert_id, seat_number, grade, price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`

		for _, seat := range seats {
			_, err := tx.Exec(ctx, query,
				seat.ID,
				seat.ConcertID,
				seat.SeatNumber,
				string(seat.Grade),
				seat.Price,
				seat.CreatedAt,
				seat.UpdatedAt,
			)
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
					return domain.ErrSeatAlreadyExists
				}
				return fmt.Errorf("failed to create seat %s: %w", seat.SeatNumber, err)
			}
		}
		return nil
	})
}

// GetByID retrieves a seat by ID, excluding soft-deleted rows
func (r *PostgresSeatRepository) GetByID(ctx context.Context, id string) (*domain.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1 AND deleted_at IS NULL`
	return r.scanSeat(r.db.Pool().QueryRow(ctx, query, id))
}

// ListByConcert retrieves all seats of a concert ordered by seat number
func (r *PostgresSeatRepository) ListByConcert(ctx context.Context, concertID string) ([]*domain.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats
		WHERE concert_id = $1 AND deleted_at IS NULL
		ORDER BY seat_number ASC`
	return r.querySeats(ctx, query, concertID)
}

// ListByConcertAndGrade retrieves seats of a concert filtered by grade
func (r *PostgresSeatRepository) ListByConcertAndGrade(ctx context.Context, concertID string, grade domain.SeatGrade) ([]*domain.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats
		WHERE concert_id = $1 AND grade = $2 AND deleted_at IS NULL
		ORDER BY seat_number ASC`
	return r.querySeats(ctx, query, concertID, string(grade))
}

// Update updates an existing seat
func (r *PostgresSeatRepository) Update(ctx context.Context, seat *domain.Seat) error {
	query := `
		UPDATE seats
		SET seat_number = $2,
		    grade = $3,
		    price = $4,
		    updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Pool().Exec(ctx, query,
		seat.ID,
		seat.SeatNumber,
		string(seat.Grade),
		seat.Price,
		time.Now().UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return domain.ErrSeatAlreadyExists
		}
		return fmt.Errorf("failed to update seat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSeatNotFound
	}
	return nil
}

// SoftDelete marks a seat as deleted
func (r *PostgresSeatRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE seats SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Pool().Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete seat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSeatNotFound
	}
	return nil
}

// ExistsByNumber reports whether the concert already has the seat number
func (r *PostgresSeatRepository) ExistsByNumber(ctx context.Context, concertID, seatNumber string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM seats
		WHERE concert_id = $1 AND seat_number = $2 AND deleted_at IS NULL
	)`

	var exists bool
	if err := r.db.Pool().QueryRow(ctx, query, concertID, seatNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check seat number: %w", err)
	}
	return exists, nil
}

// AvailableSeatIDs returns IDs of non-deleted seats with no IN_PROGRESS or
// CONFIRMED reservation. A single flat query instead of walking the object
// graph per seat.
func (r *PostgresSeatRepository) AvailableSeatIDs(ctx context.Context, concertID string) ([]string, error) {
	query := `
		SELECT s.id FROM seats s
		WHERE s.concert_id = $1
		  AND s.deleted_at IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM reservation_seats rs
			JOIN reservations r ON r.id = rs.reservation_id
			WHERE rs.seat_id = s.id
			  AND r.status IN ('IN_PROGRESS', 'CONFIRMED')
		  )
		ORDER BY s.seat_number ASC`

	rows, err := r.db.Pool().Query(ctx, query, concertID)
	if err != nil {
		return nil, fmt.Errorf("failed to query available seats: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan seat id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate seat ids: %w", err)
	}
	return ids, nil
}

func (r *PostgresSeatRepository) querySeats(ctx context.Context, query string, args ...interface{}) ([]*domain.Seat, error) {
	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query seats: %w", err)
	}
	defer rows.Close()

	var seats []*domain.Seat
	for rows.Next() {
		seat, err := r.scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate seats: %w", err)
	}
	return seats, nil
}

func (r *PostgresSeatRepository) scanSeat(row pgx.Row) (*domain.Seat, error) {
	var seat domain.Seat
	var grade string

	err := row.Scan(
		&seat.ID,
		&seat.ConcertID,
		&seat.SeatNumber,
		&grade,
		&seat.Price,
		&seat.DeletedAt,
		&seat.CreatedAt,
		&seat.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSeatNotFound
		}
		return nil, fmt.Errorf("failed to scan seat: %w", err)
	}

	seat.Grade = domain.SeatGrade(grade)
	return &seat, nil
}

// Ensure PostgresSeatRepository implements SeatRepository
var _ SeatRepository = (*PostgresSeatRepository)(nil)
