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

// PostgresReservationRepository implements ReservationRepository using
// PostgreSQL. Transition methods guard the expected source status in the
// WHERE clause so a concurrent writer cannot double-apply a transition.
type PostgresReservationRepository struct {
	db *database.PostgresDB
}

// NewPostgresReservationRepository creates a new PostgreSQL reservation repository
func NewPostgresReservationRepository(db *database.PostgresDB) *PostgresReservationRepository {
	return &PostgresReservationRepository{db: db}
}

const reservationColumns = `
	id, user_id, concert_id, status, reservation_time, expire_time, created_at, updated_at
`

// Create persists the reservation, seat binding and pending payment atomically
func (r *PostgresReservationRepository) Create(ctx context.Context, reservation *domain.Reservation, seat *domain.ReservationSeat, payment *domain.Payment) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO reservations (id, user_id, concert_id, status, reservation_time, expire_time, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			reservation.ID,
			reservation.UserID,
			reservation.ConcertID,
			string(reservation.Status),
			reservation.ReservationTime,
			reservation.ExpireTime,
			reservation.CreatedAt,
			reservation.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO reservation_seats (id, reservation_id, seat_id, price, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			seat.ID,
			seat.ReservationID,
			seat.SeatID,
			seat.Price,
			seat.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create reservation seat: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO payments (id, reservation_id, user_id, amount, method, status, transaction_id, payment_time, refund_amount, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			payment.ID,
			payment.ReservationID,
			payment.UserID,
			payment.Amount,
			string(payment.Method),
			string(payment.Status),
			payment.TransactionID,
			payment.PaymentTime,
			payment.RefundAmount,
			payment.CreatedAt,
			payment.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		return nil
	})
}

// GetByID retrieves a reservation by ID
func (r *PostgresReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return r.scanReservation(r.db.Pool().QueryRow(ctx, query, id))
}

// GetSeats retrieves the seat bindings of a reservation
func (r *PostgresReservationRepository) GetSeats(ctx context.Context, reservationID string) ([]*domain.ReservationSeat, error) {
	query := `SELECT id, reservation_id, seat_id, price, created_at
		FROM reservation_seats WHERE reservation_id = $1`

	rows, err := r.db.Pool().Query(ctx, query, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservation seats: %w", err)
	}
	defer rows.Close()

	var seats []*domain.ReservationSeat
	for rows.Next() {
		var seat domain.ReservationSeat
		if err := rows.Scan(&seat.ID, &seat.ReservationID, &seat.SeatID, &seat.Price, &seat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reservation seat: %w", err)
		}
		seats = append(seats, &seat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reservation seats: %w", err)
	}
	return seats, nil
}

// ListByUser retrieves a user's reservations, newest first
func (r *PostgresReservationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE user_id = $1 ORDER BY reservation_time DESC`
	return r.queryReservations(ctx, query, userID)
}

// ListByConcert retrieves reservations of a concert, newest first
func (r *PostgresReservationRepository) ListByConcert(ctx context.Context, concertID string, limit, offset int) ([]*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE concert_id = $1 ORDER BY reservation_time DESC LIMIT $2 OFFSET $3`
	return r.queryReservations(ctx, query, concertID, limit, offset)
}

// Confirm moves the reservation to CONFIRMED and its payment to SUCCESS
func (r *PostgresReservationRepository) Confirm(ctx context.Context, reservationID, paymentID string, paymentTime time.Time) error {
	return r.transition(ctx,
		reservationID, domain.ReservationStatusInProgress, domain.ReservationStatusConfirmed,
		func(tx pgx.Tx) error {
			tag, err := tx.Exec(ctx, `
				UPDATE payments SET status = $2, payment_time = $3, updated_at = $4
				WHERE id = $1 AND status = $5`,
				paymentID,
				string(domain.PaymentStatusSuccess),
				paymentTime,
				time.Now().UTC(),
				string(domain.PaymentStatusInProgress),
			)
			if err != nil {
				return fmt.Errorf("failed to update payment: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return domain.ErrInvalidStatusTransition
			}
			return nil
		})
}

// Fail moves the reservation to FAILED and its payment to FAILED
func (r *PostgresReservationRepository) Fail(ctx context.Context, reservationID, paymentID string) error {
	return r.transition(ctx,
		reservationID, domain.ReservationStatusInProgress, domain.ReservationStatusFailed,
		r.failPayment(ctx, paymentID))
}

// Expire moves the reservation to EXPIRED and its payment to FAILED
func (r *PostgresReservationRepository) Expire(ctx context.Context, reservationID, paymentID string) error {
	return r.transition(ctx,
		reservationID, domain.ReservationStatusInProgress, domain.ReservationStatusExpired,
		r.failPayment(ctx, paymentID))
}

// CancelWithRefund moves the reservation to CANCELED and refunds the payment
func (r *PostgresReservationRepository) CancelWithRefund(ctx context.Context, reservationID, paymentID string, refundAmount float64) error {
	return r.transition(ctx,
		reservationID, domain.ReservationStatusConfirmed, domain.ReservationStatusCanceled,
		func(tx pgx.Tx) error {
			if paymentID == "" {
				return nil
			}
			tag, err := tx.Exec(ctx, `
				UPDATE payments SET status = $2, refund_amount = $3, updated_at = $4
				WHERE id = $1 AND status = $5`,
				paymentID,
				string(domain.PaymentStatusRefunded),
				refundAmount,
				time.Now().UTC(),
				string(domain.PaymentStatusSuccess),
			)
			if err != nil {
				return fmt.Errorf("failed to refund payment: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return domain.ErrInvalidStatusTransition
			}
			return nil
		})
}

// HasActiveForSeat reports whether any active reservation references the seat
func (r *PostgresReservationRepository) HasActiveForSeat(ctx context.Context, seatID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM reservation_seats rs
		JOIN reservations res ON res.id = rs.reservation_id
		WHERE rs.seat_id = $1 AND res.status IN ('IN_PROGRESS', 'CONFIRMED')
	)`

	var exists bool
	if err := r.db.Pool().QueryRow(ctx, query, seatID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active reservation: %w", err)
	}
	return exists, nil
}

// ActiveSeatIDs returns seat IDs of the concert held by active reservations
func (r *PostgresReservationRepository) ActiveSeatIDs(ctx context.Context, concertID string) ([]string, error) {
	query := `
		SELECT rs.seat_id FROM reservation_seats rs
		JOIN reservations res ON res.id = rs.reservation_id
		WHERE res.concert_id = $1 AND res.status IN ('IN_PROGRESS', 'CONFIRMED')`

	rows, err := r.db.Pool().Query(ctx, query, concertID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active seat ids: %w", err)
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

// FindExpiredInProgress returns stale IN_PROGRESS reservations for the sweep
func (r *PostgresReservationRepository) FindExpiredInProgress(ctx context.Context, before time.Time, limit int) ([]*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE status = 'IN_PROGRESS' AND expire_time < $1
		ORDER BY expire_time ASC LIMIT $2`
	return r.queryReservations(ctx, query, before, limit)
}

// transition applies the reservation status change plus the payment change
// supplied by paymentFn inside a single transaction
func (r *PostgresReservationRepository) transition(ctx context.Context, reservationID string, from, to domain.ReservationStatus, paymentFn func(tx pgx.Tx) error) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE reservations SET status = $2, updated_at = $3
			WHERE id = $1 AND status = $4`,
			reservationID,
			string(to),
			time.Now().UTC(),
			string(from),
		)
		if err != nil {
			return fmt.Errorf("failed to update reservation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrInvalidStatusTransition
		}

		return paymentFn(tx)
	})
}

func (r *PostgresReservationRepository) failPayment(ctx context.Context, paymentID string) func(tx pgx.Tx) error {
	return func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE payments SET status = $2, updated_at = $3
			WHERE id = $1 AND status = $4`,
			paymentID,
			string(domain.PaymentStatusFailed),
			time.Now().UTC(),
			string(domain.PaymentStatusInProgress),
		)
		if err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrInvalidStatusTransition
		}
		return nil
	}
}

func (r *PostgresReservationRepository) queryReservations(ctx context.Context, query string, args ...interface{}) ([]*domain.Reservation, error) {
	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		reservation, err := r.scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reservations: %w", err)
	}
	return reservations, nil
}

func (r *PostgresReservationRepository) scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var reservation domain.Reservation
	var status string

	err := row.Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.ConcertID,
		&status,
		&reservation.ReservationTime,
		&reservation.ExpireTime,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to scan reservation: %w", err)
	}

	reservation.Status = domain.ReservationStatus(status)
	return &reservation, nil
}

// Ensure PostgresReservationRepository implements ReservationRepository
var _ ReservationRepository = (*PostgresReservationRepository)(nil)
