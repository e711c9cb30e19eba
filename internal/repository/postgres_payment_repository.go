package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/supark0206/ticketing/internal/domain"
	"github.com/supark0206/ticketing/pkg/database"
)

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	db *database.PostgresDB
}

// NewPostgresPaymentRepository creates a new PostgreSQL payment repository
func NewPostgresPaymentRepository(db *database.PostgresDB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

const paymentColumns = `
	id, reservation_id, user_id, amount, method, status, transaction_id,
	payment_time, refund_amount, created_at, updated_at
`

// GetByTransactionID retrieves a payment by its transaction ID
func (r *PostgresPaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`
	return r.scanPayment(r.db.Pool().QueryRow(ctx, query, transactionID))
}

// GetByReservationID retrieves the payment of a reservation
func (r *PostgresPaymentRepository) GetByReservationID(ctx context.Context, reservationID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reservation_id = $1`
	return r.scanPayment(r.db.Pool().QueryRow(ctx, query, reservationID))
}

func (r *PostgresPaymentRepository) scanPayment(row pgx.Row) (*domain.Payment, error) {
	var payment domain.Payment
	var method, status string

	err := row.Scan(
		&payment.ID,
		&payment.ReservationID,
		&payment.UserID,
		&payment.Amount,
		&method,
		&status,
		&payment.TransactionID,
		&payment.PaymentTime,
		&payment.RefundAmount,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}

	payment.Method = domain.PaymentMethod(method)
	payment.Status = domain.PaymentStatus(status)
	return &payment, nil
}

// Ensure PostgresPaymentRepository implements PaymentRepository
var _ PaymentRepository = (*PostgresPaymentRepository)(nil)
