package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusInProgress PaymentStatus = "IN_PROGRESS"
	PaymentStatusSuccess    PaymentStatus = "SUCCESS"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusCanceled   PaymentStatus = "CANCELED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

// CanTransitionTo reports whether the transition to target is legal
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusInProgress:
		return target == PaymentStatusSuccess ||
			target == PaymentStatusFailed ||
			target == PaymentStatusCanceled
	case PaymentStatusSuccess:
		return target == PaymentStatusRefunded
	default:
		return false
	}
}

// PaymentMethod represents the method of payment
type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// IsValid reports whether the method is a known payment method
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCreditCard || m == PaymentMethodBankTransfer
}

// Payment represents the payment attached 1:1 to a reservation. Its status
// moves together with the reservation status: SUCCESS pairs with CONFIRMED,
// FAILED with FAILED, both written in the same transaction.
type Payment struct {
	ID            string        `json:"id"`
	ReservationID string        `json:"reservation_id"`
	UserID        string        `json:"user_id"`
	Amount        float64       `json:"amount"`
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id"`
	PaymentTime   *time.Time    `json:"payment_time,omitempty"`
	RefundAmount  *float64      `json:"refund_amount,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewPayment creates an IN_PROGRESS payment with a fresh transaction ID.
// The transaction ID is assigned once and never reused.
func NewPayment(reservationID, userID string, amount float64, method PaymentMethod) (*Payment, error) {
	if reservationID == "" {
		return nil, ErrInvalidReservationID
	}
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !method.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}

	now := time.Now().UTC()
	return &Payment{
		ID:            uuid.New().String(),
		ReservationID: reservationID,
		UserID:        userID,
		Amount:        amount,
		Method:        method,
		Status:        PaymentStatusInProgress,
		TransactionID: "TXN_" + uuid.New().String(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// MarkSuccess marks the payment as succeeded
func (p *Payment) MarkSuccess() error {
	if !p.Status.CanTransitionTo(PaymentStatusSuccess) {
		return ErrInvalidStatusTransition
	}
	now := time.Now().UTC()
	p.Status = PaymentStatusSuccess
	p.PaymentTime = &now
	p.UpdatedAt = now
	return nil
}

// MarkFailed marks the payment as failed
func (p *Payment) MarkFailed() error {
	if !p.Status.CanTransitionTo(PaymentStatusFailed) {
		return ErrInvalidStatusTransition
	}
	p.Status = PaymentStatusFailed
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Refund marks a succeeded payment as refunded in full
func (p *Payment) Refund() error {
	if !p.Status.CanTransitionTo(PaymentStatusRefunded) {
		return ErrInvalidStatusTransition
	}
	amount := p.Amount
	p.Status = PaymentStatusRefunded
	p.RefundAmount = &amount
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// IsProcessed returns true if the payment already reached terminal success
func (p *Payment) IsProcessed() bool {
	return p.Status == PaymentStatusSuccess
}
