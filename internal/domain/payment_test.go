package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{"in progress to success", PaymentStatusInProgress, PaymentStatusSuccess, true},
		{"in progress to failed", PaymentStatusInProgress, PaymentStatusFailed, true},
		{"in progress to canceled", PaymentStatusInProgress, PaymentStatusCanceled, true},
		{"in progress to refunded", PaymentStatusInProgress, PaymentStatusRefunded, false},
		{"success to refunded", PaymentStatusSuccess, PaymentStatusRefunded, true},
		{"success to failed", PaymentStatusSuccess, PaymentStatusFailed, false},
		{"failed is terminal", PaymentStatusFailed, PaymentStatusSuccess, false},
		{"refunded is terminal", PaymentStatusRefunded, PaymentStatusSuccess, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewPayment(t *testing.T) {
	payment, err := NewPayment("res-1", "user-1", 150000, PaymentMethodCreditCard)

	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusInProgress, payment.Status)
	assert.True(t, strings.HasPrefix(payment.TransactionID, "TXN_"))
	assert.Nil(t, payment.PaymentTime)
}

func TestNewPayment_Validation(t *testing.T) {
	_, err := NewPayment("res-1", "user-1", 0, PaymentMethodCreditCard)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewPayment("res-1", "user-1", 150000, PaymentMethod("CASH"))
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestPayment_MarkSuccess(t *testing.T) {
	payment, _ := NewPayment("res-1", "user-1", 150000, PaymentMethodCreditCard)

	assert.NoError(t, payment.MarkSuccess())
	assert.Equal(t, PaymentStatusSuccess, payment.Status)
	assert.NotNil(t, payment.PaymentTime)

	// A second callback must not succeed twice
	assert.ErrorIs(t, payment.MarkSuccess(), ErrInvalidStatusTransition)
}

func TestPayment_Refund(t *testing.T) {
	payment, _ := NewPayment("res-1", "user-1", 150000, PaymentMethodCreditCard)

	assert.ErrorIs(t, payment.Refund(), ErrInvalidStatusTransition)

	assert.NoError(t, payment.MarkSuccess())
	assert.NoError(t, payment.Refund())
	assert.Equal(t, PaymentStatusRefunded, payment.Status)
	assert.Equal(t, float64(150000), *payment.RefundAmount)
}

func TestPayment_IsProcessed(t *testing.T) {
	payment, _ := NewPayment("res-1", "user-1", 150000, PaymentMethodCreditCard)
	assert.False(t, payment.IsProcessed())

	payment.Status = PaymentStatusSuccess
	assert.True(t, payment.IsProcessed())

	// A failed payment may be retried with a new transaction
	payment.Status = PaymentStatusFailed
	assert.False(t, payment.IsProcessed())
}
