package notification

import (
	"context"
	"time"
)

// EmailNotification is the message placed on the email queue after a
// booking is confirmed
type EmailNotification struct {
	To            string    `json:"to"`
	Subject       string    `json:"subject"`
	ReservationID string    `json:"reservation_id"`
	TransactionID string    `json:"transaction_id"`
	Amount        float64   `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

// Notifier hands a confirmation email off to the notification pipeline
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, notification *EmailNotification) error
	Close() error
}

// NoOpNotifier drops notifications. Used when RabbitMQ is unreachable
// and in tests.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a no-op notifier
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

func (n *NoOpNotifier) SendBookingConfirmation(ctx context.Context, notification *EmailNotification) error {
	return nil
}

func (n *NoOpNotifier) Close() error {
	return nil
}
