package dto

// StartPaymentRequest opens a reservation with a pending payment for a
// seat the caller has already locked
type StartPaymentRequest struct {
	SeatID string  `json:"seat_id" binding:"required"`
	Method string  `json:"method" binding:"required,oneof=CREDIT_CARD BANK_TRANSFER"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// StartPaymentResponse returns the created reservation and transaction
type StartPaymentResponse struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

// WebhookRequest is the asynchronous gateway callback. Success is a
// pointer: when absent the injected gateway collaborator decides.
type WebhookRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Success       *bool  `json:"success"`
}

// WebhookResponse acknowledges a processed confirmation
type WebhookResponse struct {
	TransactionID     string `json:"transaction_id"`
	Success           bool   `json:"success"`
	ReservationStatus string `json:"reservation_status"`
	PaymentStatus     string `json:"payment_status"`
}
