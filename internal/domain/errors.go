package domain

import "errors"

// Domain errors
var (
	// Not found errors
	ErrConcertNotFound     = errors.New("concert not found")
	ErrSeatNotFound        = errors.New("seat not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrPaymentNotFound     = errors.New("payment not found")

	// Conflict errors
	ErrSeatLockedByOther        = errors.New("seat is locked by another user")
	ErrSeatAlreadyReserved      = errors.New("seat already has an active reservation")
	ErrSeatNotSelected          = errors.New("seat is not selected by this user")
	ErrPaymentAlreadyProcessed  = errors.New("payment already processed")
	ErrReservationConfirmed     = errors.New("reservation already confirmed")
	ErrSeatHasActiveReservation = errors.New("seat cannot be removed while actively reserved")
	ErrSeatAlreadyExists        = errors.New("seat already exists for this concert")

	// Unprocessable errors
	ErrReservationExpired       = errors.New("reservation has expired")
	ErrInvalidStatusTransition  = errors.New("invalid status transition")
	ErrCancelWindowClosed       = errors.New("cancellation window has closed")
	ErrBookingNotOpen           = errors.New("booking is not open for this concert")
	ErrNotReservationOwner      = errors.New("reservation does not belong to this user")

	// Validation errors
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrInvalidConcertID     = errors.New("invalid concert id")
	ErrInvalidSeatID        = errors.New("invalid seat id")
	ErrInvalidReservationID = errors.New("invalid reservation id")
	ErrInvalidTransactionID = errors.New("invalid transaction id")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidSeatNumber    = errors.New("invalid seat number")

	// Infrastructure errors, retryable
	ErrLockStoreUnavailable  = errors.New("seat lock store is unavailable")
	ErrQueueStoreUnavailable = errors.New("queue store is unavailable")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrConcertNotFound) ||
		errors.Is(err, ErrSeatNotFound) ||
		errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrSeatLockedByOther) ||
		errors.Is(err, ErrSeatAlreadyReserved) ||
		errors.Is(err, ErrSeatNotSelected) ||
		errors.Is(err, ErrPaymentAlreadyProcessed) ||
		errors.Is(err, ErrReservationConfirmed) ||
		errors.Is(err, ErrSeatHasActiveReservation) ||
		errors.Is(err, ErrSeatAlreadyExists)
}

// IsUnprocessableError checks if the error is an unprocessable state error
func IsUnprocessableError(err error) bool {
	return errors.Is(err, ErrReservationExpired) ||
		errors.Is(err, ErrInvalidStatusTransition) ||
		errors.Is(err, ErrCancelWindowClosed) ||
		errors.Is(err, ErrBookingNotOpen) ||
		errors.Is(err, ErrNotReservationOwner)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidConcertID) ||
		errors.Is(err, ErrInvalidSeatID) ||
		errors.Is(err, ErrInvalidReservationID) ||
		errors.Is(err, ErrInvalidTransactionID) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidPaymentMethod) ||
		errors.Is(err, ErrInvalidSeatNumber)
}

// IsExpiredError checks if the error is an expiration error
func IsExpiredError(err error) bool {
	return errors.Is(err, ErrReservationExpired)
}

// IsInfrastructureError checks if the error is a retryable infrastructure error
func IsInfrastructureError(err error) bool {
	return errors.Is(err, ErrLockStoreUnavailable) ||
		errors.Is(err, ErrQueueStoreUnavailable)
}
