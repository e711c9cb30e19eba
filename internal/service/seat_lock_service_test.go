package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/supark0206/ticketing/internal/domain"
)

func TestSeatLockService_Acquire_Success(t *testing.T) {
	mockRepo := new(MockSeatLockRepository)
	svc := NewSeatLockService(mockRepo, &SeatLockServiceConfig{LockTTL: 10 * time.Minute})

	mockRepo.On("TryAcquire", mock.Anything, "seat-1", "user-1", 10*time.Minute).Return(true, nil)

	result, err := svc.Acquire(context.Background(), "seat-1", "user-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.LockAcquired, result.Status)
	assert.Equal(t, "user-1", result.HolderID)
	assert.Equal(t, 10*time.Minute, result.RemainingTTL)
	assert.True(t, result.Acquired())
	mockRepo.AssertExpectations(t)
}

func TestSeatLockService_Acquire_AlreadyOwned(t *testing.T) {
	mockRepo := new(MockSeatLockRepository)
	svc := NewSeatLockService(mockRepo, nil)

	mockRepo.On("TryAcquire", mock.Anything, "seat-1", "user-1", mock.Anything).Return(false, nil)
	mockRepo.On("GetHolder", mock.Anything, "seat-1").Return("user-1", nil)
	mockRepo.On("RemainingTTL", mock.Anything, "seat-1").Return(3*time.Minute, true, nil)

	result, err := svc.Acquire(context.Background(), "seat-1", "user-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.LockAlreadyOwned, result.Status)
	assert.Equal(t, 3*time.Minute, result.RemainingTTL)
	mockRepo.AssertExpectations(t)
}

func TestSeatLockService_Acquire_OwnedByOther(t *testing.T) {
	mockRepo := new(MockSeatLockRepository)
	svc := NewSeatLockService(mockRepo, nil)

	mockRepo.On("TryAcquire", mock.Anything, "seat-1", "user-2", mock.Anything).Return(false, nil)
	mockRepo.On("GetHolder", mock.Anything, "seat-1").Return("user-1", nil)

	result, err := svc.Acquire(context.Background(), "seat-1", "user-2")

	assert.NoError(t, err)
	assert.Equal(t, domain.LockOwnedByOther, result.Status)
	assert.False(t, result.Acquired())
	// The holder identity is not exposed to the loser
	assert.Empty(t, result.HolderID)
}

func TestSeatLockService_Acquire_RetryWhenLockVanished(t *testing.T) {
	mockRepo := new(MockSeatLockRepository)
	svc := NewSeatLockService(mockRepo, nil)

	// TTL expired between the failed SETNX and the follow-up read; the
	// true winner is unknowable so the caller must retry
	mockRepo.On("TryAcquire", mock.Anything, "seat-1", "user-1", mock.Anything).Return(false, nil)
	mockRepo.On("GetHolder", mock.Anything, "seat-1").Return("", nil)

	result, err := svc.Acquire(context.Background(), "seat-1", "user-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.LockRetryNeeded, result.Status)
}

func TestSeatLockService_Acquire_RetryWhenOwnLockExpired(t *testing.T) {
	mockRepo := new(MockSeatLockRepository)
	svc := NewSeatLockService(mockRepo, nil)

	mockRepo.On("TryAcquire", mock.Anything, "seat-1", "user-1", mock.Anything).Return(false, nil)
	mockRepo.On("GetHolder", mock.Anything, "seat-1").Return("user-1", nil)
	mockRepo.On("RemainingTTL", mock.Anything, "seat-1").Return(time.Duration(0), false, nil)

	result, err := svc.Acquire(context.Background(), "seat-1", "user-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.LockRetryNeeded, result.Status)
}

func TestSeatLockService_Acquire_StoreUnavailable(t *testing.T) {
	mockRepo := new(MockSeatLockRepository)
	svc := NewSeatLockService(mockRepo, nil)

	mockRepo.On("TryAcquire", mock.Anything, "seat-1", "user-1", mock.Anything).
		Return(false, domain.ErrLockStoreUnavailable)

	result, err := svc.Acquire(context.Background(), "seat-1", "user-1")

	// Store trouble must surface as a retryable error, never as "seat free"
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrLockStoreUnavailable)
}

func TestSeatLockService_Acquire_Validation(t *testing.T) {
	svc := NewSeatLockService(new(MockSeatLockRepository), nil)

	_, err := svc.Acquire(context.Background(), "", "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidSeatID)

	_, err = svc.Acquire(context.Background(), "seat-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidUserID)
}

func TestSeatLockService_Release_MismatchIsNotAnError(t *testing.T) {
	mockRepo := new(MockSeatLockRepository)
	svc := NewSeatLockService(mockRepo, nil)

	mockRepo.On("Release", mock.Anything, "seat-1", "user-1").Return(false, nil)

	err := svc.Release(context.Background(), "seat-1", "user-1")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestSeatLockService_IsHeldBy(t *testing.T) {
	mockRepo := new(MockSeatLockRepository)
	svc := NewSeatLockService(mockRepo, nil)

	mockRepo.On("GetHolder", mock.Anything, "seat-1").Return("user-1", nil)

	held, err := svc.IsHeldBy(context.Background(), "seat-1", "user-1")
	assert.NoError(t, err)
	assert.True(t, held)

	held, err = svc.IsHeldBy(context.Background(), "seat-1", "user-2")
	assert.NoError(t, err)
	assert.False(t, held)
}
