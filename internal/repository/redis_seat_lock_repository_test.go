package repository

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"

	"github.com/supark0206/ticketing/internal/domain"
	pkgredis "github.com/supark0206/ticketing/pkg/redis"
)

func newLockRepoWithMock(t *testing.T) (*RedisSeatLockRepository, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	return NewRedisSeatLockRepository(pkgredis.NewFromClient(db)), mock
}

func TestSeatLockRepository_TryAcquire(t *testing.T) {
	repo, mock := newLockRepoWithMock(t)

	mock.ExpectSetNX("seat_lock:seat-1", "user-1", 10*time.Minute).SetVal(true)

	ok, err := repo.TryAcquire(context.Background(), "seat-1", "user-1", 10*time.Minute)

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatLockRepository_TryAcquire_AlreadyHeld(t *testing.T) {
	repo, mock := newLockRepoWithMock(t)

	mock.ExpectSetNX("seat_lock:seat-1", "user-2", 10*time.Minute).SetVal(false)

	ok, err := repo.TryAcquire(context.Background(), "seat-1", "user-2", 10*time.Minute)

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatLockRepository_TryAcquire_StoreDown(t *testing.T) {
	repo, mock := newLockRepoWithMock(t)

	mock.ExpectSetNX("seat_lock:seat-1", "user-1", 10*time.Minute).SetErr(assert.AnError)

	_, err := repo.TryAcquire(context.Background(), "seat-1", "user-1", 10*time.Minute)

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLockStoreUnavailable)
	assert.True(t, domain.IsInfrastructureError(err))
}

func TestSeatLockRepository_GetHolder(t *testing.T) {
	repo, mock := newLockRepoWithMock(t)

	mock.ExpectGet("seat_lock:seat-1").SetVal("user-1")

	holder, err := repo.GetHolder(context.Background(), "seat-1")

	assert.NoError(t, err)
	assert.Equal(t, "user-1", holder)
}

func TestSeatLockRepository_GetHolder_Absent(t *testing.T) {
	repo, mock := newLockRepoWithMock(t)

	mock.ExpectGet("seat_lock:seat-1").RedisNil()

	holder, err := repo.GetHolder(context.Background(), "seat-1")

	assert.NoError(t, err)
	assert.Empty(t, holder)
}

func TestSeatLockRepository_Release_OwnerMatches(t *testing.T) {
	repo, mock := newLockRepoWithMock(t)

	mock.ExpectScriptLoad(releaseLockScript).SetVal("sha-release")
	mock.ExpectEvalSha("sha-release", []string{"seat_lock:seat-1"}, "user-1").SetVal(int64(1))

	released, err := repo.Release(context.Background(), "seat-1", "user-1")

	assert.NoError(t, err)
	assert.True(t, released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatLockRepository_Release_OwnedByOther(t *testing.T) {
	repo, mock := newLockRepoWithMock(t)

	mock.ExpectScriptLoad(releaseLockScript).SetVal("sha-release")
	mock.ExpectEvalSha("sha-release", []string{"seat_lock:seat-1"}, "user-2").SetVal(int64(0))

	released, err := repo.Release(context.Background(), "seat-1", "user-2")

	assert.NoError(t, err)
	assert.False(t, released)
}

func TestSeatLockRepository_RemainingTTL(t *testing.T) {
	repo, mock := newLockRepoWithMock(t)

	mock.ExpectPTTL("seat_lock:seat-1").SetVal(5 * time.Minute)

	ttl, exists, err := repo.RemainingTTL(context.Background(), "seat-1")

	assert.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 5*time.Minute, ttl)
}

func TestSeatLockRepository_RemainingTTL_Absent(t *testing.T) {
	repo, mock := newLockRepoWithMock(t)

	// PTTL reports -2 for a missing key
	mock.ExpectPTTL("seat_lock:seat-1").SetVal(-2)

	_, exists, err := repo.RemainingTTL(context.Background(), "seat-1")

	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestSeatLockRepository_IsLocked(t *testing.T) {
	repo, mock := newLockRepoWithMock(t)

	mock.ExpectExists("seat_lock:seat-1").SetVal(1)

	locked, err := repo.IsLocked(context.Background(), "seat-1")

	assert.NoError(t, err)
	assert.True(t, locked)
}
