package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/supark0206/ticketing/internal/domain"
	pkgredis "github.com/supark0206/ticketing/pkg/redis"
	"github.com/supark0206/ticketing/pkg/telemetry"
)

//go:embed scripts/release_lock.lua
var releaseLockScript string

const scriptReleaseLock = "release_lock"

// RedisSeatLockRepository implements SeatLockRepository using Redis
type RedisSeatLockRepository struct {
	client *pkgredis.Client
}

// NewRedisSeatLockRepository creates a new RedisSeatLockRepository
func NewRedisSeatLockRepository(client *pkgredis.Client) *RedisSeatLockRepository {
	return &RedisSeatLockRepository{client: client}
}

// LoadScripts loads the lock Lua scripts into Redis
func (r *RedisSeatLockRepository) LoadScripts(ctx context.Context) error {
	if _, err := r.client.LoadScript(ctx, scriptReleaseLock, releaseLockScript); err != nil {
		return fmt.Errorf("failed to load script %s: %w", scriptReleaseLock, err)
	}
	return nil
}

func seatLockKey(seatID string) string {
	return fmt.Sprintf("seat_lock:%s", seatID)
}

// TryAcquire sets the lock if absent in a single SET NX PX round trip
func (r *RedisSeatLockRepository) TryAcquire(ctx context.Context, seatID, holderID string, ttl time.Duration) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.seat_lock.try_acquire")
	defer span.End()

	span.SetAttributes(
		attribute.String("seat_id", seatID),
		attribute.String("holder_id", holderID),
	)

	ok, err := r.client.SetNX(ctx, seatLockKey(seatID), holderID, ttl).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("%w: setnx: %v", domain.ErrLockStoreUnavailable, err)
	}

	span.SetAttributes(attribute.Bool("acquired", ok))
	span.SetStatus(codes.Ok, "")
	return ok, nil
}

// GetHolder returns the current holder, or "" when the lock is absent
func (r *RedisSeatLockRepository) GetHolder(ctx context.Context, seatID string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.seat_lock.get_holder")
	defer span.End()

	span.SetAttributes(attribute.String("seat_id", seatID))

	holder, err := r.client.Get(ctx, seatLockKey(seatID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetStatus(codes.Ok, "absent")
			return "", nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("%w: get: %v", domain.ErrLockStoreUnavailable, err)
	}

	span.SetStatus(codes.Ok, "")
	return holder, nil
}

// Release deletes the lock only if the stored holder matches holderID
func (r *RedisSeatLockRepository) Release(ctx context.Context, seatID, holderID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.seat_lock.release")
	defer span.End()

	span.SetAttributes(
		attribute.String("seat_id", seatID),
		attribute.String("holder_id", holderID),
	)

	result := r.client.EvalWithFallback(ctx, scriptReleaseLock, releaseLockScript,
		[]string{seatLockKey(seatID)}, holderID)
	if result.Err() != nil {
		span.RecordError(result.Err())
		span.SetStatus(codes.Error, result.Err().Error())
		return false, fmt.Errorf("%w: release script: %v", domain.ErrLockStoreUnavailable, result.Err())
	}

	deleted, err := result.Int64()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("%w: release result: %v", domain.ErrLockStoreUnavailable, err)
	}

	span.SetAttributes(attribute.Bool("released", deleted == 1))
	span.SetStatus(codes.Ok, "")
	return deleted == 1, nil
}

// RemainingTTL returns the remaining lifetime of the lock
func (r *RedisSeatLockRepository) RemainingTTL(ctx context.Context, seatID string) (time.Duration, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.seat_lock.remaining_ttl")
	defer span.End()

	span.SetAttributes(attribute.String("seat_id", seatID))

	ttl, err := r.client.PTTL(ctx, seatLockKey(seatID)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, false, fmt.Errorf("%w: pttl: %v", domain.ErrLockStoreUnavailable, err)
	}

	// PTTL returns -2 when the key does not exist, -1 when it has no expiry
	if ttl < 0 {
		span.SetStatus(codes.Ok, "absent")
		return 0, false, nil
	}

	span.SetStatus(codes.Ok, "")
	return ttl, true, nil
}

// IsLocked reports whether any holder currently owns the seat
func (r *RedisSeatLockRepository) IsLocked(ctx context.Context, seatID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.seat_lock.is_locked")
	defer span.End()

	span.SetAttributes(attribute.String("seat_id", seatID))

	n, err := r.client.Exists(ctx, seatLockKey(seatID)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("%w: exists: %v", domain.ErrLockStoreUnavailable, err)
	}

	span.SetStatus(codes.Ok, "")
	return n > 0, nil
}

// Ensure RedisSeatLockRepository implements SeatLockRepository
var _ SeatLockRepository = (*RedisSeatLockRepository)(nil)
