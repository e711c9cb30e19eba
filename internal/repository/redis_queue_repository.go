package repository

import (
	"context"
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

// RedisQueueRepository implements QueueRepository using a Redis sorted set
type RedisQueueRepository struct {
	client *pkgredis.Client
}

// NewRedisQueueRepository creates a new RedisQueueRepository
func NewRedisQueueRepository(client *pkgredis.Client) *RedisQueueRepository {
	return &RedisQueueRepository{client: client}
}

func queueKey(concertID string) string {
	return fmt.Sprintf("concert:queue:%s", concertID)
}

func queueMemberKey(concertID, userID string) string {
	return fmt.Sprintf("concert:queue:member:%s:%s", concertID, userID)
}

// Enqueue inserts the user scored by arrival time. ZADD NX keeps the
// original score on duplicate calls so a retry cannot push a user back.
func (r *RedisQueueRepository) Enqueue(ctx context.Context, concertID, userID string, arrivedAt time.Time, membershipTTL time.Duration) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.queue.enqueue")
	defer span.End()

	span.SetAttributes(
		attribute.String("concert_id", concertID),
		attribute.String("user_id", userID),
	)

	added, err := r.client.ZAddNX(ctx, queueKey(concertID), redis.Z{
		Score:  float64(arrivedAt.UnixMilli()),
		Member: userID,
	}).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("%w: zadd: %v", domain.ErrQueueStoreUnavailable, err)
	}

	if added == 0 {
		span.SetStatus(codes.Ok, "already queued")
		return false, nil
	}

	// Membership index; the TTL bounds how long an abandoned entry survives
	if err := r.client.Set(ctx, queueMemberKey(concertID, userID), arrivedAt.UnixMilli(), membershipTTL).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("%w: set member: %v", domain.ErrQueueStoreUnavailable, err)
	}

	span.SetStatus(codes.Ok, "")
	return true, nil
}

// Position returns the 1-based rank of the user, or 0 when absent
func (r *RedisQueueRepository) Position(ctx context.Context, concertID, userID string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.queue.position")
	defer span.End()

	span.SetAttributes(
		attribute.String("concert_id", concertID),
		attribute.String("user_id", userID),
	)

	rank, err := r.client.ZRank(ctx, queueKey(concertID), userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetStatus(codes.Ok, "not in queue")
			return 0, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("%w: zrank: %v", domain.ErrQueueStoreUnavailable, err)
	}

	span.SetAttributes(attribute.Int64("position", rank+1))
	span.SetStatus(codes.Ok, "")
	return rank + 1, nil
}

// Size returns the number of users waiting for the concert
func (r *RedisQueueRepository) Size(ctx context.Context, concertID string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.queue.size")
	defer span.End()

	span.SetAttributes(attribute.String("concert_id", concertID))

	count, err := r.client.ZCard(ctx, queueKey(concertID)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("%w: zcard: %v", domain.ErrQueueStoreUnavailable, err)
	}

	span.SetStatus(codes.Ok, "")
	return count, nil
}

// PopEarliest removes the earliest-arrived user atomically via ZPOPMIN
// and clears their membership record
func (r *RedisQueueRepository) PopEarliest(ctx context.Context, concertID string) (string, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.queue.pop_earliest")
	defer span.End()

	span.SetAttributes(attribute.String("concert_id", concertID))

	members, err := r.client.ZPopMin(ctx, queueKey(concertID), 1).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", false, fmt.Errorf("%w: zpopmin: %v", domain.ErrQueueStoreUnavailable, err)
	}

	if len(members) == 0 {
		span.SetStatus(codes.Ok, "empty")
		return "", false, nil
	}

	userID, _ := members[0].Member.(string)
	if err := r.client.Del(ctx, queueMemberKey(concertID, userID)).Err(); err != nil {
		// The pop already committed; a stale membership key only lives
		// until its TTL
		span.RecordError(err)
	}

	span.SetAttributes(attribute.String("user_id", userID))
	span.SetStatus(codes.Ok, "")
	return userID, true, nil
}

// IsMember reports whether the user is currently in line
func (r *RedisQueueRepository) IsMember(ctx context.Context, concertID, userID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.queue.is_member")
	defer span.End()

	span.SetAttributes(
		attribute.String("concert_id", concertID),
		attribute.String("user_id", userID),
	)

	n, err := r.client.Exists(ctx, queueMemberKey(concertID, userID)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("%w: exists: %v", domain.ErrQueueStoreUnavailable, err)
	}

	span.SetStatus(codes.Ok, "")
	return n > 0, nil
}

// Remove takes the user out of the line regardless of position
func (r *RedisQueueRepository) Remove(ctx context.Context, concertID, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.queue.remove")
	defer span.End()

	span.SetAttributes(
		attribute.String("concert_id", concertID),
		attribute.String("user_id", userID),
	)

	if err := r.client.ZRem(ctx, queueKey(concertID), userID).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: zrem: %v", domain.ErrQueueStoreUnavailable, err)
	}

	if err := r.client.Del(ctx, queueMemberKey(concertID, userID)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: del member: %v", domain.ErrQueueStoreUnavailable, err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure RedisQueueRepository implements QueueRepository
var _ QueueRepository = (*RedisQueueRepository)(nil)
