package velocity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis sorted set per subject key, scored
// by attempt time. Works across instances, unlike the in-memory store.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) RecordAttempt(ctx context.Context, key string, window time.Duration) (int, error) {
	now := time.Now()
	redisKey := s.key(key)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", now.Add(-window).UnixNano()))
	// Member must be unique per attempt; the score carries the time.
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	count := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record attempt: %w", err)
	}
	return int(count.Val()), nil
}

func (s *RedisStore) Count(ctx context.Context, key string, window time.Duration) (int, error) {
	now := time.Now()
	redisKey := s.key(key)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", now.Add(-window).UnixNano()))
	count := pipe.ZCard(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return int(count.Val()), nil
}

func (s *RedisStore) key(subject string) string {
	return "velocity:attempts:" + subject
}
