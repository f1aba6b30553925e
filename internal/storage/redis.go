package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const failureStreakTTL = 7 * 24 * time.Hour

// RedisStore tracks consecutive failed runs per source.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Source labels are free text, so keys use their hash.
func failureKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return "failures:" + hex.EncodeToString(sum[:])
}

// IncrementFailureStreak bumps the streak for source and returns the new value.
func (s *RedisStore) IncrementFailureStreak(ctx context.Context, source string) (int64, error) {
	key := failureKey(source)
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, failureStreakTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// ResetFailureStreak clears the streak after a successful run.
func (s *RedisStore) ResetFailureStreak(ctx context.Context, source string) error {
	return s.client.Del(ctx, failureKey(source)).Err()
}

// FailureStreak returns the current streak; a missing key means zero.
func (s *RedisStore) FailureStreak(ctx context.Context, source string) (int64, error) {
	n, err := s.client.Get(ctx, failureKey(source)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
