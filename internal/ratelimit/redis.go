package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "rate_limit"
	dialTimeout = 5 * time.Second
)

// RedisStore is the shared sliding-window counter store. Every server
// instance talking to the same redis shares one limit per identity.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a redis-backed store and verifies connectivity via PING
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Hit prunes, adds and counts in a single pipelined transaction so that
// concurrent requests from the same identity cannot undercount each other.
// Nanosecond members keep two hits in the same second distinct.
func (s *RedisStore) Hit(ctx context.Context, identity string, now time.Time, window time.Duration) (int64, error) {
	key := keyPrefix + ":" + identity
	windowStart := now.Add(-window).UnixNano()

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limit pipeline: %w", err)
	}

	return card.Val(), nil
}

// Close releases the redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
