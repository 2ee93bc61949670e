// Package cache provides the Redis side cache and the cache-aside helpers built on it.
// The cache is never authoritative: every failure degrades to a miss.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is used when a non-positive TTL is configured.
const DefaultTTL = 10 * time.Minute

var (
	// ErrMiss is returned by Get when the key is absent or expired.
	ErrMiss = errors.New("cache miss")

	// ErrUnavailable is returned when no Redis client is configured.
	ErrUnavailable = errors.New("cache unavailable")
)

// Cache is the key-value collaborator used by the cache-aside helpers.
// Any call may fail; callers decide how to absorb the failure.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// RedisCache implements Cache on top of go-redis.
// A nil client is allowed and makes every operation return ErrUnavailable,
// so the application keeps running without Redis.
type RedisCache struct {
	rdb *redis.Client
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache wraps rdb. rdb may be nil.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Get returns the raw value stored under key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.rdb == nil {
		return nil, ErrUnavailable
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

// Set stores value under key with ttl.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.rdb == nil {
		return ErrUnavailable
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys. Deleting a missing key is not an error.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if c.rdb == nil {
		return ErrUnavailable
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", strings.Join(keys, ","), err)
	}
	return nil
}

// Ping checks connectivity for health reporting.
func (c *RedisCache) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return ErrUnavailable
	}
	return c.rdb.Ping(ctx).Err()
}

// Key builds the "{kind}:{id}" cache key.
func Key(kind, id string) string {
	return kind + ":" + safe(id)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
