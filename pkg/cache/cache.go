// Package cache stores computed report sections in Redis
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces section entries
const DefaultKeyPrefix = "salesdash:section:"

const scanBatch = 100

// Entry is a cached JSON payload
type Entry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
	TTL       time.Duration   `json:"ttl"`
}

// Cache stores entries by key. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, entry Entry) error
	Invalidate(ctx context.Context, key string) error
	InvalidateAll(ctx context.Context) (int, error)
}

// RedisCache keeps entries as JSON strings with a TTL
type RedisCache struct {
	redisClient *redis.Client
	keyPrefix   string
}

// NewRedisCache creates a Redis-backed cache
func NewRedisCache(redisClient *redis.Client, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}

	return &RedisCache{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
	}
}

// Get retrieves an entry from Redis
func (c *RedisCache) Get(ctx context.Context, key string) (*Entry, error) {
	fullKey := c.keyPrefix + key

	data, err := c.redisClient.Get(ctx, fullKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}

		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}

	// Expired entries whose key outlived the TTL count as a miss
	if entry.TTL > 0 && time.Since(entry.UpdatedAt) > entry.TTL {
		_ = c.redisClient.Del(ctx, fullKey)

		return nil, nil
	}

	return &entry, nil
}

// Set stores an entry in Redis
func (c *RedisCache) Set(ctx context.Context, entry Entry) error {
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return c.redisClient.Set(ctx, c.keyPrefix+entry.Key, data, entry.TTL).Err()
}

// Invalidate removes one entry
func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	return c.redisClient.Del(ctx, c.keyPrefix+key).Err()
}

// InvalidateAll removes every entry under the prefix and returns how many were deleted
func (c *RedisCache) InvalidateAll(ctx context.Context) (int, error) {
	deleted := 0

	iter := c.redisClient.Scan(ctx, 0, c.keyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		n, err := c.redisClient.Del(ctx, iter.Val()).Result()
		if err != nil {
			return deleted, err
		}

		deleted += int(n)
	}

	if err := iter.Err(); err != nil {
		return deleted, err
	}

	return deleted, nil
}

// Noop is used when no Redis is configured; every Get is a miss
type Noop struct{}

// Get always misses
func (Noop) Get(context.Context, string) (*Entry, error) { return nil, nil }

// Set discards the entry
func (Noop) Set(context.Context, Entry) error { return nil }

// Invalidate does nothing
func (Noop) Invalidate(context.Context, string) error { return nil }

// InvalidateAll does nothing
func (Noop) InvalidateAll(context.Context) (int, error) { return 0, nil }
