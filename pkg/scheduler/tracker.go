package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// runTracker remembers when the warm plan last ran, across restarts and instances
type runTracker interface {
	// GetLastRun returns the zero time if the plan has never run
	GetLastRun(ctx context.Context) (time.Time, error)
	SetLastRun(ctx context.Context, timestamp time.Time) error
}

type redisRunTracker struct {
	redis *redis.Client
	key   string
}

func newRunTracker(client *redis.Client, key string) runTracker {
	return &redisRunTracker{redis: client, key: key}
}

func (r *redisRunTracker) GetLastRun(ctx context.Context) (time.Time, error) {
	val, err := r.redis.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}

		return time.Time{}, fmt.Errorf("failed to get last run: %w", err)
	}

	timestamp, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last run %q: %w", val, err)
	}

	return timestamp, nil
}

func (r *redisRunTracker) SetLastRun(ctx context.Context, timestamp time.Time) error {
	if err := r.redis.Set(ctx, r.key, timestamp.UTC().Format(time.RFC3339), 0).Err(); err != nil {
		return fmt.Errorf("failed to set last run: %w", err)
	}

	return nil
}

var _ runTracker = (*redisRunTracker)(nil)
