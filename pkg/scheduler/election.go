package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/salesdash/salesdash/pkg/observability"
)

const (
	leaseTTL      = 10 * time.Second
	renewInterval = 3 * time.Second
)

var (
	// ErrElectorStopped is returned when the elector is stopped while waiting for leadership
	ErrElectorStopped = errors.New("elector stopped while waiting for leadership")
)

// LeaderElector decides which instance schedules warm-ups
type LeaderElector interface {
	Start(ctx context.Context) error
	Stop() error
	IsLeader() bool
	WaitForLeadership(ctx context.Context) error
}

// elector holds a Redis lease renewed every renewInterval
type elector struct {
	log        logrus.FieldLogger
	redis      *redis.Client
	instanceID string
	leaderKey  string

	isLeader bool
	mu       sync.RWMutex

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	promoted chan struct{}
}

// NewLeaderElector creates an elector competing for leaderKey. The client
// is shared and not closed by Stop.
func NewLeaderElector(log logrus.FieldLogger, client *redis.Client, leaderKey string) LeaderElector {
	return &elector{
		log:        log.WithField("component", "election"),
		redis:      client,
		instanceID: uuid.NewString(),
		leaderKey:  leaderKey,
		done:       make(chan struct{}),
		promoted:   make(chan struct{}, 1),
	}
}

func (e *elector) Start(ctx context.Context) error {
	e.log.WithField("instance_id", e.instanceID).Info("Starting leader election")

	e.wg.Add(1)
	go e.run(ctx)

	return nil
}

func (e *elector) Stop() error {
	e.stopOnce.Do(func() {
		close(e.done)
	})

	e.wg.Wait()

	e.relinquish(context.Background())

	e.log.Info("Leader election stopped")

	return nil
}

func (e *elector) run(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(renewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			wasLeader := e.IsLeader()
			acquired := e.tryAcquire(ctx)

			switch {
			case acquired && !wasLeader:
				e.setLeader(true)
				e.log.WithField("instance_id", e.instanceID).Info("Promoted to leader")

				select {
				case e.promoted <- struct{}{}:
				default:
				}
			case !acquired && wasLeader:
				e.setLeader(false)
				e.log.WithField("instance_id", e.instanceID).Info("Demoted from leader")
			}
		}
	}
}

// tryAcquire takes the lease if it is free and renews it if this instance holds it
func (e *elector) tryAcquire(ctx context.Context) bool {
	acquired, err := e.redis.SetNX(ctx, e.leaderKey, e.instanceID, leaseTTL).Result()
	if err != nil {
		e.log.WithError(err).Debug("Failed to acquire leader lock")

		return false
	}

	if acquired {
		return true
	}

	owner, err := e.redis.Get(ctx, e.leaderKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			e.log.WithError(err).Debug("Failed to check lock owner")
		}

		return false
	}

	if owner != e.instanceID {
		return false
	}

	if err := e.redis.Expire(ctx, e.leaderKey, leaseTTL).Err(); err != nil {
		e.log.WithError(err).Warn("Failed to renew leader lease")

		return false
	}

	return true
}

func (e *elector) relinquish(ctx context.Context) {
	if !e.IsLeader() {
		return
	}

	owner, err := e.redis.Get(ctx, e.leaderKey).Result()
	if err == nil && owner == e.instanceID {
		if err := e.redis.Del(ctx, e.leaderKey).Err(); err != nil {
			e.log.WithError(err).Warn("Failed to delete leader lock")
		} else {
			e.log.WithField("instance_id", e.instanceID).Info("Relinquished leader lock")
		}
	}

	e.setLeader(false)
}

func (e *elector) setLeader(isLeader bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.isLeader = isLeader

	if isLeader {
		observability.SchedulerActive.Set(1)
	} else {
		observability.SchedulerActive.Set(0)
	}
}

func (e *elector) IsLeader() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.isLeader
}

func (e *elector) WaitForLeadership(ctx context.Context) error {
	if e.IsLeader() {
		return nil
	}

	select {
	case <-e.promoted:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context canceled while waiting for leadership: %w", ctx.Err())
	case <-e.done:
		return ErrElectorStopped
	}
}

var _ LeaderElector = (*elector)(nil)
