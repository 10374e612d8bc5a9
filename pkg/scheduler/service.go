package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/salesdash/salesdash/pkg/report"
	"github.com/salesdash/salesdash/pkg/tasks"
)

// ErrNotLeader is returned when a scheduled run is skipped on a follower
var ErrNotLeader = errors.New("instance is not the scheduler leader")

// Service defines the public interface for the scheduler
type Service interface {
	// Start joins leader election and starts the cron schedule
	Start(ctx context.Context) error

	// Stop gracefully shuts down the scheduler service
	Stop() error

	// Trigger runs the warm plan now, regardless of leadership
	Trigger(ctx context.Context, trigger string) (int, error)
}

// Enqueuer places warm tasks on the queue
type Enqueuer interface {
	EnqueueWarm(ctx context.Context, payload tasks.WarmPayload, opts ...asynq.Option) (bool, error)
}

// Keys holds the Redis keys the scheduler coordinates through
type Keys struct {
	Leader  string
	LastRun string
}

// service runs the warm plan on the leader instance
type service struct {
	log logrus.FieldLogger
	cfg *Config

	warmer  tasks.Warmer
	queue   Enqueuer
	locales []report.Locale

	elector  LeaderElector
	tracker  runTracker
	cron     *cron.Cron
	interval time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewService creates a scheduler. A nil queue forces local warming.
func NewService(
	log logrus.FieldLogger,
	cfg *Config,
	client *redis.Client,
	keys Keys,
	queue Enqueuer,
	warmer tasks.Warmer,
	locales []report.Locale,
) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	interval, err := parseScheduleInterval(cfg.Schedule)
	if err != nil {
		return nil, err
	}

	log = log.WithField("service", "scheduler")

	return &service{
		log:      log,
		cfg:      cfg,
		warmer:   warmer,
		queue:    queue,
		locales:  locales,
		elector:  NewLeaderElector(log, client, keys.Leader),
		tracker:  newRunTracker(client, keys.LastRun),
		cron:     cron.New(cron.WithParser(scheduleParser()), cron.WithLocation(time.UTC)),
		interval: interval,
	}, nil
}

// Start initializes and starts the scheduler service
func (s *service) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	if err := s.elector.Start(ctx); err != nil {
		return fmt.Errorf("failed to start leader election: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.run(ctx, tasks.TriggerSchedule)
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	s.cron.Start()

	if s.cfg.WarmOnStart {
		s.wg.Add(1)
		go s.catchUp(ctx)
	}

	s.log.WithFields(logrus.Fields{
		"schedule": s.cfg.Schedule,
		"mode":     s.mode(),
	}).Info("Scheduler service started (participating in leader election)")

	return nil
}

// Stop gracefully shuts down the scheduler service
func (s *service) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}

	stopped := s.cron.Stop()

	select {
	case <-stopped.Done():
	case <-time.After(s.cfg.ShutdownTimeout):
		s.log.Warn("Timed out waiting for a scheduled run to finish")
	}

	s.wg.Wait()

	if err := s.elector.Stop(); err != nil {
		s.log.WithError(err).Warn("Failed to stop leader elector")
	}

	s.log.Info("Scheduler service stopped")

	return nil
}

// Trigger runs the warm plan and returns how many sections were warmed or enqueued
func (s *service) Trigger(ctx context.Context, trigger string) (int, error) {
	plan := WarmPlan(s.warmer.Table(), s.locales, trigger)

	if s.mode() == ModeLocal {
		return WarmLocal(ctx, s.warmer, plan, s.cfg.Concurrency)
	}

	enqueued := 0

	for _, payload := range plan {
		ok, err := s.queue.EnqueueWarm(ctx, payload)
		if err != nil {
			return enqueued, fmt.Errorf("%s: %w", payload.UniqueID(), err)
		}

		if ok {
			enqueued++
		}
	}

	return enqueued, nil
}

// run executes one scheduled warm-up on the leader
func (s *service) run(ctx context.Context, trigger string) {
	log := s.log.WithField("trigger", trigger)

	if !s.elector.IsLeader() {
		log.WithError(ErrNotLeader).Debug("Skipping warm-up")

		return
	}

	start := time.Now()

	n, err := s.Trigger(ctx, trigger)
	if err != nil {
		log.WithError(err).WithField("completed", n).Error("Warm-up failed")

		return
	}

	if err := s.tracker.SetLastRun(ctx, start); err != nil {
		log.WithError(err).Warn("Failed to record warm-up run")
	}

	log.WithFields(logrus.Fields{
		"sections": n,
		"duration": time.Since(start),
	}).Info("Warm-up finished")
}

// catchUp warms once after taking leadership when the last run is older than
// one schedule interval
func (s *service) catchUp(ctx context.Context) {
	defer s.wg.Done()

	if err := s.elector.WaitForLeadership(ctx); err != nil {
		return
	}

	lastRun, err := s.tracker.GetLastRun(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Failed to read last warm-up run")
	}

	if !lastRun.IsZero() && time.Since(lastRun) < s.interval {
		s.log.WithField("last_run", lastRun).Debug("Recent warm-up found, waiting for schedule")

		return
	}

	s.run(ctx, tasks.TriggerStartup)
}

func (s *service) mode() string {
	if s.queue == nil {
		return ModeLocal
	}

	return s.cfg.Mode
}

var _ Service = (*service)(nil)
