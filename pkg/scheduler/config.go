// Package scheduler keeps the section cache warm on a cron schedule
package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Warm modes
const (
	// ModeQueue enqueues one Asynq task per plan entry for the workers
	ModeQueue = "queue"
	// ModeLocal computes the plan in-process
	ModeLocal = "local"
)

var (
	// ErrInvalidConcurrency is returned when concurrency is not positive
	ErrInvalidConcurrency = errors.New("concurrency must be positive")
	// ErrInvalidSchedule is returned when the schedule cannot be parsed
	ErrInvalidSchedule = errors.New("invalid schedule")
	// ErrInvalidMode is returned for unknown warm modes
	ErrInvalidMode = errors.New("invalid scheduler mode")
)

// Config defines scheduler configuration
type Config struct {
	Enabled bool `yaml:"enabled" default:"true"`
	// Schedule is a cron expression or an @every descriptor
	Schedule        string        `yaml:"schedule" default:"@every 1h"`
	Mode            string        `yaml:"mode" default:"queue"`
	Concurrency     int           `yaml:"concurrency" default:"4"`
	WarmOnStart     bool          `yaml:"warmOnStart" default:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"10s"`
}

// Validate checks if the scheduler configuration is valid
func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.Mode != ModeQueue && c.Mode != ModeLocal {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}

	if _, err := parseScheduleInterval(c.Schedule); err != nil {
		return err
	}

	return nil
}

func scheduleParser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// parseScheduleInterval converts a cron schedule string to the time between runs
func parseScheduleInterval(schedule string) (time.Duration, error) {
	sched, err := scheduleParser().Parse(schedule)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	// For standard cron expressions, measure the gap between the next two runs
	now := time.Now()
	next := sched.Next(now)

	return sched.Next(next).Sub(next), nil
}
