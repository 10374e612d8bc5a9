package worker

import (
	"errors"
	"time"
)

var (
	// ErrInvalidConcurrency is returned when concurrency is not positive
	ErrInvalidConcurrency = errors.New("concurrency must be positive")
)

// Config contains worker-specific settings
type Config struct {
	// Enabled runs the warm task worker when Redis is configured
	Enabled         bool          `yaml:"enabled" default:"true"`
	Concurrency     int           `yaml:"concurrency" default:"4"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"30s"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	return nil
}
