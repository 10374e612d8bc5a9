// Package engine wires the dataset, report services and background workers together
package engine

import (
	"fmt"

	"github.com/salesdash/salesdash/pkg/api"
	"github.com/salesdash/salesdash/pkg/cache"
	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/frontend"
	redisconfig "github.com/salesdash/salesdash/pkg/redis"
	"github.com/salesdash/salesdash/pkg/report"
	"github.com/salesdash/salesdash/pkg/scheduler"
	"github.com/salesdash/salesdash/pkg/worker"
)

// Config represents the complete engine configuration
type Config struct {
	// Core settings
	Logging         string `yaml:"logging" default:"info" validate:"oneof=panic fatal warn info debug trace"`
	MetricsAddr     string `yaml:"metricsAddr" default:":9091"`
	HealthCheckAddr string `yaml:"healthCheckAddr"`
	PProfAddr       string `yaml:"pprofAddr"`

	// Dataset to load at startup
	Dataset dataset.Config `yaml:"dataset"`

	// Redis is optional; without it there is no cache, worker or scheduler
	Redis redisconfig.Config `yaml:"redis"`

	// Section cache
	Cache cache.Config `yaml:"cache"`

	// Report sections
	Report report.Config `yaml:"report"`

	// API service configuration
	API api.Config `yaml:"api"`

	// Frontend configuration
	Frontend frontend.Config `yaml:"frontend"`

	// Warm-up schedule
	Scheduler scheduler.Config `yaml:"scheduler"`

	// Worker specific settings
	Worker worker.Config `yaml:"worker"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Dataset.Validate(); err != nil {
		return err
	}

	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("invalid redis configuration: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return err
	}

	if err := c.Report.Validate(); err != nil {
		return err
	}

	if err := c.API.Validate(); err != nil {
		return err
	}

	if err := c.Frontend.Validate(); err != nil {
		return err
	}

	if c.Redis.Enabled() && c.Scheduler.Enabled {
		if err := c.Scheduler.Validate(); err != nil {
			return err
		}
	}

	if c.Redis.Enabled() && c.Worker.Enabled {
		if err := c.Worker.Validate(); err != nil {
			return err
		}
	}

	return nil
}
