package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/engine"
	"github.com/salesdash/salesdash/pkg/report"
)

// LoadConfig loads the engine configuration from a YAML file. A missing
// file yields the defaults.
func LoadConfig(path string) (*engine.Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	config := &engine.Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	// Try to read the file, but allow it to not exist
	yamlFile, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return config, nil
}

// loadReports loads the dataset for a one-shot CLI command. CLI commands
// never touch Redis.
func loadReports(ctx context.Context, cfg *engine.Config) (*report.Service, error) {
	if err := cfg.Dataset.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Report.Validate(); err != nil {
		return nil, err
	}

	source, err := dataset.NewSource(&cfg.Dataset)
	if err != nil {
		return nil, err
	}

	loader := dataset.NewLoader(logger, &cfg.Dataset, source)

	return engine.NewReportService(ctx, logger, cfg, loader, nil)
}
