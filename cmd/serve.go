package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/salesdash/salesdash/pkg/engine"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the salesdash API, frontend and background workers",
	Long: `Loads the dataset and serves the API and frontend. When Redis is
configured the section cache, warm-up worker and scheduler also run.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	// Load configuration
	config, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	applyConfigLevel(cmd, config.Logging)

	logger.Info("Configuration loaded")

	app, err := engine.NewService(logger, config)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		if stopErr := app.Stop(); stopErr != nil {
			logger.WithError(stopErr).Error("Failed to stop after startup failure")
		}

		return err
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cancel()

	// Graceful shutdown
	return app.Stop()
}
