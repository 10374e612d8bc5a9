// Package cmd contains the CLI commands for salesdash
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Global vars needed for cobra CLI
var (
	cfgFile string
	logger  *logrus.Logger
)

// rootCmd represents the base command
//
//nolint:gochecknoglobals // Cobra commands are typically global
var rootCmd = &cobra.Command{
	Use:   "salesdash",
	Short: "Superstore sales analytics dashboard",
	Long: `salesdash loads a Superstore transactions extract once and serves
filterable sales, profit, customer, discount, time series and geographic
analyses as JSON, PNG charts and XLSX workbooks.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error, fatal, panic)")

	// Initialize logger
	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "./config.yaml"
	}

	// Set log level
	logLevel, err := rootCmd.PersistentFlags().GetString("log-level")
	if err != nil {
		logLevel = "info" // Default to info if error
	}
	level, parseErr := logrus.ParseLevel(logLevel)
	if parseErr != nil {
		logger.WithError(parseErr).Warn("Invalid log level, defaulting to info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// applyConfigLevel uses the configured level unless --log-level was given
func applyConfigLevel(cmd *cobra.Command, configured string) {
	if cmd.Flags().Changed("log-level") || configured == "" {
		return
	}

	level, err := logrus.ParseLevel(configured)
	if err != nil {
		logger.WithError(err).Warn("Invalid configured log level, keeping current level")
		return
	}

	logger.SetLevel(level)
}

// quietLogs drops to error level for one-shot commands so that output stays
// readable, unless --log-level was given
func quietLogs(cmd *cobra.Command) {
	if cmd.Flags().Changed("log-level") {
		return
	}

	logger.SetLevel(logrus.ErrorLevel)
}
