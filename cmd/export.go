package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/salesdash/salesdash/pkg/export"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	exportFlags selectionFlags
	exportOut   string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every section to an XLSX workbook",
	Example: `  salesdash export --out report.xlsx --year 2016,2017
  salesdash export --locale id --segment Consumer`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportFlags.register(exportCmd.Flags())
	exportCmd.Flags().StringVar(&exportOut, "out", "salesdash.xlsx", "output workbook path")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	locale, metric, err := exportFlags.view()
	if err != nil {
		return err
	}

	config, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	quietLogs(cmd)

	reports, err := loadReports(cmd.Context(), config)
	if err != nil {
		return err
	}

	sel, err := exportFlags.selection(cmd, reports.Table())
	if err != nil {
		return err
	}

	sections, err := reports.All(cmd.Context(), sel, locale, metric)
	if err != nil {
		return err
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOut, err)
	}

	exportID, err := export.Workbook(sections, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sections to %s (export %s)\n", len(sections), exportOut, exportID)

	return nil
}
