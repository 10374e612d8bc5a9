package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/salesdash/salesdash/pkg/export"
	"github.com/salesdash/salesdash/pkg/report"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	reportFlags  selectionFlags
	reportOutput string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var reportCmd = &cobra.Command{
	Use:   "report <section>",
	Short: "Compute a report section and print it",
	Long: `Computes one section (overview, category-product, customers,
discounts, time-series, geo) for the given filters and prints its KPIs and
chart data.`,
	Example: `  salesdash report overview --year 2017
  salesdash report time-series --metric profit --region East,West
  salesdash report geo --locale id --output json`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: sectionArgs(),
	RunE:      runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportFlags.register(reportCmd.Flags())
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", outputTable, "output format (table, json)")
}

func sectionArgs() []string {
	out := make([]string, 0, len(report.Sections()))
	for _, id := range report.Sections() {
		out = append(out, string(id))
	}

	return out
}

func runReport(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	if reportOutput != outputTable && reportOutput != outputJSON {
		return fmt.Errorf("%w: %s", errUnknownOutput, reportOutput)
	}

	id, err := report.ParseSection(args[0])
	if err != nil {
		return err
	}

	locale, metric, err := reportFlags.view()
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

	sel, err := reportFlags.selection(cmd, reports.Table())
	if err != nil {
		return err
	}

	section, err := reports.Section(cmd.Context(), report.Request{
		Section:   id,
		Selection: sel,
		Locale:    locale,
		Metric:    metric,
	})
	if err != nil {
		return err
	}

	if reportOutput == outputJSON {
		return writeJSON(cmd.OutOrStdout(), section)
	}

	return printSection(cmd.OutOrStdout(), section)
}

func printSection(out io.Writer, section *report.Section) error {
	_, _ = fmt.Fprintf(out, "%s (%d rows)\n", section.Title, section.Rows)

	if section.Comparison != nil {
		_, _ = fmt.Fprintln(out, section.Comparison.Caption)
	}

	for _, note := range section.Notes {
		_, _ = fmt.Fprintf(out, "Note: %s\n", note)
	}

	if len(section.KPIs) > 0 {
		_, _ = fmt.Fprintln(out)

		header, rows := export.KPITable(section)
		if err := printTable(out, header, rows); err != nil {
			return err
		}
	}

	for i := range section.Charts {
		c := &section.Charts[i]

		_, _ = fmt.Fprintf(out, "\n== %s [%s] ==\n", c.Title, c.ID)

		if c.Empty() {
			_, _ = fmt.Fprintln(out, "(no data)")
			continue
		}

		header, rows := export.ChartTable(c)
		if err := printTable(out, header, rows); err != nil {
			return err
		}
	}

	return nil
}

func printTable(out io.Writer, header []interface{}, rows [][]interface{}) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	writeRow(w, header)

	for _, row := range rows {
		writeRow(w, row)
	}

	return w.Flush()
}

func writeRow(w io.Writer, cells []interface{}) {
	for i, cell := range cells {
		if i > 0 {
			_, _ = fmt.Fprint(w, "\t")
		}

		_, _ = fmt.Fprint(w, cellText(cell))
	}

	_, _ = fmt.Fprintln(w)
}

func cellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case float64:
		if math.IsNaN(val) {
			return "-"
		}

		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprint(val)
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
