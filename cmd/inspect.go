package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/salesdash/salesdash/pkg/dataset"
)

var errUnknownOutput = errors.New("unknown output format")

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	inspectDOT    bool
	inspectOutput string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load the dataset and summarise it",
	Long: `Loads and enriches the configured dataset and prints its size, the
selectable filter values, load warnings and the derived column graph.`,
	Example: `  salesdash inspect
  salesdash inspect --dot | dot -Tpng > columns.png`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(&inspectDOT, "dot", false, "print the derived column graph in DOT format")
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", outputTable, "output format (table, json)")
}

// datasetSummary is the inspect output
type datasetSummary struct {
	Source     string                      `json:"source"`
	Rows       int                         `json:"rows"`
	Years      []int                       `json:"years"`
	Regions    []string                    `json:"regions"`
	Categories []string                    `json:"categories"`
	Segments   []string                    `json:"segments"`
	Unmapped   []string                    `json:"unmapped_states"`
	Warnings   map[dataset.WarningKind]int `json:"warnings"`
	Derived    map[int][]string            `json:"derived_levels"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	if inspectOutput != outputTable && inspectOutput != outputJSON {
		return fmt.Errorf("%w: %s", errUnknownOutput, inspectOutput)
	}

	plan, err := dataset.NewPlan()
	if err != nil {
		return err
	}

	if inspectDOT {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), plan.Graph().GenerateDOTFormat())
		return nil
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

	summary := summarize(config.Dataset.Source, reports.Table(), plan)

	if inspectOutput == outputJSON {
		return writeJSON(cmd.OutOrStdout(), summary)
	}

	return printSummary(cmd.OutOrStdout(), summary)
}

func summarize(source string, table *dataset.Table, plan *dataset.Plan) datasetSummary {
	warnings := make(map[dataset.WarningKind]int)
	for _, w := range table.Warnings() {
		warnings[w.Kind]++
	}

	return datasetSummary{
		Source:     source,
		Rows:       table.Len(),
		Years:      table.Years(),
		Regions:    table.Regions(),
		Categories: table.Categories(),
		Segments:   table.Segments(),
		Unmapped:   table.UnmappedStates(),
		Warnings:   warnings,
		Derived:    plan.Graph().GetDAGInfo().Levels,
	}
}

func printSummary(out io.Writer, s datasetSummary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	years := make([]string, 0, len(s.Years))
	for _, y := range s.Years {
		years = append(years, fmt.Sprint(y))
	}

	_, _ = fmt.Fprintf(w, "Source:\t%s\n", s.Source)
	_, _ = fmt.Fprintf(w, "Rows:\t%d\n", s.Rows)
	_, _ = fmt.Fprintf(w, "Years:\t%s\n", strings.Join(years, ", "))
	_, _ = fmt.Fprintf(w, "Regions:\t%s\n", strings.Join(s.Regions, ", "))
	_, _ = fmt.Fprintf(w, "Categories:\t%s\n", strings.Join(s.Categories, ", "))
	_, _ = fmt.Fprintf(w, "Segments:\t%s\n", strings.Join(s.Segments, ", "))

	if len(s.Unmapped) > 0 {
		_, _ = fmt.Fprintf(w, "Unmapped states:\t%s\n", strings.Join(s.Unmapped, ", "))
	}

	kinds := make([]string, 0, len(s.Warnings))
	for kind := range s.Warnings {
		kinds = append(kinds, string(kind))
	}

	sort.Strings(kinds)

	for _, kind := range kinds {
		_, _ = fmt.Fprintf(w, "Warnings (%s):\t%d\n", kind, s.Warnings[dataset.WarningKind(kind)])
	}

	levels := make([]int, 0, len(s.Derived))
	for level := range s.Derived {
		levels = append(levels, level)
	}

	sort.Ints(levels)

	for _, level := range levels {
		_, _ = fmt.Fprintf(w, "Columns (level %d):\t%s\n", level, strings.Join(s.Derived[level], ", "))
	}

	return w.Flush()
}
