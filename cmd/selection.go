package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/filter"
	"github.com/salesdash/salesdash/pkg/report"
)

// selectionFlags are the filter and view flags shared by report and export
type selectionFlags struct {
	regions    []string
	years      []string
	categories []string
	segments   []string
	metric     string
	locale     string
}

func (f *selectionFlags) register(flags *pflag.FlagSet) {
	flags.StringSliceVar(&f.regions, "region", nil, "regions to include (default all, \"\" for none)")
	flags.StringSliceVar(&f.years, "year", nil, "order years to include (default all, \"\" for none)")
	flags.StringSliceVar(&f.categories, "category", nil, "categories to include (default all, \"\" for none)")
	flags.StringSliceVar(&f.segments, "segment", nil, "segments to include (default all, \"\" for none)")
	flags.StringVar(&f.metric, "metric", "", "time series metric (sales, profit, profit_margin)")
	flags.StringVar(&f.locale, "locale", "", "label locale (en, id)")
}

// selection overrides the table defaults with every flag that was given
func (f *selectionFlags) selection(cmd *cobra.Command, table *dataset.Table) (filter.Selection, error) {
	sel := filter.Defaults(table)

	if cmd.Flags().Changed("region") {
		sel.Regions = nonEmpty(f.regions)
	}

	if cmd.Flags().Changed("category") {
		sel.Categories = nonEmpty(f.categories)
	}

	if cmd.Flags().Changed("segment") {
		sel.Segments = nonEmpty(f.segments)
	}

	if cmd.Flags().Changed("year") {
		years, err := parseYears(f.years)
		if err != nil {
			return filter.Selection{}, err
		}

		sel.Years = years
	}

	return sel, nil
}

func (f *selectionFlags) view() (report.Locale, dataset.Metric, error) {
	var (
		locale report.Locale
		metric dataset.Metric
	)

	if f.locale != "" {
		l, err := report.ParseLocale(f.locale)
		if err != nil {
			return "", "", err
		}

		locale = l
	}

	if f.metric != "" {
		m, err := report.ParseTimeSeriesMetric(f.metric)
		if err != nil {
			return "", "", err
		}

		metric = m
	}

	return locale, metric, nil
}

// nonEmpty drops blank values so that --region "" selects nothing
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}

	return out
}

func parseYears(values []string) ([]int, error) {
	years := make([]int, 0, len(values))
	for _, v := range nonEmpty(values) {
		year, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q: %w", v, err)
		}

		years = append(years, year)
	}

	return years, nil
}
