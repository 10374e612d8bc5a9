// Package report builds the six dashboard sections from a filtered dataset
package report

import (
	"errors"
	"fmt"

	"github.com/salesdash/salesdash/pkg/aggregate"
	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/filter"
)

var (
	// ErrUnknownSection is returned for section IDs that do not exist
	ErrUnknownSection = errors.New("unknown section")
	// ErrUnsupportedMetric is returned when the time series is asked for a metric it cannot chart
	ErrUnsupportedMetric = errors.New("unsupported time series metric")
)

// SectionID identifies a report section
type SectionID string

// Report sections in navigation order
const (
	SectionOverview        SectionID = "overview"
	SectionCategoryProduct SectionID = "category-product"
	SectionCustomers       SectionID = "customers"
	SectionDiscounts       SectionID = "discounts"
	SectionTimeSeries      SectionID = "time-series"
	SectionGeo             SectionID = "geo"
)

// Sections returns every section in navigation order
func Sections() []SectionID {
	return []SectionID{
		SectionOverview,
		SectionCategoryProduct,
		SectionCustomers,
		SectionDiscounts,
		SectionTimeSeries,
		SectionGeo,
	}
}

// ParseSection validates a section ID
func ParseSection(s string) (SectionID, error) {
	for _, id := range Sections() {
		if string(id) == s {
			return id, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
}

// TimeSeriesMetrics are the metrics the time series section can chart
func TimeSeriesMetrics() []dataset.Metric {
	return []dataset.Metric{dataset.MetricSales, dataset.MetricProfit, dataset.MetricProfitMargin}
}

// ChartKind tells renderers how to draw a chart
type ChartKind string

// Chart kinds
const (
	KindBar        ChartKind = "bar"
	KindGroupedBar ChartKind = "grouped_bar"
	KindLine       ChartKind = "line"
	KindPie        ChartKind = "pie"
	KindTreemap    ChartKind = "treemap"
	KindHeatmap    ChartKind = "heatmap"
	KindScatter    ChartKind = "scatter"
	KindHistogram  ChartKind = "histogram"
	KindChoropleth ChartKind = "choropleth"
)

// Series is one named value sequence aligned with Chart.Labels
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// TreemapNode is a leaf of a two-level treemap
type TreemapNode struct {
	Parent string  `json:"parent"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Color  float64 `json:"color"`
}

// Location is one state on a choropleth
type Location struct {
	State string  `json:"state"`
	Code  string  `json:"code"`
	Value float64 `json:"value"`
}

// Chart is render-ready chart data. Which fields are set depends on Kind.
type Chart struct {
	ID     string    `json:"id"`
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label,omitempty"`
	YLabel string    `json:"y_label,omitempty"`

	Labels    []string                  `json:"labels,omitempty"`
	Series    []Series                  `json:"series,omitempty"`
	Grid      *aggregate.Grid           `json:"grid,omitempty"`
	Points    []aggregate.ScatterSeries `json:"points,omitempty"`
	Bins      []aggregate.Bin           `json:"bins,omitempty"`
	Nodes     []TreemapNode             `json:"nodes,omitempty"`
	Locations []Location                `json:"locations,omitempty"`
}

// Empty reports whether the chart has nothing to draw
func (c *Chart) Empty() bool {
	return len(c.Labels) == 0 && len(c.Nodes) == 0 && len(c.Locations) == 0 &&
		len(c.Points) == 0 && len(c.Bins) == 0 && (c.Grid == nil || len(c.Grid.Rows) == 0)
}

// Format controls how a KPI value is displayed
type Format string

// KPI formats
const (
	FormatCurrency Format = "currency"
	FormatPercent  Format = "percent"
	FormatCount    Format = "count"
)

// KPI is a headline figure with its change against the comparison period.
// Delta is nil when no comparison is available.
type KPI struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Format       Format   `json:"format"`
	Value        float64  `json:"value"`
	Display      string   `json:"display"`
	Delta        *float64 `json:"delta"`
	DeltaDisplay string   `json:"delta_display,omitempty"`
}

// Section is a fully computed report view
type Section struct {
	ID         SectionID        `json:"id"`
	Title      string           `json:"title"`
	Locale     Locale           `json:"locale"`
	Selection  filter.Selection `json:"selection"`
	Metric     dataset.Metric   `json:"metric,omitempty"`
	Rows       int              `json:"rows"`
	Comparison *Comparison      `json:"comparison"`
	KPIs       []KPI            `json:"kpis,omitempty"`
	Charts     []Chart          `json:"charts"`
	// Unmapped lists states in the view that could not be placed on the map
	Unmapped []string `json:"unmapped,omitempty"`
	Notes    []string `json:"notes,omitempty"`
}

// Comparison describes the period KPI deltas are measured against
type Comparison struct {
	Year    int    `json:"year"`
	Rows    int    `json:"rows"`
	Caption string `json:"caption"`
}

// Chart returns the chart with the given ID
func (s *Section) Chart(id string) (*Chart, bool) {
	for i := range s.Charts {
		if s.Charts[i].ID == id {
			return &s.Charts[i], true
		}
	}

	return nil, false
}

// Request selects a section, its filters, locale and time series metric
type Request struct {
	Section   SectionID        `json:"section"`
	Selection filter.Selection `json:"selection"`
	Locale    Locale           `json:"locale"`
	Metric    dataset.Metric   `json:"metric"`
}

// Key returns the canonical cache key of the request
func (r Request) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", r.Section, r.Locale, r.Metric, r.Selection.Key())
}
