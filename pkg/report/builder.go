package report

import (
	"fmt"
	"slices"

	"github.com/salesdash/salesdash/pkg/aggregate"
	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/filter"
)

const (
	topN          = 10
	histogramBins = 20
)

// Builder computes sections from an enriched table
type Builder struct {
	labels *Labels
}

// NewBuilder creates a builder using the given label catalogs
func NewBuilder(labels *Labels) *Builder {
	return &Builder{labels: labels}
}

// Labels returns the label catalogs
func (b *Builder) Labels() *Labels {
	return b.labels
}

// view carries what every section builder needs
type view struct {
	full    *dataset.Table
	current *dataset.Table
	req     Request
}

func (v *view) text(b *Builder, key string, data map[string]interface{}) string {
	return b.labels.Text(v.req.Locale, key, data)
}

// Build computes the requested section over table. The request must be resolved.
func (b *Builder) Build(table *dataset.Table, req Request) (*Section, error) {
	if req.Locale == "" {
		req.Locale = DefaultLocale
	}

	if req.Section == SectionTimeSeries && !slices.Contains(TimeSeriesMetrics(), req.Metric) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMetric, req.Metric)
	}

	v := &view{full: table, current: filter.Apply(table, req.Selection), req: req}

	section := &Section{
		ID:        req.Section,
		Title:     b.labels.Section(req.Locale, req.Section),
		Locale:    req.Locale,
		Selection: req.Selection,
		Rows:      v.current.Len(),
		Charts:    []Chart{},
	}

	var err error

	switch req.Section {
	case SectionOverview:
		err = b.overview(v, section)
	case SectionCategoryProduct:
		err = b.categoryProduct(v, section)
	case SectionCustomers:
		err = b.customers(v, section)
	case SectionDiscounts:
		err = b.discounts(v, section)
	case SectionTimeSeries:
		section.Metric = req.Metric
		err = b.timeSeries(v, section)
	case SectionGeo:
		err = b.geo(v, section)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, req.Section)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", req.Section, err)
	}

	return section, nil
}

func (b *Builder) overview(v *view, s *Section) error {
	current := aggregate.ScalarKpis(v.current)

	previousTable := filter.ComparisonPeriod(v.full, v.req.Selection)

	var previous *aggregate.KPIs

	if previousTable.Len() > 0 {
		kpis := aggregate.ScalarKpis(previousTable)
		previous = &kpis
	}

	if year, ok := filter.PreviousYear(v.full, v.req.Selection); ok {
		s.Comparison = &Comparison{
			Year:    year,
			Rows:    previousTable.Len(),
			Caption: v.text(b, "comparison", map[string]interface{}{"Year": year}),
		}
	}

	s.KPIs = b.kpis(v.req.Locale, current, previous)

	yearly, err := b.multiSeries(v, dataset.DimOrderYear, aggregate.KindSum, dataset.MetricSales, dataset.MetricProfit)
	if err != nil {
		return err
	}

	region, err := aggregate.SumBy(v.current, dataset.MetricProfit, dataset.DimRegion)
	if err != nil {
		return err
	}

	monthly, err := b.monthlySeries(v, dataset.MetricSales, dataset.MetricProfit)
	if err != nil {
		return err
	}

	segment, err := b.multiSeries(v, dataset.DimSegment, aggregate.KindSum, dataset.MetricSales, dataset.MetricProfit)
	if err != nil {
		return err
	}

	s.Charts = append(s.Charts,
		Chart{
			ID:     "yearly",
			Kind:   KindGroupedBar,
			Title:  v.text(b, "chart.overview.yearly", nil),
			XLabel: v.text(b, "axis.year", nil),
			YLabel: v.text(b, "axis.amount", nil),
			Labels: yearly.labels,
			Series: yearly.series,
		},
		Chart{
			ID:     "region",
			Kind:   KindBar,
			Title:  v.text(b, "chart.overview.region", nil),
			XLabel: v.text(b, "axis.region", nil),
			YLabel: v.text(b, "axis.total_profit", nil),
			Labels: region.Labels(),
			Series: []Series{{Name: b.labels.Metric(v.req.Locale, dataset.MetricProfit), Values: region.Values()}},
		},
		Chart{
			ID:     "monthly",
			Kind:   KindLine,
			Title:  v.text(b, "chart.overview.monthly", nil),
			XLabel: v.text(b, "axis.month", nil),
			YLabel: v.text(b, "axis.amount", nil),
			Labels: monthly.labels,
			Series: monthly.series,
		},
		Chart{
			ID:     "segment",
			Kind:   KindGroupedBar,
			Title:  v.text(b, "chart.overview.segment", nil),
			XLabel: v.text(b, "axis.segment", nil),
			YLabel: v.text(b, "axis.amount", nil),
			Labels: segment.labels,
			Series: segment.series,
		},
	)

	return nil
}

// kpis builds the KPI cards. A delta is only reported when the comparison
// period has rows and its value is non-zero.
func (b *Builder) kpis(locale Locale, current aggregate.KPIs, previous *aggregate.KPIs) []KPI {
	type card struct {
		id     string
		format Format
		value  func(aggregate.KPIs) float64
	}

	cards := []card{
		{"total_sales", FormatCurrency, func(k aggregate.KPIs) float64 { return k.TotalSales }},
		{"total_profit", FormatCurrency, func(k aggregate.KPIs) float64 { return k.TotalProfit }},
		{"profit_margin", FormatPercent, func(k aggregate.KPIs) float64 { return k.ProfitMargin }},
		{"total_orders", FormatCount, func(k aggregate.KPIs) float64 { return float64(k.DistinctOrders) }},
	}

	out := make([]KPI, 0, len(cards))

	for _, c := range cards {
		value := c.value(current)

		kpi := KPI{
			ID:      c.id,
			Label:   b.labels.Text(locale, "kpi."+c.id, nil),
			Format:  c.format,
			Value:   value,
			Display: FormatValue(value, c.format),
		}

		if previous != nil {
			if prev := c.value(*previous); prev != 0 {
				delta := value - prev
				kpi.Delta = &delta
				kpi.DeltaDisplay = FormatDelta(delta, c.format)
			}
		}

		out = append(out, kpi)
	}

	return out
}

func (b *Builder) categoryProduct(v *view, s *Section) error {
	sales, err := aggregate.SumBy(v.current, dataset.MetricSales, dataset.DimCategory, dataset.DimSubCategory)
	if err != nil {
		return err
	}

	profit, err := aggregate.SumBy(v.current, dataset.MetricProfit, dataset.DimCategory, dataset.DimSubCategory)
	if err != nil {
		return err
	}

	nodes := make([]TreemapNode, 0, len(sales))
	for _, r := range sales {
		p, _ := profit.Lookup(r.Keys...)
		nodes = append(nodes, TreemapNode{Parent: r.Keys[0], Label: r.Keys[1], Value: r.Value, Color: p})
	}

	best, err := aggregate.TopN(v.current, dataset.DimProduct, dataset.MetricProfit, topN, aggregate.DirectionMax)
	if err != nil {
		return err
	}

	worst, err := aggregate.TopN(v.current, dataset.DimProduct, dataset.MetricProfit, topN, aggregate.DirectionMin)
	if err != nil {
		return err
	}

	grid, err := aggregate.Pivot(v.current, dataset.DimSubCategory, dataset.DimCategory, dataset.MetricProfit)
	if err != nil {
		return err
	}

	profitName := b.labels.Metric(v.req.Locale, dataset.MetricProfit)
	n := map[string]interface{}{"N": topN}

	s.Charts = append(s.Charts,
		Chart{
			ID:    "treemap",
			Kind:  KindTreemap,
			Title: v.text(b, "chart.category-product.treemap", nil),
			Nodes: nodes,
		},
		Chart{
			ID:     "top-products",
			Kind:   KindBar,
			Title:  v.text(b, "chart.category-product.top-products", n),
			XLabel: v.text(b, "axis.product", nil),
			YLabel: v.text(b, "axis.total_profit", nil),
			Labels: best.Labels(),
			Series: []Series{{Name: profitName, Values: best.Values()}},
		},
		Chart{
			ID:     "loss-products",
			Kind:   KindBar,
			Title:  v.text(b, "chart.category-product.loss-products", n),
			XLabel: v.text(b, "axis.product", nil),
			YLabel: v.text(b, "axis.total_profit", nil),
			Labels: worst.Labels(),
			Series: []Series{{Name: profitName, Values: worst.Values()}},
		},
		Chart{
			ID:     "heatmap",
			Kind:   KindHeatmap,
			Title:  v.text(b, "chart.category-product.heatmap", nil),
			XLabel: v.text(b, "axis.category", nil),
			YLabel: v.text(b, "axis.sub_category", nil),
			Grid:   &grid,
		},
	)

	return nil
}

func (b *Builder) customers(v *view, s *Section) error {
	avgProfit, err := aggregate.MeanBy(v.current, dataset.DimSegment, dataset.MetricProfit)
	if err != nil {
		return err
	}

	sales, err := aggregate.SumBy(v.current, dataset.MetricSales, dataset.DimSegment)
	if err != nil {
		return err
	}

	top, err := aggregate.TopN(v.current, dataset.DimCustomer, dataset.MetricProfit, topN, aggregate.DirectionMax)
	if err != nil {
		return err
	}

	s.Charts = append(s.Charts,
		Chart{
			ID:     "avg-profit",
			Kind:   KindPie,
			Title:  v.text(b, "chart.customers.avg-profit", nil),
			YLabel: v.text(b, "axis.average_profit", nil),
			Labels: avgProfit.Labels(),
			Series: []Series{{Name: b.labels.Metric(v.req.Locale, dataset.MetricProfit), Values: avgProfit.Values()}},
		},
		Chart{
			ID:     "segment-sales",
			Kind:   KindBar,
			Title:  v.text(b, "chart.customers.segment-sales", nil),
			XLabel: v.text(b, "axis.segment", nil),
			YLabel: v.text(b, "axis.total_sales", nil),
			Labels: sales.Labels(),
			Series: []Series{{Name: b.labels.Metric(v.req.Locale, dataset.MetricSales), Values: sales.Values()}},
		},
		Chart{
			ID:     "top-customers",
			Kind:   KindBar,
			Title:  v.text(b, "chart.customers.top-customers", map[string]interface{}{"N": topN}),
			XLabel: v.text(b, "axis.customer", nil),
			YLabel: v.text(b, "axis.total_profit", nil),
			Labels: top.Labels(),
			Series: []Series{{Name: b.labels.Metric(v.req.Locale, dataset.MetricProfit), Values: top.Values()}},
		},
	)

	return nil
}

func (b *Builder) discounts(v *view, s *Section) error {
	scatter := aggregate.Scatter(v.current, dataset.MetricDiscount, dataset.MetricProfitMargin, dataset.DimCategory)
	bins := aggregate.Histogram(v.current, dataset.MetricDiscount, histogramBins)

	levels, err := b.multiSeries(v, dataset.DimDiscountLevel, aggregate.KindMean, dataset.MetricSales, dataset.MetricProfit)
	if err != nil {
		return err
	}

	for i, level := range levels.labels {
		levels.labels[i] = b.labels.DiscountLevel(v.req.Locale, level)
	}

	s.Charts = append(s.Charts,
		Chart{
			ID:     "scatter",
			Kind:   KindScatter,
			Title:  v.text(b, "chart.discounts.scatter", nil),
			XLabel: v.text(b, "axis.discount_rate", nil),
			YLabel: v.text(b, "axis.profit_margin", nil),
			Points: scatter,
		},
		Chart{
			ID:     "histogram",
			Kind:   KindHistogram,
			Title:  v.text(b, "chart.discounts.histogram", nil),
			XLabel: v.text(b, "axis.discount_rate", nil),
			YLabel: v.text(b, "axis.count", nil),
			Bins:   bins,
		},
		Chart{
			ID:     "levels",
			Kind:   KindGroupedBar,
			Title:  v.text(b, "chart.discounts.levels", nil),
			XLabel: v.text(b, "axis.discount_level", nil),
			YLabel: v.text(b, "axis.average_amount", nil),
			Labels: levels.labels,
			Series: levels.series,
		},
	)

	return nil
}

func (b *Builder) timeSeries(v *view, s *Section) error {
	metric := v.req.Metric

	monthly, err := aggregate.MonthlySeries(v.current, metric, true)
	if err != nil {
		return err
	}

	yearly, err := aggregate.YearlySeries(v.current, metric)
	if err != nil {
		return err
	}

	if v.current.Len() == 0 {
		monthly = aggregate.Rows{}
	}

	name := b.labels.Metric(v.req.Locale, metric)
	data := map[string]interface{}{"Metric": name}
	yLabel := v.text(b, "axis.metric", map[string]interface{}{"Metric": string(metric)})

	s.Charts = append(s.Charts,
		Chart{
			ID:     "monthly",
			Kind:   KindLine,
			Title:  v.text(b, "chart.time-series.monthly", data),
			XLabel: v.text(b, "axis.month", nil),
			YLabel: yLabel,
			Labels: monthly.Labels(),
			Series: []Series{{Name: name, Values: monthly.Values()}},
		},
		Chart{
			ID:     "yearly",
			Kind:   KindLine,
			Title:  v.text(b, "chart.time-series.yearly", data),
			XLabel: v.text(b, "axis.year", nil),
			YLabel: yLabel,
			Labels: yearly.Labels(),
			Series: []Series{{Name: name, Values: yearly.Values()}},
		},
	)

	return nil
}

// geo places profit by state on a map. States without a postal code are
// left off the map and reported in Unmapped instead.
func (b *Builder) geo(v *view, s *Section) error {
	rows, err := aggregate.SumBy(v.current, dataset.MetricProfit, dataset.DimState, dataset.DimStateCode)
	if err != nil {
		return err
	}

	locations := make([]Location, 0, len(rows))
	unmapped := make([]string, 0)

	for _, r := range rows {
		if r.Keys[1] == dataset.UnknownValue {
			if r.Keys[0] != dataset.UnknownValue {
				unmapped = append(unmapped, r.Keys[0])
			}

			continue
		}

		locations = append(locations, Location{State: r.Keys[0], Code: r.Keys[1], Value: r.Value})
	}

	s.Charts = append(s.Charts, Chart{
		ID:        "map",
		Kind:      KindChoropleth,
		Title:     v.text(b, "chart.geo.map", nil),
		XLabel:    v.text(b, "axis.state", nil),
		YLabel:    v.text(b, "axis.total_profit", nil),
		Locations: locations,
	})

	if len(unmapped) > 0 {
		s.Unmapped = unmapped
		s.Notes = append(s.Notes, v.text(b, "geo.unmapped", map[string]interface{}{"States": unmapped}))
	}

	return nil
}

type multi struct {
	labels []string
	series []Series
}

// multiSeries aggregates several metrics over one key and aligns them on the
// union of group keys. Groups missing for a metric are filled with zero.
func (b *Builder) multiSeries(v *view, key dataset.Dimension, kind aggregate.Kind, metrics ...dataset.Metric) (multi, error) {
	results := make([]aggregate.Rows, 0, len(metrics))
	keys := make([]string, 0)

	for _, m := range metrics {
		rows, err := aggregate.Run(v.current, aggregate.Spec{
			GroupBy: []dataset.Dimension{key},
			Metric:  m,
			Kind:    kind,
		})
		if err != nil {
			return multi{}, err
		}

		for _, r := range rows {
			if !slices.Contains(keys, r.Keys[0]) {
				keys = append(keys, r.Keys[0])
			}
		}

		results = append(results, rows)
	}

	slices.SortFunc(keys, key.Compare)

	out := multi{labels: keys, series: make([]Series, 0, len(metrics))}

	for i, m := range metrics {
		values := make([]float64, len(keys))
		for k, label := range keys {
			values[k], _ = results[i].Lookup(label)
		}

		out.series = append(out.series, Series{Name: b.labels.Metric(v.req.Locale, m), Values: values})
	}

	return out, nil
}

// monthlySeries sums each metric by order month over all twelve months.
// An empty view has no points.
func (b *Builder) monthlySeries(v *view, metrics ...dataset.Metric) (multi, error) {
	out := multi{labels: []string{}, series: make([]Series, 0, len(metrics))}

	for _, m := range metrics {
		rows, err := aggregate.MonthlySeries(v.current, m, v.current.Len() > 0)
		if err != nil {
			return multi{}, err
		}

		out.labels = rows.Labels()
		out.series = append(out.series, Series{Name: b.labels.Metric(v.req.Locale, m), Values: rows.Values()})
	}

	return out, nil
}
