package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash/internal/testutil"
	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/filter"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()

	labels, err := NewLabels()
	require.NoError(t, err)

	return NewBuilder(labels)
}

func kpiByID(t *testing.T, s *Section, id string) KPI {
	t.Helper()

	for _, k := range s.KPIs {
		if k.ID == id {
			return k
		}
	}

	t.Fatalf("kpi %s not found", id)

	return KPI{}
}

func TestBuild_EveryChartHasData(t *testing.T) {
	b := newTestBuilder(t)
	table := testutil.Superstore(t)

	expected := map[SectionID][]string{
		SectionOverview:        {"yearly", "region", "monthly", "segment"},
		SectionCategoryProduct: {"treemap", "top-products", "loss-products", "heatmap"},
		SectionCustomers:       {"avg-profit", "segment-sales", "top-customers"},
		SectionDiscounts:       {"scatter", "histogram", "levels"},
		SectionTimeSeries:      {"monthly", "yearly"},
		SectionGeo:             {"map"},
	}

	for _, id := range Sections() {
		t.Run(string(id), func(t *testing.T) {
			section, err := b.Build(table, Request{
				Section:   id,
				Selection: filter.Defaults(table),
				Locale:    LocaleEN,
				Metric:    dataset.MetricSales,
			})
			require.NoError(t, err)

			ids := make([]string, 0, len(section.Charts))
			for _, c := range section.Charts {
				ids = append(ids, c.ID)
				assert.NotEmpty(t, c.Title, c.ID)
				assert.False(t, c.Empty(), c.ID)

				for _, s := range c.Series {
					assert.Len(t, s.Values, len(c.Labels), "%s/%s", c.ID, s.Name)
				}
			}

			assert.Equal(t, expected[id], ids)
			assert.Equal(t, table.Len(), section.Rows)
		})
	}
}

func TestBuild_OverviewEndToEnd(t *testing.T) {
	b := newTestBuilder(t)
	table := testutil.EndToEnd(t)

	sel := filter.Defaults(table)
	sel.Regions = []string{"West"}
	sel.Years = []int{2017}

	section, err := b.Build(table, Request{Section: SectionOverview, Selection: sel, Locale: LocaleEN})
	require.NoError(t, err)

	assert.Equal(t, 1, section.Rows)
	require.NotNil(t, section.Comparison)
	assert.Equal(t, 2016, section.Comparison.Year)
	assert.Equal(t, 1, section.Comparison.Rows)
	assert.Equal(t, "Compared with 2016", section.Comparison.Caption)

	sales := kpiByID(t, section, "total_sales")
	assert.InDelta(t, 100, sales.Value, 1e-9)
	assert.Equal(t, "$100", sales.Display)
	require.NotNil(t, sales.Delta)
	assert.InDelta(t, 50, *sales.Delta, 1e-9)
	assert.Equal(t, "+50", sales.DeltaDisplay)

	profit := kpiByID(t, section, "total_profit")
	assert.InDelta(t, 10, profit.Value, 1e-9)

	margin := kpiByID(t, section, "profit_margin")
	assert.InDelta(t, 0.10, margin.Value, 1e-9)
	assert.Equal(t, "10.00%", margin.Display)
	require.NotNil(t, margin.Delta)
	assert.InDelta(t, 0, *margin.Delta, 1e-9)

	orders := kpiByID(t, section, "total_orders")
	assert.InDelta(t, 1, orders.Value, 1e-9)
	assert.Equal(t, "1", orders.Display)
}

func TestBuild_OverviewMonthlyCoversEveryMonth(t *testing.T) {
	b := newTestBuilder(t)
	table := testutil.EndToEnd(t)

	sel := filter.Defaults(table)
	sel.Regions = []string{"West"}
	sel.Years = []int{2017}

	section, err := b.Build(table, Request{Section: SectionOverview, Selection: sel, Locale: LocaleEN})
	require.NoError(t, err)

	monthly, ok := section.Chart("monthly")
	require.True(t, ok)
	require.Len(t, monthly.Labels, 12)
	assert.Equal(t, "January", monthly.Labels[0])
	assert.Equal(t, "December", monthly.Labels[11])
	require.Len(t, monthly.Series, 2)

	sales := monthly.Series[0].Values
	require.Len(t, sales, 12)
	assert.InDelta(t, 100, sales[2], 1e-9)
	assert.InDelta(t, 0, sales[0], 1e-9)
	assert.InDelta(t, 0, sales[11], 1e-9)
	assert.InDelta(t, 10, monthly.Series[1].Values[2], 1e-9)

	sel.Regions = []string{}

	empty, err := b.Build(table, Request{Section: SectionOverview, Selection: sel, Locale: LocaleEN})
	require.NoError(t, err)

	monthly, ok = empty.Chart("monthly")
	require.True(t, ok)
	assert.True(t, monthly.Empty())
}

func TestBuild_OverviewDeltas(t *testing.T) {
	b := newTestBuilder(t)
	table := testutil.Superstore(t)

	tests := []struct {
		name       string
		years      []int
		comparison bool
		salesDelta float64
	}{
		{name: "single year with a previous year", years: []int{2017}, comparison: true, salesDelta: 2022.72 - 1887.0975},
		{name: "earliest year", years: []int{2015}},
		{name: "several years", years: []int{2016, 2017}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := filter.Defaults(table)
			sel.Years = tt.years

			section, err := b.Build(table, Request{Section: SectionOverview, Selection: sel, Locale: LocaleEN})
			require.NoError(t, err)

			if !tt.comparison {
				assert.Nil(t, section.Comparison)

				for _, k := range section.KPIs {
					assert.Nil(t, k.Delta, "delta for %s must be unavailable, not zero", k.ID)
					assert.Empty(t, k.DeltaDisplay)
				}

				return
			}

			sales := kpiByID(t, section, "total_sales")
			require.NotNil(t, sales.Delta)
			assert.InDelta(t, tt.salesDelta, *sales.Delta, 1e-6)

			orders := kpiByID(t, section, "total_orders")
			require.NotNil(t, orders.Delta)
			assert.InDelta(t, 2, *orders.Delta, 1e-9)
		})
	}
}

func TestBuild_DeltaUnavailableWhenPreviousIsZero(t *testing.T) {
	b := newTestBuilder(t)
	table := testutil.LoadTable(t,
		testutil.Row{OrderID: "P", OrderDate: "2/1/2016", ShipDate: "2/2/2016", Sales: "0", Profit: "0"},
		testutil.Row{OrderID: "C", OrderDate: "2/1/2017", ShipDate: "2/2/2017", Sales: "80", Profit: "8"},
	)

	sel := filter.Defaults(table)
	sel.Years = []int{2017}

	section, err := b.Build(table, Request{Section: SectionOverview, Selection: sel, Locale: LocaleEN})
	require.NoError(t, err)

	assert.Nil(t, kpiByID(t, section, "total_sales").Delta)
	assert.Nil(t, kpiByID(t, section, "total_profit").Delta)
	assert.Nil(t, kpiByID(t, section, "profit_margin").Delta)
	assert.NotNil(t, kpiByID(t, section, "total_orders").Delta)
}

func TestBuild_EmptySelection(t *testing.T) {
	b := newTestBuilder(t)
	table := testutil.Superstore(t)

	sel := filter.Defaults(table)
	sel.Regions = []string{}

	for _, id := range Sections() {
		section, err := b.Build(table, Request{Section: id, Selection: sel, Locale: LocaleEN, Metric: dataset.MetricProfit})
		require.NoError(t, err, id)
		assert.Zero(t, section.Rows)

		for _, c := range section.Charts {
			assert.True(t, c.Empty(), "%s/%s", id, c.ID)
		}
	}
}

func TestBuild_Geo(t *testing.T) {
	b := newTestBuilder(t)
	table := testutil.Superstore(t)

	section, err := b.Build(table, Request{Section: SectionGeo, Selection: filter.Defaults(table), Locale: LocaleEN})
	require.NoError(t, err)

	assert.Equal(t, []string{"Atlantis"}, section.Unmapped)
	require.Len(t, section.Notes, 1)
	assert.Equal(t, "1 state without a postal code: Atlantis", section.Notes[0])

	chart, ok := section.Chart("map")
	require.True(t, ok)

	codes := make([]string, 0, len(chart.Locations))
	for _, l := range chart.Locations {
		codes = append(codes, l.Code)
	}

	assert.Equal(t, []string{"CA", "FL", "KY", "NY", "TX", "WA"}, codes)
}

func TestBuild_TimeSeries(t *testing.T) {
	b := newTestBuilder(t)
	table := testutil.Superstore(t)

	section, err := b.Build(table, Request{
		Section:   SectionTimeSeries,
		Selection: filter.Defaults(table),
		Locale:    LocaleEN,
		Metric:    dataset.MetricProfitMargin,
	})
	require.NoError(t, err)

	monthly, ok := section.Chart("monthly")
	require.True(t, ok)
	assert.Equal(t, "Monthly Profit Margin Trends", monthly.Title)
	assert.Equal(t, "Profit Margin (%)", monthly.YLabel)
	assert.Len(t, monthly.Labels, 12)
	assert.Equal(t, "January", monthly.Labels[0])

	yearly, ok := section.Chart("yearly")
	require.True(t, ok)
	assert.Equal(t, []string{"2015", "2016", "2017"}, yearly.Labels)

	_, err = b.Build(table, Request{Section: SectionTimeSeries, Selection: filter.Defaults(table), Metric: dataset.MetricQuantity})
	assert.ErrorIs(t, err, ErrUnsupportedMetric)
}

func TestBuild_Localized(t *testing.T) {
	b := newTestBuilder(t)
	table := testutil.Superstore(t)

	overview, err := b.Build(table, Request{Section: SectionOverview, Selection: filter.Defaults(table), Locale: LocaleID})
	require.NoError(t, err)
	assert.Equal(t, "Gambaran Umum Eksekutif - Metrik Kinerja", overview.Title)
	assert.Equal(t, "Total Penjualan", kpiByID(t, overview, "total_sales").Label)

	discounts, err := b.Build(table, Request{Section: SectionDiscounts, Selection: filter.Defaults(table), Locale: LocaleID})
	require.NoError(t, err)

	levels, ok := discounts.Chart("levels")
	require.True(t, ok)
	assert.Equal(t, []string{"Tanpa Diskon", "Diskon Rendah", "Diskon Sedang", "Diskon Tinggi"}, levels.Labels)

	products, err := b.Build(table, Request{Section: SectionCategoryProduct, Selection: filter.Defaults(table), Locale: LocaleID})
	require.NoError(t, err)

	top, ok := products.Chart("top-products")
	require.True(t, ok)
	assert.Equal(t, "10 Produk Paling Menguntungkan", top.Title)
}

func TestBuild_CategoryProduct(t *testing.T) {
	b := newTestBuilder(t)
	table := testutil.Superstore(t)

	section, err := b.Build(table, Request{Section: SectionCategoryProduct, Selection: filter.Defaults(table), Locale: LocaleEN})
	require.NoError(t, err)

	heatmap, ok := section.Chart("heatmap")
	require.True(t, ok)
	require.NotNil(t, heatmap.Grid)

	v, ok := heatmap.Grid.Cell("Phones", "Furniture")
	assert.True(t, ok)
	assert.Zero(t, v)

	treemap, ok := section.Chart("treemap")
	require.True(t, ok)
	require.NotEmpty(t, treemap.Nodes)
	assert.Equal(t, TreemapNode{Parent: "Furniture", Label: "Bookcases", Value: 261.96, Color: 41.9136}, treemap.Nodes[0])
}

func TestBuild_UnknownSection(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.Build(testutil.Superstore(t), Request{Section: "finance"})
	assert.ErrorIs(t, err, ErrUnknownSection)
}
