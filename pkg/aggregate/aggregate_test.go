package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash/internal/testutil"
	"github.com/salesdash/salesdash/pkg/aggregate"
	"github.com/salesdash/salesdash/pkg/dataset"
	"github.com/salesdash/salesdash/pkg/filter"
)

func emptyTable(t *testing.T) *dataset.Table {
	t.Helper()

	return testutil.Superstore(t).Where(func(*dataset.Transaction) bool { return false })
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name string
		spec aggregate.Spec
		ok   bool
	}{
		{"one key", aggregate.Spec{GroupBy: []dataset.Dimension{dataset.DimRegion}, Metric: dataset.MetricSales, Kind: aggregate.KindSum}, true},
		{"two keys", aggregate.Spec{GroupBy: []dataset.Dimension{dataset.DimRegion, dataset.DimSegment}, Metric: dataset.MetricSales, Kind: aggregate.KindMean}, true},
		{"no keys", aggregate.Spec{Metric: dataset.MetricSales, Kind: aggregate.KindSum}, false},
		{"three keys", aggregate.Spec{GroupBy: []dataset.Dimension{dataset.DimRegion, dataset.DimSegment, dataset.DimCategory}, Metric: dataset.MetricSales, Kind: aggregate.KindSum}, false},
		{"unknown dimension", aggregate.Spec{GroupBy: []dataset.Dimension{"colour"}, Metric: dataset.MetricSales, Kind: aggregate.KindSum}, false},
		{"unknown metric", aggregate.Spec{GroupBy: []dataset.Dimension{dataset.DimRegion}, Metric: "revenue", Kind: aggregate.KindSum}, false},
		{"unknown kind", aggregate.Spec{GroupBy: []dataset.Dimension{dataset.DimRegion}, Metric: dataset.MetricSales, Kind: "median"}, false},
		{"negative limit", aggregate.Spec{GroupBy: []dataset.Dimension{dataset.DimRegion}, Metric: dataset.MetricSales, Kind: aggregate.KindSum, Limit: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.ok {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, aggregate.ErrInvalidSpec)
		})
	}
}

func TestSumBy_EmptyTable(t *testing.T) {
	empty := emptyTable(t)

	dims := []dataset.Dimension{
		dataset.DimRegion, dataset.DimState, dataset.DimCategory, dataset.DimSubCategory,
		dataset.DimSegment, dataset.DimOrderMonth, dataset.DimOrderYear, dataset.DimDiscountLevel,
	}

	for _, a := range dims {
		rows, err := aggregate.SumBy(empty, dataset.MetricSales, a)
		require.NoError(t, err)
		assert.Empty(t, rows, "%s", a)

		for _, b := range dims {
			rows, err := aggregate.SumBy(empty, dataset.MetricProfit, a, b)
			require.NoError(t, err)
			assert.Empty(t, rows, "%s x %s", a, b)
		}
	}
}

func TestSumBy_KeyOrder(t *testing.T) {
	table := testutil.Superstore(t)

	byRegion, err := aggregate.SumBy(table, dataset.MetricSales, dataset.DimRegion)
	require.NoError(t, err)
	assert.Equal(t, []string{"Central", "East", "South", "West"}, byRegion.Labels())

	west, ok := byRegion.Lookup("West")
	require.True(t, ok)
	assert.InDelta(t, 14.62+907.152+500, west, 1e-9)

	byYear, err := aggregate.SumBy(table, dataset.MetricProfit, dataset.DimOrderYear)
	require.NoError(t, err)
	assert.Equal(t, []string{"2015", "2016", "2017"}, byYear.Labels())

	byLevel, err := aggregate.SumBy(table, dataset.MetricSales, dataset.DimDiscountLevel)
	require.NoError(t, err)
	assert.Equal(t, []string{"none", "low", "medium", "high"}, byLevel.Labels())

	twoKeys, err := aggregate.SumBy(table, dataset.MetricSales, dataset.DimOrderYear, dataset.DimRegion)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2015 / South", "2015 / West",
		"2016 / South", "2016 / West",
		"2017 / Central", "2017 / East", "2017 / West",
	}, twoKeys.Labels())
}

func TestSumBy_NullKeyAndMetric(t *testing.T) {
	table := testutil.LoadTable(t,
		testutil.Row{State: "Atlantis", Sales: "10"},
		testutil.Row{State: "Texas", Sales: "5"},
		testutil.Row{State: "Texas", Sales: " "},
	)

	rows, err := aggregate.SumBy(table, dataset.MetricSales, dataset.DimStateCode)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, aggregate.Row{Keys: []string{"TX"}, Value: 5, Count: 1}, rows[0])
	assert.Equal(t, aggregate.Row{Keys: []string{dataset.UnknownValue}, Value: 10, Count: 1}, rows[1])
}

func TestMeanBy(t *testing.T) {
	table := testutil.LoadTable(t,
		testutil.Row{Segment: "Consumer", Profit: "10"},
		testutil.Row{Segment: "Consumer", Profit: "20"},
		testutil.Row{Segment: "Consumer", Profit: " "},
		testutil.Row{Segment: "Corporate", Profit: " "},
		testutil.Row{Segment: "Home Office", Profit: "-4"},
	)

	rows, err := aggregate.MeanBy(table, dataset.DimSegment, dataset.MetricProfit)
	require.NoError(t, err)

	assert.Equal(t, aggregate.Rows{
		{Keys: []string{"Consumer"}, Value: 15, Count: 2},
		{Keys: []string{"Home Office"}, Value: -4, Count: 1},
	}, rows)

	empty, err := aggregate.MeanBy(emptyTable(t), dataset.DimSegment, dataset.MetricProfit)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTopN(t *testing.T) {
	table := testutil.Superstore(t)

	best, err := aggregate.TopN(table, dataset.DimProduct, dataset.MetricProfit, 3, aggregate.DirectionMax)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hon Deluxe Chair", "Apple iPhone", "Mitel Phone"}, best.Labels())

	worst, err := aggregate.TopN(table, dataset.DimProduct, dataset.MetricProfit, 3, aggregate.DirectionMin)
	require.NoError(t, err)
	assert.Equal(t, []string{"Okidata Printer", "Bretford Table", "GBC Binder"}, worst.Labels())

	_, err = aggregate.TopN(table, dataset.DimProduct, dataset.MetricProfit, 3, aggregate.DirectionNone)
	assert.ErrorIs(t, err, aggregate.ErrInvalidSpec)
}

func TestTopN_SortedAndBounded(t *testing.T) {
	table := testutil.Superstore(t)
	distinct := len(table.Distinct(dataset.DimProduct))
	require.Less(t, distinct, 20, "fixture exercises the fewer-than-2n case")

	best, err := aggregate.TopN(table, dataset.DimProduct, dataset.MetricProfit, 10, aggregate.DirectionMax)
	require.NoError(t, err)
	worst, err := aggregate.TopN(table, dataset.DimProduct, dataset.MetricProfit, 10, aggregate.DirectionMin)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(best), 10)
	assert.LessOrEqual(t, len(worst), 10)

	for i := 1; i < len(best); i++ {
		assert.GreaterOrEqual(t, best[i-1].Value, best[i].Value)
	}

	for i := 1; i < len(worst); i++ {
		assert.LessOrEqual(t, worst[i-1].Value, worst[i].Value)
	}

	overlap := 0
	for _, b := range best {
		if _, ok := worst.Lookup(b.Keys...); ok {
			overlap++
		}
	}

	// With fewer than 2n products the two lists must share products
	assert.Equal(t, len(best)+len(worst)-distinct, overlap)
}

func TestTopN_TiesUseKeyOrder(t *testing.T) {
	table := testutil.LoadTable(t,
		testutil.Row{Product: "Zeta", Profit: "5"},
		testutil.Row{Product: "Alpha", Profit: "5"},
		testutil.Row{Product: "Mid", Profit: "5"},
	)

	for _, dir := range []aggregate.Direction{aggregate.DirectionMax, aggregate.DirectionMin} {
		rows, err := aggregate.TopN(table, dataset.DimProduct, dataset.MetricProfit, 2, dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"Alpha", "Mid"}, rows.Labels(), "%s", dir)
	}
}

func TestPivot_MissingCellsAreZero(t *testing.T) {
	table := testutil.LoadTable(t,
		testutil.Row{Category: "A", SubCategory: "X", Profit: "3"},
		testutil.Row{Category: "A", SubCategory: "X", Profit: "4"},
		testutil.Row{Category: "B", SubCategory: "X", Profit: "1"},
		testutil.Row{Category: "B", SubCategory: "Y", Profit: "-2"},
	)

	grid, err := aggregate.Pivot(table, dataset.DimCategory, dataset.DimSubCategory, dataset.MetricProfit)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, grid.Rows)
	assert.Equal(t, []string{"X", "Y"}, grid.Cols)
	assert.Equal(t, [][]float64{{7, 0}, {1, -2}}, grid.Cells)

	v, ok := grid.Cell("A", "Y")
	assert.True(t, ok)
	assert.Zero(t, v)

	_, ok = grid.Cell("C", "Y")
	assert.False(t, ok)

	empty, err := aggregate.Pivot(emptyTable(t), dataset.DimCategory, dataset.DimSubCategory, dataset.MetricProfit)
	require.NoError(t, err)
	assert.Empty(t, empty.Rows)
	assert.Empty(t, empty.Cells)
}

func TestMonthlySeries(t *testing.T) {
	table := testutil.Superstore(t)

	sparse, err := aggregate.MonthlySeries(table, dataset.MetricSales, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"January", "April", "June", "October", "November", "December"}, sparse.Labels())

	full, err := aggregate.MonthlySeries(table, dataset.MetricSales, true)
	require.NoError(t, err)
	require.Len(t, full, 12)
	assert.Equal(t, "January", full[0].Label())
	assert.Equal(t, "December", full[11].Label())
	assert.Zero(t, full[1].Value, "February has no rows")
	assert.InDelta(t, 800, full[11].Value, 1e-9)

	emptyFull, err := aggregate.MonthlySeries(emptyTable(t), dataset.MetricSales, true)
	require.NoError(t, err)
	assert.Len(t, emptyFull, 12)
}

func TestYearlySeries(t *testing.T) {
	rows, err := aggregate.YearlySeries(testutil.EndToEnd(t), dataset.MetricSales)
	require.NoError(t, err)

	assert.Equal(t, aggregate.Rows{
		{Keys: []string{"2016"}, Value: 50, Count: 1},
		{Keys: []string{"2017"}, Value: 300, Count: 2},
	}, rows)
}

func TestScalarKpis(t *testing.T) {
	table := testutil.EndToEnd(t)

	sel := filter.Defaults(table)
	sel.Regions = []string{"West"}
	sel.Years = []int{2017}

	kpis := aggregate.ScalarKpis(filter.Apply(table, sel))
	assert.InDelta(t, 100, kpis.TotalSales, 1e-9)
	assert.InDelta(t, 10, kpis.TotalProfit, 1e-9)
	assert.InDelta(t, 0.10, kpis.ProfitMargin, 1e-9)
	assert.Equal(t, 1, kpis.DistinctOrders)

	assert.Equal(t, aggregate.KPIs{}, aggregate.ScalarKpis(emptyTable(t)))

	zeroSales := testutil.LoadTable(t, testutil.Row{Sales: "0", Profit: "-3"})
	kpis = aggregate.ScalarKpis(zeroSales)
	assert.Zero(t, kpis.ProfitMargin)
	assert.InDelta(t, -3, kpis.TotalProfit, 1e-9)
}

func TestScalarKpis_DistinctOrders(t *testing.T) {
	kpis := aggregate.ScalarKpis(testutil.Superstore(t))
	assert.Equal(t, 8, kpis.DistinctOrders)
}
