package aggregate

import (
	"github.com/salesdash/salesdash/pkg/dataset"
)

// MonthlySeries sums metric by order month, January first.
// Months without rows are included as zero only when includeEmpty is set.
func MonthlySeries(t *dataset.Table, metric dataset.Metric, includeEmpty bool) (Rows, error) {
	rows, err := SumBy(t, metric, dataset.DimOrderMonth)
	if err != nil {
		return nil, err
	}

	if !includeEmpty {
		return rows, nil
	}

	full := make(Rows, 0, len(dataset.Months()))
	for _, m := range dataset.Months() {
		if i := indexOfRow(rows, m.String()); i >= 0 {
			full = append(full, rows[i])

			continue
		}

		full = append(full, Row{Keys: []string{m.String()}})
	}

	return full, nil
}

// YearlySeries sums metric by order year in ascending order
func YearlySeries(t *dataset.Table, metric dataset.Metric) (Rows, error) {
	return SumBy(t, metric, dataset.DimOrderYear)
}

// KPIs are the headline figures of a table
type KPIs struct {
	TotalSales  float64 `json:"total_sales"`
	TotalProfit float64 `json:"total_profit"`
	// ProfitMargin is TotalProfit/TotalSales, or zero when there are no sales
	ProfitMargin   float64 `json:"profit_margin"`
	DistinctOrders int     `json:"distinct_orders"`
}

// ScalarKpis computes the headline figures. Null values count as zero.
func ScalarKpis(t *dataset.Table) KPIs {
	var (
		kpis   KPIs
		orders = make(map[string]struct{})
	)

	for i := 0; i < t.Len(); i++ {
		tx := t.Row(i)

		if v, ok := dataset.MetricSales.Value(tx); ok {
			kpis.TotalSales += v
		}

		if v, ok := dataset.MetricProfit.Value(tx); ok {
			kpis.TotalProfit += v
		}

		orders[tx.OrderID] = struct{}{}
	}

	kpis.DistinctOrders = len(orders)

	if kpis.TotalSales != 0 {
		kpis.ProfitMargin = kpis.TotalProfit / kpis.TotalSales
	}

	return kpis
}

func indexOfRow(rows Rows, key string) int {
	for i, r := range rows {
		if len(r.Keys) == 1 && r.Keys[0] == key {
			return i
		}
	}

	return -1
}
