package dataset

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownMetric is returned when a metric name is not recognised
var ErrUnknownMetric = errors.New("unknown metric")

// Metric is a numeric field that can be aggregated
type Metric string

// Supported metrics
const (
	MetricSales         Metric = "sales"
	MetricProfit        Metric = "profit"
	MetricQuantity      Metric = "quantity"
	MetricDiscount      Metric = "discount"
	MetricProfitMargin  Metric = "profit_margin"
	MetricProfitPerUnit Metric = "profit_per_unit"
)

// Metrics returns all supported metrics
func Metrics() []Metric {
	return []Metric{
		MetricSales, MetricProfit, MetricQuantity,
		MetricDiscount, MetricProfitMargin, MetricProfitPerUnit,
	}
}

// ParseMetric accepts metric names with either underscores or hyphens
func ParseMetric(s string) (Metric, error) {
	name := Metric(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, m := range Metrics() {
		if m == name {
			return m, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// Column returns the column the metric reads
func (m Metric) Column() Column {
	switch m {
	case MetricSales:
		return ColumnSales
	case MetricProfit:
		return ColumnProfit
	case MetricQuantity:
		return ColumnQuantity
	case MetricDiscount:
		return ColumnDiscount
	case MetricProfitMargin:
		return ColumnProfitMargin
	case MetricProfitPerUnit:
		return ColumnProfitPerUnit
	}

	return ""
}

// Value returns the metric for a row; ok is false when the value is null
func (m Metric) Value(t *Transaction) (float64, bool) {
	var v float64

	switch m {
	case MetricSales:
		v = t.Sales
	case MetricProfit:
		v = t.Profit
	case MetricQuantity:
		if t.quantityNull {
			return 0, false
		}

		v = float64(t.Quantity)
	case MetricDiscount:
		v = t.Discount
	case MetricProfitMargin:
		v = t.ProfitMargin
	case MetricProfitPerUnit:
		v = t.ProfitPerUnit
	default:
		return 0, false
	}

	if math.IsNaN(v) {
		return 0, false
	}

	return v, true
}
