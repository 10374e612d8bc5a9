package export

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salesdash/salesdash/pkg/aggregate"
	"github.com/salesdash/salesdash/pkg/report"
)

func TestChartTable(t *testing.T) {
	tests := []struct {
		name   string
		chart  report.Chart
		header []interface{}
		rows   [][]interface{}
	}{
		{
			name: "labelled series",
			chart: report.Chart{
				XLabel: "Region",
				Labels: []string{"East", "West"},
				Series: []report.Series{
					{Name: "Sales", Values: []float64{200, 150}},
					{Name: "Profit", Values: []float64{-20, math.NaN()}},
				},
			},
			header: []interface{}{"Region", "Sales", "Profit"},
			rows: [][]interface{}{
				{"East", 200.0, -20.0},
				{"West", 150.0, nil},
			},
		},
		{
			name: "grid",
			chart: report.Chart{
				YLabel: "Sub-Category",
				Grid: &aggregate.Grid{
					Rows:  []string{"Chairs"},
					Cols:  []string{"Central", "South"},
					Cells: [][]float64{{1, 0}},
				},
			},
			header: []interface{}{"Sub-Category", "Central", "South"},
			rows:   [][]interface{}{{"Chairs", 1.0, 0.0}},
		},
		{
			name: "locations",
			chart: report.Chart{
				XLabel:    "State",
				YLabel:    "Sales",
				Locations: []report.Location{{State: "Texas", Code: "TX", Value: 12.5}},
			},
			header: []interface{}{"State", "Code", "Sales"},
			rows:   [][]interface{}{{"Texas", "TX", 12.5}},
		},
		{
			name:   "empty",
			chart:  report.Chart{XLabel: "Month"},
			header: []interface{}{"Month"},
			rows:   [][]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, rows := ChartTable(&tt.chart)
			assert.Equal(t, tt.header, header)
			assert.Equal(t, tt.rows, rows)
		})
	}
}

func TestKPITable(t *testing.T) {
	delta := 50.0
	section := &report.Section{KPIs: []report.KPI{
		{Label: "Total Sales", Value: 100, Display: "$100", Delta: &delta},
		{Label: "Total Orders", Value: 3, Display: "3"},
	}}

	header, rows := KPITable(section)
	assert.Equal(t, []interface{}{"KPI", "Value", "Display", "Change"}, header)
	assert.Equal(t, [][]interface{}{
		{"Total Sales", 100.0, "$100", 50.0},
		{"Total Orders", 3.0, "3", nil},
	}, rows)
}
