package export

import (
	"math"

	"github.com/salesdash/salesdash/pkg/report"
)

// KPITable lays out a section's KPIs as rows. A missing delta is nil.
func KPITable(section *report.Section) ([]interface{}, [][]interface{}) {
	rows := make([][]interface{}, 0, len(section.KPIs))
	for _, k := range section.KPIs {
		var delta interface{}
		if k.Delta != nil {
			delta = *k.Delta
		}

		rows = append(rows, []interface{}{k.Label, k.Value, k.Display, delta})
	}

	return []interface{}{"KPI", "Value", "Display", "Change"}, rows
}

// ChartTable lays out the data behind a chart as a header and rows.
// Null values are nil.
func ChartTable(c *report.Chart) ([]interface{}, [][]interface{}) {
	switch {
	case c.Grid != nil:
		header := []interface{}{c.YLabel}
		for _, col := range c.Grid.Cols {
			header = append(header, col)
		}

		rows := make([][]interface{}, 0, len(c.Grid.Rows))
		for r, label := range c.Grid.Rows {
			row := []interface{}{label}
			for _, v := range c.Grid.Cells[r] {
				row = append(row, number(v))
			}

			rows = append(rows, row)
		}

		return header, rows
	case len(c.Nodes) > 0:
		rows := make([][]interface{}, 0, len(c.Nodes))
		for _, n := range c.Nodes {
			rows = append(rows, []interface{}{n.Parent, n.Label, number(n.Value), number(n.Color)})
		}

		return []interface{}{"Parent", "Label", "Value", "Color"}, rows
	case len(c.Locations) > 0:
		rows := make([][]interface{}, 0, len(c.Locations))
		for _, l := range c.Locations {
			rows = append(rows, []interface{}{l.State, l.Code, number(l.Value)})
		}

		return []interface{}{c.XLabel, "Code", c.YLabel}, rows
	case len(c.Points) > 0:
		rows := make([][]interface{}, 0)
		for _, series := range c.Points {
			for _, p := range series.Points {
				rows = append(rows, []interface{}{series.Group, number(p.X), number(p.Y)})
			}
		}

		return []interface{}{"Group", c.XLabel, c.YLabel}, rows
	case len(c.Bins) > 0:
		rows := make([][]interface{}, 0, len(c.Bins))
		for _, b := range c.Bins {
			rows = append(rows, []interface{}{number(b.Lower), number(b.Upper), b.Count})
		}

		return []interface{}{"Lower", "Upper", c.YLabel}, rows
	}

	header := []interface{}{c.XLabel}
	for _, series := range c.Series {
		header = append(header, series.Name)
	}

	rows := make([][]interface{}, 0, len(c.Labels))
	for i, label := range c.Labels {
		row := []interface{}{label}
		for _, series := range c.Series {
			row = append(row, number(series.Values[i]))
		}

		rows = append(rows, row)
	}

	return header, rows
}

// number leaves null values as blank cells
func number(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return v
}
