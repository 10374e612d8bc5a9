package aggregate

import (
	"github.com/salesdash/salesdash/pkg/dataset"
)

// Grid is a dense cross-tabulation. Cells with no rows hold zero.
type Grid struct {
	RowKey dataset.Dimension `json:"row_key"`
	ColKey dataset.Dimension `json:"col_key"`
	Rows   []string          `json:"rows"`
	Cols   []string          `json:"cols"`
	// Cells is indexed [row][col]
	Cells [][]float64 `json:"cells"`
}

// Cell returns the value at the given row and column labels
func (g Grid) Cell(row, col string) (float64, bool) {
	r := indexOf(g.Rows, row)
	c := indexOf(g.Cols, col)

	if r < 0 || c < 0 {
		return 0, false
	}

	return g.Cells[r][c], true
}

// Pivot sums metric into a rowKey by colKey grid
func Pivot(t *dataset.Table, rowKey, colKey dataset.Dimension, metric dataset.Metric) (Grid, error) {
	sums, err := SumBy(t, metric, rowKey, colKey)
	if err != nil {
		return Grid{}, err
	}

	grid := Grid{
		RowKey: rowKey,
		ColKey: colKey,
		Rows:   t.Distinct(rowKey),
		Cols:   t.Distinct(colKey),
	}

	grid.Cells = make([][]float64, len(grid.Rows))
	for r := range grid.Cells {
		grid.Cells[r] = make([]float64, len(grid.Cols))
	}

	for _, s := range sums {
		r := indexOf(grid.Rows, s.Keys[0])
		c := indexOf(grid.Cols, s.Keys[1])

		if r >= 0 && c >= 0 {
			grid.Cells[r][c] = s.Value
		}
	}

	return grid, nil
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}

	return -1
}
