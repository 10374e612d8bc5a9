package dataset

import (
	"slices"
	"strconv"
)

// Table is an immutable, enriched set of transactions.
// Views created by Where share the underlying rows and never copy them.
type Table struct {
	rows     []Transaction
	index    []int
	warnings []Warning
	unmapped []string
}

func newTable(rows []Transaction, warnings []Warning, unmapped []string) *Table {
	return &Table{rows: rows, warnings: warnings, unmapped: unmapped}
}

// Len returns the number of rows in the view
func (t *Table) Len() int {
	if t.index == nil {
		return len(t.rows)
	}

	return len(t.index)
}

// Row returns the i-th row of the view. The row must be treated as read-only.
func (t *Table) Row(i int) *Transaction {
	if t.index == nil {
		return &t.rows[i]
	}

	return &t.rows[t.index[i]]
}

// Where returns a view holding the rows that satisfy pred, in the original order
func (t *Table) Where(pred func(*Transaction) bool) *Table {
	index := make([]int, 0, t.Len())

	for i := 0; i < t.Len(); i++ {
		pos := i
		if t.index != nil {
			pos = t.index[i]
		}

		if pred(&t.rows[pos]) {
			index = append(index, pos)
		}
	}

	return &Table{rows: t.rows, index: index, warnings: t.warnings, unmapped: t.unmapped}
}

// Distinct returns the distinct values of a dimension in the view, ordered by the dimension
func (t *Table) Distinct(d Dimension) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)

	for i := 0; i < t.Len(); i++ {
		v := d.Value(t.Row(i))
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	slices.SortFunc(out, d.Compare)

	return out
}

// Regions returns the distinct regions, sorted
func (t *Table) Regions() []string {
	return t.Distinct(DimRegion)
}

// Categories returns the distinct categories, sorted
func (t *Table) Categories() []string {
	return t.Distinct(DimCategory)
}

// Segments returns the distinct segments, sorted
func (t *Table) Segments() []string {
	return t.Distinct(DimSegment)
}

// Years returns the distinct order years in ascending order
func (t *Table) Years() []int {
	values := t.Distinct(DimOrderYear)
	years := make([]int, 0, len(values))

	for _, v := range values {
		y, err := strconv.Atoi(v)
		if err != nil {
			continue
		}

		years = append(years, y)
	}

	return years
}

// Warnings returns the derivation warnings collected at load time
func (t *Table) Warnings() []Warning {
	return slices.Clone(t.warnings)
}

// UnmappedStates returns the distinct state names without a postal code, sorted
func (t *Table) UnmappedStates() []string {
	return slices.Clone(t.unmapped)
}
