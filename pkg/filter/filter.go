// Package filter composes region, year, category and segment selections over a dataset table
package filter

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/salesdash/salesdash/pkg/dataset"
)

// Selection holds the allowed values for each filter dimension.
// An empty set for any dimension selects no rows.
type Selection struct {
	Regions    []string `json:"regions"`
	Years      []int    `json:"years"`
	Categories []string `json:"categories"`
	Segments   []string `json:"segments"`
}

// Defaults selects every distinct value present in the table
func Defaults(t *dataset.Table) Selection {
	return Selection{
		Regions:    t.Regions(),
		Years:      t.Years(),
		Categories: t.Categories(),
		Segments:   t.Segments(),
	}
}

// Apply returns the rows whose region, order year, category and segment are all selected
func Apply(t *dataset.Table, sel Selection) *dataset.Table {
	regions := toSet(sel.Regions)
	years := toSet(sel.Years)
	categories := toSet(sel.Categories)
	segments := toSet(sel.Segments)

	return t.Where(func(tx *dataset.Transaction) bool {
		_, r := regions[tx.Region]
		_, y := years[tx.OrderYear]
		_, c := categories[tx.Category]
		_, s := segments[tx.Segment]

		return r && y && c && s
	})
}

// PreviousYear returns the comparison year for the selection.
// It is only defined when exactly one year is selected and the full table
// holds a strictly earlier year.
func PreviousYear(t *dataset.Table, sel Selection) (int, bool) {
	if len(sel.Years) != 1 {
		return 0, false
	}

	selected := sel.Years[0]

	years := t.Years()
	if len(years) == 0 || years[0] >= selected {
		return 0, false
	}

	return selected - 1, true
}

// ComparisonPeriod applies the same region, category and segment filters to the
// year before the selected one. It returns an empty view when no comparison is defined.
func ComparisonPeriod(t *dataset.Table, sel Selection) *dataset.Table {
	prev, ok := PreviousYear(t, sel)
	if !ok {
		return t.Where(func(*dataset.Transaction) bool { return false })
	}

	previous := sel
	previous.Years = []int{prev}

	return Apply(t, previous)
}

// Normalize returns a copy with every set sorted and deduplicated
func (s Selection) Normalize() Selection {
	return Selection{
		Regions:    sortedUnique(s.Regions),
		Years:      sortedUnique(s.Years),
		Categories: sortedUnique(s.Categories),
		Segments:   sortedUnique(s.Segments),
	}
}

// Key returns a canonical representation used in cache keys and task IDs.
// Selections that differ only in value order produce the same key.
func (s Selection) Key() string {
	n := s.Normalize()

	years := make([]string, 0, len(n.Years))
	for _, y := range n.Years {
		years = append(years, strconv.Itoa(y))
	}

	parts := []string{
		"r=" + joinEscaped(n.Regions),
		"y=" + strings.Join(years, ","),
		"c=" + joinEscaped(n.Categories),
		"s=" + joinEscaped(n.Segments),
	}

	return strings.Join(parts, "|")
}

// Empty reports whether any dimension selects nothing
func (s Selection) Empty() bool {
	return len(s.Regions) == 0 || len(s.Years) == 0 || len(s.Categories) == 0 || len(s.Segments) == 0
}

func joinEscaped(values []string) string {
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		escaped = append(escaped, url.QueryEscape(v))
	}

	return strings.Join(escaped, ",")
}

func toSet[T comparable](values []T) map[T]struct{} {
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}

	return set
}

func sortedUnique[T string | int](values []T) []T {
	out := slices.Clone(values)
	if out == nil {
		out = []T{}
	}

	slices.Sort(out)

	return slices.Compact(out)
}
