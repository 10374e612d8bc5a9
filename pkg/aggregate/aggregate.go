// Package aggregate provides total, deterministic aggregations over dataset tables.
// Every operation returns an empty or zero result for empty input instead of failing.
package aggregate

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/salesdash/salesdash/pkg/dataset"
)

var (
	// ErrInvalidSpec is returned when an aggregation spec cannot be run
	ErrInvalidSpec = errors.New("invalid aggregation spec")
)

// Kind is the aggregation applied within a group
type Kind string

// Aggregation kinds
const (
	KindSum  Kind = "sum"
	KindMean Kind = "mean"
)

// Direction orders groups by value
type Direction string

// Directions. DirectionNone keeps key order.
const (
	DirectionNone Direction = ""
	DirectionMax  Direction = "max"
	DirectionMin  Direction = "min"
)

const maxGroupKeys = 2

const keySeparator = "\x1f"

// Spec describes one group-aggregate-sort-limit pass
type Spec struct {
	GroupBy   []dataset.Dimension `json:"group_by"`
	Metric    dataset.Metric      `json:"metric"`
	Kind      Kind                `json:"kind"`
	Direction Direction           `json:"direction,omitempty"`
	// Limit keeps the first n rows after sorting; zero keeps all
	Limit int `json:"limit,omitempty"`
}

// Validate checks that the spec can be run
func (s Spec) Validate() error {
	if len(s.GroupBy) == 0 || len(s.GroupBy) > maxGroupKeys {
		return fmt.Errorf("%w: expected 1 or %d group keys, got %d", ErrInvalidSpec, maxGroupKeys, len(s.GroupBy))
	}

	for _, d := range s.GroupBy {
		if !d.Valid() {
			return fmt.Errorf("%w: unknown dimension %q", ErrInvalidSpec, d)
		}
	}

	if s.Metric.Column() == "" {
		return fmt.Errorf("%w: unknown metric %q", ErrInvalidSpec, s.Metric)
	}

	switch s.Kind {
	case KindSum, KindMean:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSpec, s.Kind)
	}

	switch s.Direction {
	case DirectionNone, DirectionMax, DirectionMin:
	default:
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidSpec, s.Direction)
	}

	if s.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidSpec, s.Limit)
	}

	return nil
}

// Row is one aggregated group
type Row struct {
	Keys  []string `json:"keys"`
	Value float64  `json:"value"`
	// Count is the number of non-null values aggregated into the group
	Count int `json:"count"`
}

// Label joins the group keys for display
func (r Row) Label() string {
	return strings.Join(r.Keys, " / ")
}

// Rows is an ordered aggregation result
type Rows []Row

// Labels returns the display label of every row
func (rs Rows) Labels() []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Label())
	}

	return out
}

// Values returns the value of every row
func (rs Rows) Values() []float64 {
	out := make([]float64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Value)
	}

	return out
}

// Lookup finds the value for the given keys
func (rs Rows) Lookup(keys ...string) (float64, bool) {
	for _, r := range rs {
		if slices.Equal(r.Keys, keys) {
			return r.Value, true
		}
	}

	return 0, false
}

type group struct {
	keys  []string
	sum   float64
	count int
}

// Run groups the table by spec.GroupBy, aggregates spec.Metric and sorts the groups.
// Null metric values count as zero in sums and are skipped by means; groups
// without any non-null value are dropped from means.
func Run(t *dataset.Table, spec Spec) (Rows, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	groups := make(map[string]*group)

	for i := 0; i < t.Len(); i++ {
		tx := t.Row(i)

		keys := make([]string, len(spec.GroupBy))
		for k, d := range spec.GroupBy {
			keys[k] = d.Value(tx)
		}

		id := strings.Join(keys, keySeparator)

		g, ok := groups[id]
		if !ok {
			g = &group{keys: keys}
			groups[id] = g
		}

		if v, ok := spec.Metric.Value(tx); ok {
			g.sum += v
			g.count++
		}
	}

	rows := make(Rows, 0, len(groups))

	for _, g := range groups {
		row := Row{Keys: g.keys, Value: g.sum, Count: g.count}

		if spec.Kind == KindMean {
			if g.count == 0 {
				continue
			}

			row.Value = g.sum / float64(g.count)
		}

		rows = append(rows, row)
	}

	sortRows(rows, spec.GroupBy, spec.Direction)

	if spec.Limit > 0 && len(rows) > spec.Limit {
		rows = rows[:spec.Limit]
	}

	return rows, nil
}

func sortRows(rows Rows, dims []dataset.Dimension, dir Direction) {
	byKey := func(a, b Row) int {
		for k, d := range dims {
			if c := d.Compare(a.Keys[k], b.Keys[k]); c != 0 {
				return c
			}
		}

		return 0
	}

	slices.SortFunc(rows, func(a, b Row) int {
		switch dir {
		case DirectionMax:
			if a.Value != b.Value {
				if a.Value > b.Value {
					return -1
				}

				return 1
			}
		case DirectionMin:
			if a.Value != b.Value {
				if a.Value < b.Value {
					return -1
				}

				return 1
			}
		}

		return byKey(a, b)
	})
}

// SumBy sums metric grouped by one or two keys, in key order
func SumBy(t *dataset.Table, metric dataset.Metric, keys ...dataset.Dimension) (Rows, error) {
	return Run(t, Spec{GroupBy: keys, Metric: metric, Kind: KindSum})
}

// MeanBy averages metric grouped by key, in key order
func MeanBy(t *dataset.Table, key dataset.Dimension, metric dataset.Metric) (Rows, error) {
	return Run(t, Spec{GroupBy: []dataset.Dimension{key}, Metric: metric, Kind: KindMean})
}

// TopN sums metric by key and keeps the n largest (max) or smallest (min) groups.
// Ties are broken by key order.
func TopN(t *dataset.Table, key dataset.Dimension, metric dataset.Metric, n int, dir Direction) (Rows, error) {
	if dir == DirectionNone {
		return nil, fmt.Errorf("%w: top-n needs a direction", ErrInvalidSpec)
	}

	if n <= 0 {
		return Rows{}, nil
	}

	return Run(t, Spec{GroupBy: []dataset.Dimension{key}, Metric: metric, Kind: KindSum, Direction: dir, Limit: n})
}
