package dataset

import (
	"fmt"
	"math"

	"github.com/salesdash/salesdash/pkg/dependencies"
	"github.com/salesdash/salesdash/pkg/statecodes"
)

const hoursPerDay = 24

// derivation computes one derived column from its inputs
type derivation struct {
	output Column
	inputs []Column
	apply  func(t *Transaction) *Warning
}

func derivations() []derivation {
	return []derivation{
		{
			output: ColumnProfitMargin,
			inputs: []Column{ColumnProfit, ColumnSales},
			apply: func(t *Transaction) *Warning {
				if math.IsNaN(t.Sales) || math.IsNaN(t.Profit) || t.Sales == 0 {
					t.ProfitMargin = math.NaN()
					if t.Sales == 0 {
						return &Warning{Kind: WarningZeroSales, Row: t.Ordinal, Column: ColumnProfitMargin}
					}

					return nil
				}

				t.ProfitMargin = t.Profit / t.Sales

				return nil
			},
		},
		{
			output: ColumnProfitPerUnit,
			inputs: []Column{ColumnProfit, ColumnQuantity},
			apply: func(t *Transaction) *Warning {
				if t.quantityNull || t.Quantity == 0 || math.IsNaN(t.Profit) {
					t.ProfitPerUnit = math.NaN()

					return nil
				}

				t.ProfitPerUnit = t.Profit / float64(t.Quantity)

				return nil
			},
		},
		{
			output: ColumnDiscounted,
			inputs: []Column{ColumnDiscount},
			apply: func(t *Transaction) *Warning {
				t.Discounted = t.Discount > 0

				return nil
			},
		},
		{
			output: ColumnDiscountLevel,
			inputs: []Column{ColumnDiscount},
			apply: func(t *Transaction) *Warning {
				t.DiscountLevel = BucketDiscount(t.Discount)

				return nil
			},
		},
		{
			output: ColumnOrderMonth,
			inputs: []Column{ColumnOrderDate},
			apply: func(t *Transaction) *Warning {
				t.OrderMonth = t.OrderDate.Month()

				return nil
			},
		},
		{
			output: ColumnOrderDay,
			inputs: []Column{ColumnOrderDate},
			apply: func(t *Transaction) *Warning {
				t.OrderDay = t.OrderDate.Day()

				return nil
			},
		},
		{
			output: ColumnOrderYear,
			inputs: []Column{ColumnOrderDate},
			apply: func(t *Transaction) *Warning {
				t.OrderYear = t.OrderDate.Year()

				return nil
			},
		},
		{
			output: ColumnShipDays,
			inputs: []Column{ColumnOrderDate, ColumnShipDate},
			apply: func(t *Transaction) *Warning {
				t.ShipDays = int(t.ShipDate.Sub(t.OrderDate).Hours() / hoursPerDay)

				return nil
			},
		},
		{
			output: ColumnStateCode,
			inputs: []Column{ColumnState},
			apply: func(t *Transaction) *Warning {
				code, ok := statecodes.Lookup(t.State)
				if !ok {
					t.StateCode = ""

					return &Warning{Kind: WarningUnmappedState, Row: t.Ordinal, Column: ColumnState, Value: t.State}
				}

				t.StateCode = code

				return nil
			},
		},
	}
}

// Plan is the validated, ordered set of derivations applied to every row
type Plan struct {
	graph   *dependencies.DependencyGraph
	ordered []derivation
}

// NewPlan builds the derivation graph over the source columns
func NewPlan() (*Plan, error) {
	return newPlan(derivations())
}

func newPlan(derived []derivation) (*Plan, error) {
	nodes := make([]dependencies.Node, 0, len(SourceColumns)+len(derived))
	for _, c := range SourceColumns {
		nodes = append(nodes, dependencies.Node{ID: string(c)})
	}

	byOutput := make(map[string]derivation, len(derived))
	for _, d := range derived {
		deps := make([]string, 0, len(d.inputs))
		for _, in := range d.inputs {
			deps = append(deps, string(in))
		}

		nodes = append(nodes, dependencies.Node{ID: string(d.output), Dependencies: deps})
		byOutput[string(d.output)] = d
	}

	graph := dependencies.NewDependencyGraph()
	if err := graph.BuildGraph(nodes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownColumn, err)
	}

	ordered := make([]derivation, 0, len(derived))
	for _, id := range graph.TopologicalOrder() {
		if d, ok := byOutput[id]; ok {
			ordered = append(ordered, d)
		}
	}

	return &Plan{graph: graph, ordered: ordered}, nil
}

// RequiredColumns returns the source columns the header must contain:
// the base columns plus every source ancestor of a derived column.
func (p *Plan) RequiredColumns() []Column {
	seen := make(map[Column]bool, len(SourceColumns))
	required := make([]Column, 0, len(SourceColumns))

	add := func(c Column) {
		if !seen[c] {
			seen[c] = true
			required = append(required, c)
		}
	}

	for _, c := range SourceColumns {
		add(c)
	}

	for _, d := range p.ordered {
		for _, id := range p.graph.GetAllDependencies(string(d.output)) {
			if isSourceColumn(Column(id)) {
				add(Column(id))
			}
		}
	}

	return required
}

// Order returns the derived columns in evaluation order
func (p *Plan) Order() []Column {
	out := make([]Column, 0, len(p.ordered))
	for _, d := range p.ordered {
		out = append(out, d.output)
	}

	return out
}

// SourcesFor returns the source columns a derived column is computed from
func (p *Plan) SourcesFor(c Column) []Column {
	out := make([]Column, 0)
	for _, id := range p.graph.GetAllDependencies(string(c)) {
		if isSourceColumn(Column(id)) {
			out = append(out, Column(id))
		}
	}

	return out
}

// apply runs every derivation on the row and returns the warnings raised
func (p *Plan) apply(t *Transaction) []Warning {
	var warnings []Warning

	for _, d := range p.ordered {
		if w := d.apply(t); w != nil {
			warnings = append(warnings, *w)
		}
	}

	return warnings
}

func isSourceColumn(c Column) bool {
	for _, s := range SourceColumns {
		if s == c {
			return true
		}
	}

	return false
}

// Graph returns the column dependency graph behind the plan
func (p *Plan) Graph() *dependencies.DependencyGraph {
	return p.graph
}
