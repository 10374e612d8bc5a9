package aggregate

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/salesdash/salesdash/pkg/dataset"
)

// Bin is one histogram bucket covering [Lower, Upper)
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram counts non-null metric values into equal-width bins over [min, max].
// The last bin includes max. When every value is equal a single bin is returned.
func Histogram(t *dataset.Table, metric dataset.Metric, bins int) []Bin {
	values := make([]float64, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if v, ok := metric.Value(t.Row(i)); ok {
			values = append(values, v)
		}
	}

	if len(values) == 0 || bins <= 0 {
		return []Bin{}
	}

	lo, hi := slices.Min(values), slices.Max(values)
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(bins)

	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}

	out[bins-1].Upper = hi

	for _, v := range values {
		i := int(math.Floor((v - lo) / width))
		if i >= bins {
			i = bins - 1
		}

		out[i].Count++
	}

	return out
}

// Line is a fitted y = Intercept + Slope*x
type Line struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// At evaluates the line
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// Trendline fits an ordinary least squares line.
// It is unavailable for fewer than two points or when every x is equal.
func Trendline(xs, ys []float64) (Line, bool) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return Line{}, false
	}

	if slices.Min(xs) == slices.Max(xs) {
		return Line{}, false
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return Line{}, false
	}

	return Line{Intercept: alpha, Slope: beta}, true
}

// Point is one scatter observation
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScatterSeries holds the points of one colour group and its trendline
type ScatterSeries struct {
	Group  string  `json:"group"`
	Points []Point `json:"points"`
	Trend  *Line   `json:"trend"`
}

// Scatter pairs two metrics per row, grouped by colorBy. Rows with a null
// value on either axis are skipped.
func Scatter(t *dataset.Table, x, y dataset.Metric, colorBy dataset.Dimension) []ScatterSeries {
	byGroup := make(map[string]*ScatterSeries)

	for i := 0; i < t.Len(); i++ {
		tx := t.Row(i)

		xv, okX := x.Value(tx)
		yv, okY := y.Value(tx)

		if !okX || !okY {
			continue
		}

		g := colorBy.Value(tx)

		s, ok := byGroup[g]
		if !ok {
			s = &ScatterSeries{Group: g}
			byGroup[g] = s
		}

		s.Points = append(s.Points, Point{X: xv, Y: yv})
	}

	out := make([]ScatterSeries, 0, len(byGroup))

	for _, s := range byGroup {
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))

		for i, p := range s.Points {
			xs[i], ys[i] = p.X, p.Y
		}

		if line, ok := Trendline(xs, ys); ok {
			s.Trend = &line
		}

		out = append(out, *s)
	}

	slices.SortFunc(out, func(a, b ScatterSeries) int {
		return colorBy.Compare(a.Group, b.Group)
	})

	return out
}
