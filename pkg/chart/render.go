// Package chart draws report charts as PNG images
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/salesdash/salesdash/pkg/observability"
	"github.com/salesdash/salesdash/pkg/report"
)

var (
	// ErrUnsupportedKind is returned for chart kinds that have no PNG renderer
	ErrUnsupportedKind = errors.New("chart kind cannot be rendered to PNG")
	// ErrUnrenderable is returned when a chart's data cannot be drawn
	ErrUnrenderable = errors.New("chart data cannot be rendered")
)

const (
	// DefaultWidth of rendered images in pixels
	DefaultWidth = 1024
	// DefaultHeight of rendered images in pixels
	DefaultHeight = 512

	maxLabelRunes = 24
)

// Options control the image size
type Options struct {
	Width  int
	Height int
}

// Supported reports whether a chart kind has a PNG renderer
func Supported(kind report.ChartKind) bool {
	switch kind {
	case report.KindBar, report.KindGroupedBar, report.KindLine, report.KindPie, report.KindHistogram:
		return true
	default:
		return false
	}
}

// Render draws c as a PNG at the default size
func Render(c *report.Chart, w io.Writer) error {
	return RenderWithOptions(c, w, Options{})
}

// RenderWithOptions draws c as a PNG
func RenderWithOptions(c *report.Chart, w io.Writer, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}

	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	err := render(c, w, opts)

	status := "success"
	if err != nil {
		status = "failed"
	}

	observability.RecordChart(string(c.Kind), status)

	return err
}

func render(c *report.Chart, w io.Writer, opts Options) error {
	if !Supported(c.Kind) {
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, c.Kind)
	}

	if c.Empty() {
		return fmt.Errorf("%w: %s has no data", ErrUnrenderable, c.ID)
	}

	switch c.Kind {
	case report.KindBar, report.KindGroupedBar:
		return renderBars(c, w, opts)
	case report.KindLine:
		return renderLine(c, w, opts)
	case report.KindPie:
		return renderPie(c, w, opts)
	case report.KindHistogram:
		return renderHistogram(c, w, opts)
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedKind, c.Kind)
}

// renderBars draws one bar per label and series. Grouped charts place the
// bars of each label next to each other, colored by series.
func renderBars(c *report.Chart, w io.Writer, opts Options) error {
	bars := make([]gochart.Value, 0, len(c.Labels)*len(c.Series))

	for i, label := range c.Labels {
		for s, series := range c.Series {
			name := truncate(label)
			if len(c.Series) > 1 {
				name = truncate(label) + " " + series.Name
			}

			color := gochart.GetDefaultColor(s)

			bars = append(bars, gochart.Value{
				Label: name,
				Value: series.Values[i],
				Style: gochart.Style{FillColor: color, StrokeColor: color},
			})
		}
	}

	return drawBars(c.Title, bars, c.YLabel, w, opts)
}

func renderHistogram(c *report.Chart, w io.Writer, opts Options) error {
	bars := make([]gochart.Value, 0, len(c.Bins))
	for _, bin := range c.Bins {
		bars = append(bars, gochart.Value{
			Label: fmt.Sprintf("%.2f", bin.Lower),
			Value: float64(bin.Count),
		})
	}

	return drawBars(c.Title, bars, c.YLabel, w, opts)
}

func drawBars(title string, bars []gochart.Value, yLabel string, w io.Writer, opts Options) error {
	values := make([]float64, 0, len(bars))
	for _, b := range bars {
		values = append(values, b.Value)
	}

	lo, hi := valueRange(values, true)

	barWidth := opts.Width / (len(bars) * 2)
	if barWidth < 4 {
		barWidth = 4
	}

	graph := gochart.BarChart{
		Title:        title,
		Width:        opts.Width,
		Height:       opts.Height,
		BarWidth:     barWidth,
		UseBaseValue: true,
		BaseValue:    0,
		Background:   gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: gochart.YAxis{
			Name:  yLabel,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("%w: %w", ErrUnrenderable, err)
	}

	return nil
}

// renderLine plots every series against evenly spaced label positions
func renderLine(c *report.Chart, w io.Writer, opts Options) error {
	n := len(c.Labels)

	xs := make([]float64, n)
	ticks := make([]gochart.Tick, 0, n+1)

	for i, label := range c.Labels {
		xs[i] = float64(i + 1)
		ticks = append(ticks, gochart.Tick{Value: xs[i], Label: truncate(label)})
	}

	// A single point still needs an x range with non-zero width
	maxX := float64(n) + 0.5
	if n == 1 {
		maxX = 2
		ticks = append(ticks, gochart.Tick{Value: 2, Label: ""})
	}

	all := make([]float64, 0, n*len(c.Series))
	series := make([]gochart.Series, 0, len(c.Series))

	for s, values := range c.Series {
		color := gochart.GetDefaultColor(s)

		all = append(all, values.Values...)
		series = append(series, gochart.ContinuousSeries{
			Name:    values.Name,
			XValues: xs,
			YValues: values.Values,
			Style:   gochart.Style{StrokeColor: color, StrokeWidth: 2, DotColor: color, DotWidth: 3},
		})
	}

	lo, hi := valueRange(all, false)

	graph := gochart.Chart{
		Title:      c.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  c.XLabel,
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: 0.5, Max: maxX},
		},
		YAxis: gochart.YAxis{
			Name:  c.YLabel,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}

	if len(series) > 1 {
		graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("%w: %w", ErrUnrenderable, err)
	}

	return nil
}

// renderPie draws the first series. Slices must be positive.
func renderPie(c *report.Chart, w io.Writer, opts Options) error {
	if len(c.Series) == 0 {
		return fmt.Errorf("%w: %s has no series", ErrUnrenderable, c.ID)
	}

	values := make([]gochart.Value, 0, len(c.Labels))

	for i, label := range c.Labels {
		v := c.Series[0].Values[i]
		if v <= 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: pie slice %q is not positive", ErrUnrenderable, label)
		}

		values = append(values, gochart.Value{Label: truncate(label), Value: v})
	}

	graph := gochart.PieChart{
		Title:  c.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Values: values,
	}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("%w: %w", ErrUnrenderable, err)
	}

	return nil
}

// valueRange returns a y range covering values, optionally including zero,
// padded so it never has zero width
func valueRange(values []float64, withZero bool) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)

	if withZero {
		lo, hi = 0, 0
	}

	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}

		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0, 1
	}

	if lo == hi {
		return lo - 1, hi + 1
	}

	pad := (hi - lo) * 0.05

	if withZero && lo == 0 {
		return 0, hi + pad
	}

	return lo - pad, hi + pad
}

func truncate(label string) string {
	runes := []rune(label)
	if len(runes) <= maxLabelRunes {
		return label
	}

	return string(runes[:maxLabelRunes-1]) + "…"
}
