package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/salesdash/salesdash/pkg/observability"
)

const ctxCheckInterval = 1024

// Loader loads and enriches the dataset exactly once.
// Concurrent callers of Load block until the first load finishes and then share its result.
type Loader struct {
	log    logrus.FieldLogger
	cfg    *Config
	source Source

	once        sync.Once
	table       *Table
	err         error
	enrichments atomic.Int64
}

// NewLoader creates a loader reading from source
func NewLoader(log logrus.FieldLogger, cfg *Config, source Source) *Loader {
	return &Loader{
		log:    log.WithField("component", "dataset"),
		cfg:    cfg,
		source: source,
	}
}

// Load returns the enriched table, computing it on first use
func (l *Loader) Load(ctx context.Context) (*Table, error) {
	l.once.Do(func() {
		l.table, l.err = l.load(ctx)
	})

	return l.table, l.err
}

// Enrichments returns how many times the enrichment pipeline has run
func (l *Loader) Enrichments() int64 {
	return l.enrichments.Load()
}

func (l *Loader) load(ctx context.Context) (*Table, error) {
	start := time.Now()
	l.enrichments.Add(1)
	observability.RecordEnrichment()

	l.log.WithField("source", l.source.String()).Info("Loading dataset")

	table, err := l.read(ctx)
	if err != nil {
		observability.RecordDatasetLoad("failed", 0, time.Since(start).Seconds())
		observability.RecordError("dataset", "load")

		return nil, err
	}

	observability.RecordDatasetLoad("success", table.Len(), time.Since(start).Seconds())
	observability.RecordUnmappedStates(len(table.unmapped))

	l.log.WithFields(logrus.Fields{
		"rows":     table.Len(),
		"warnings": len(table.warnings),
		"duration": time.Since(start),
	}).Info("Dataset loaded")

	return table, nil
}

func (l *Loader) read(ctx context.Context) (*Table, error) {
	rc, err := l.source.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}
	defer rc.Close()

	return Parse(ctx, l.log, l.cfg, rc)
}

// Parse decodes a CSV stream into an enriched table.
// Every failure is wrapped in ErrDataLoad.
func Parse(ctx context.Context, log logrus.FieldLogger, cfg *Config, r io.Reader) (*Table, error) {
	table, err := parse(ctx, log, cfg, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}

	return table, nil
}

func parse(ctx context.Context, log logrus.FieldLogger, cfg *Config, r io.Reader) (*Table, error) {
	plan, err := NewPlan()
	if err != nil {
		return nil, err
	}

	decoded, err := decodingReader(r, cfg.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyHeader
	}

	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns, err := indexHeader(header, plan.RequiredColumns())
	if err != nil {
		return nil, err
	}

	layouts := cfg.DateLayouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}

	p := &rowParser{columns: columns, layouts: layouts}

	rows := make([]Transaction, 0)
	warnings := make([]Warning, 0)

	for ordinal := 0; ; ordinal++ {
		if ordinal%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", ordinal, err)
		}

		t, rowWarnings, err := p.parse(ordinal, record)
		if err != nil {
			return nil, err
		}

		rowWarnings = append(rowWarnings, plan.apply(&t)...)
		warnings = append(warnings, rowWarnings...)
		rows = append(rows, t)
	}

	unmapped := reportWarnings(log, warnings)

	return newTable(rows, warnings, unmapped), nil
}

// reportWarnings logs every unmapped state name once and a summary per kind
func reportWarnings(log logrus.FieldLogger, warnings []Warning) []string {
	counts := make(map[WarningKind]int)
	unmappedSeen := make(map[string]struct{})
	unmapped := make([]string, 0)

	for _, w := range warnings {
		counts[w.Kind]++
		observability.RecordDatasetWarning(string(w.Kind))

		if w.Kind != WarningUnmappedState {
			continue
		}

		if _, ok := unmappedSeen[w.Value]; ok {
			continue
		}

		unmappedSeen[w.Value] = struct{}{}

		if w.Value != "" {
			unmapped = append(unmapped, w.Value)
		}

		log.WithFields(logrus.Fields{
			"state": w.Value,
			"row":   w.Row,
		}).Warn("State has no postal code")
	}

	for kind, n := range counts {
		log.WithFields(logrus.Fields{
			"kind":  kind,
			"count": n,
		}).Warn("Derivation warnings")
	}

	sort.Strings(unmapped)

	return unmapped
}

func indexHeader(header []string, required []Column) (map[Column]int, error) {
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, ErrEmptyHeader
	}

	columns := make(map[Column]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, exists := columns[Column(name)]; !exists {
			columns[Column(name)] = i
		}
	}

	missing := make([]string, 0)
	for _, c := range required {
		if _, ok := columns[c]; !ok {
			missing = append(missing, string(c))
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return columns, nil
}

type rowParser struct {
	columns map[Column]int
	layouts []string
}

func (p *rowParser) cell(record []string, c Column) string {
	i, ok := p.columns[c]
	if !ok || i >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[i])
}

func (p *rowParser) parse(ordinal int, record []string) (Transaction, []Warning, error) {
	var (
		t        = Transaction{Ordinal: ordinal}
		warnings []Warning
		err      error
	)

	t.OrderID = p.cell(record, ColumnOrderID)
	t.CustomerName = p.cell(record, ColumnCustomerName)
	t.Region = p.cell(record, ColumnRegion)
	t.State = p.cell(record, ColumnState)
	t.Category = p.cell(record, ColumnCategory)
	t.SubCategory = p.cell(record, ColumnSubCategory)
	t.ProductName = p.cell(record, ColumnProductName)
	t.Segment = p.cell(record, ColumnSegment)

	if t.OrderDate, err = p.date(ordinal, record, ColumnOrderDate); err != nil {
		return t, nil, err
	}

	if t.ShipDate, err = p.date(ordinal, record, ColumnShipDate); err != nil {
		return t, nil, err
	}

	for _, field := range []struct {
		column Column
		dest   *float64
	}{
		{ColumnSales, &t.Sales},
		{ColumnDiscount, &t.Discount},
		{ColumnProfit, &t.Profit},
	} {
		v, null, err := p.decimal(ordinal, record, field.column)
		if err != nil {
			return t, nil, err
		}

		if null {
			warnings = append(warnings, Warning{Kind: WarningNullMetric, Row: ordinal, Column: field.column})
		}

		*field.dest = v
	}

	raw := p.cell(record, ColumnQuantity)
	if raw == "" {
		t.quantityNull = true
		warnings = append(warnings, Warning{Kind: WarningNullMetric, Row: ordinal, Column: ColumnQuantity})
	} else {
		q, err := strconv.Atoi(raw)
		if err != nil || q <= 0 {
			return t, nil, malformed(ordinal, ColumnQuantity, raw)
		}

		t.Quantity = q
	}

	return t, warnings, nil
}

// decimal parses a currency or fraction cell; empty cells are null and returned as NaN
func (p *rowParser) decimal(ordinal int, record []string, c Column) (float64, bool, error) {
	raw := p.cell(record, c)
	if raw == "" {
		return math.NaN(), true, nil
	}

	cleaned := strings.ReplaceAll(strings.TrimPrefix(raw, "$"), ",", "")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false, malformed(ordinal, c, raw)
	}

	return d.InexactFloat64(), false, nil
}

func (p *rowParser) date(ordinal int, record []string, c Column) (time.Time, error) {
	raw := p.cell(record, c)

	for _, layout := range p.layouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, malformed(ordinal, c, raw)
}

func malformed(ordinal int, c Column, raw string) error {
	return fmt.Errorf("%w: row %d column %q value %q", ErrMalformedValue, ordinal, c, raw)
}
