package dataset

import "errors"

var (
	// ErrDataLoad is the fatal error kind for any failure to load the dataset.
	// Every load failure wraps it so callers can match with errors.Is.
	ErrDataLoad = errors.New("failed to load dataset")
	// ErrMissingColumns is returned when required columns are absent from the header
	ErrMissingColumns = errors.New("missing required columns")
	// ErrMalformedValue is returned when a cell cannot be parsed
	ErrMalformedValue = errors.New("malformed value")
	// ErrEmptyHeader is returned when the source has no header row
	ErrEmptyHeader = errors.New("dataset has no header row")
	// ErrUnknownColumn is returned when a derivation references an undeclared column
	ErrUnknownColumn = errors.New("derivation references unknown column")
)

// WarningKind classifies non-fatal derivation problems
type WarningKind string

const (
	// WarningUnmappedState means the state name has no postal code
	WarningUnmappedState WarningKind = "unmapped_state"
	// WarningZeroSales means the profit margin is undefined for the row
	WarningZeroSales WarningKind = "zero_sales"
	// WarningNullMetric means a numeric cell was empty
	WarningNullMetric WarningKind = "null_metric"
)

// Warning is a non-fatal problem found while deriving a row.
// Warnings are resolved by the null and zero-fill policies and never interrupt a load.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Row    int         `json:"row"`
	Column Column      `json:"column"`
	Value  string      `json:"value,omitempty"`
}
