// Package dataset loads the transactions extract once and derives its computed columns
package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceRequired is returned when no dataset source is configured
	ErrSourceRequired = errors.New("dataset source is required")
	// ErrUnsupportedEncoding is returned when the configured text encoding is unknown
	ErrUnsupportedEncoding = errors.New("unsupported dataset encoding")
)

// DefaultDateLayouts are tried in order when parsing order and ship dates
//
//nolint:gochecknoglobals // Read-only defaults
var DefaultDateLayouts = []string{
	"1/2/2006",
	"2006-01-02",
	"01/02/2006",
	"2006-01-02 15:04:05",
}

// Config holds dataset loading configuration
type Config struct {
	// Source is a local file path or a gs://bucket/object URI
	Source string `yaml:"source" default:"final_data_superstore.csv"`
	// Encoding is the text encoding of the source file
	Encoding string `yaml:"encoding" default:"ISO-8859-1"`
	// DateLayouts are Go time layouts tried in order
	DateLayouts []string `yaml:"dateLayouts,omitempty"`
}

// Validate checks the configuration and fills in default date layouts
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return ErrSourceRequired
	}

	if _, err := decoderFor(c.Encoding); err != nil {
		return fmt.Errorf("invalid dataset configuration: %w", err)
	}

	if len(c.DateLayouts) == 0 {
		c.DateLayouts = append([]string(nil), DefaultDateLayouts...)
	}

	return nil
}
