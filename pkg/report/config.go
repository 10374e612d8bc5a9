package report

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCacheTTL is returned for a negative cache TTL
	ErrInvalidCacheTTL = errors.New("cache TTL must not be negative")
)

// Config holds report service configuration
type Config struct {
	// CacheTTL is how long computed sections stay cached; zero disables expiry
	CacheTTL time.Duration `yaml:"cacheTTL" default:"1h"`
	// Locales are the locales warmed by the scheduler
	Locales []string `yaml:"locales"`
	// DefaultMetric is the time series metric used when a request names none
	DefaultMetric string `yaml:"defaultMetric" default:"sales"`
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}

	if len(c.Locales) == 0 {
		for _, l := range Locales() {
			c.Locales = append(c.Locales, string(l))
		}
	}

	for _, l := range c.Locales {
		if _, err := ParseLocale(l); err != nil {
			return fmt.Errorf("invalid report configuration: %w", err)
		}
	}

	if c.DefaultMetric == "" {
		c.DefaultMetric = "sales"
	}

	if _, err := parseTimeSeriesMetric(c.DefaultMetric); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}

	return nil
}

// ConfiguredLocales returns the parsed warm-up locales
func (c *Config) ConfiguredLocales() []Locale {
	out := make([]Locale, 0, len(c.Locales))
	for _, l := range c.Locales {
		if locale, err := ParseLocale(l); err == nil {
			out = append(out, locale)
		}
	}

	return out
}
