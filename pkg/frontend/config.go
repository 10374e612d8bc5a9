package frontend

import "errors"

// ErrFrontendTitleRequired is returned when frontend is enabled without a page title
var (
	ErrFrontendTitleRequired = errors.New("frontend title is required when frontend is enabled")
)

// Config represents frontend configuration. The frontend is served by the
// API server for every path outside /api/v1.
type Config struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Title   string `yaml:"title" default:"Superstore Sales Dashboard"`
	// Locale is the locale the page opens in
	Locale string `yaml:"locale" default:"en"`
}

// Validate validates the frontend configuration
func (c *Config) Validate() error {
	if c.Enabled && c.Title == "" {
		return ErrFrontendTitleRequired
	}
	return nil
}
