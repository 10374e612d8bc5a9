package cache

// Config controls the section cache. The cache needs Redis; without a Redis
// URL every section is computed on request.
type Config struct {
	Enabled bool `yaml:"enabled" default:"true"`
	// KeyPrefix is appended to the Redis prefix, e.g. salesdash:section:
	KeyPrefix string `yaml:"keyPrefix" default:"section:"`
}

// Validate fills in the default key prefix
func (c *Config) Validate() error {
	if c.KeyPrefix == "" {
		c.KeyPrefix = "section:"
	}

	return nil
}
