// Package redis provides Redis client configuration
package redis

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Define static errors
var (
	ErrInvalidURL = errors.New("invalid redis url")
)

// Config holds Redis client configuration. An empty URL disables Redis.
type Config struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix" default:"salesdash"`
}

// Enabled reports whether a Redis URL is configured
func (c *Config) Enabled() bool {
	return c.URL != ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Prefix == "" {
		c.Prefix = "salesdash"
	}

	if !c.Enabled() {
		return nil
	}

	if _, err := redis.ParseURL(c.URL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	return nil
}

// PrefixKey adds the configured prefix to a Redis key
func (c *Config) PrefixKey(key string) string {
	if c.Prefix == "" {
		return key
	}

	return fmt.Sprintf("%s:%s", c.Prefix, key)
}

// PrefixQueue adds the configured prefix to an Asynq queue name
func (c *Config) PrefixQueue(queue string) string {
	if c.Prefix == "" {
		return queue
	}

	return fmt.Sprintf("%s:%s", c.Prefix, queue)
}
