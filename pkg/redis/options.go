package redis

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// NewClient parses the configured URL and connects a client
func NewClient(cfg *Config) (*redis.Client, *redis.Options, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	return redis.NewClient(opt), opt, nil
}

// NewAsynqRedisOptions converts Redis options to Asynq Redis options
func NewAsynqRedisOptions(opt *redis.Options) *asynq.RedisClientOpt {
	return &asynq.RedisClientOpt{
		Network:      opt.Network,
		Addr:         opt.Addr,
		Username:     opt.Username,
		Password:     opt.Password,
		DB:           opt.DB,
		DialTimeout:  opt.DialTimeout,
		ReadTimeout:  opt.ReadTimeout,
		WriteTimeout: opt.WriteTimeout,
		PoolSize:     opt.PoolSize,
		TLSConfig:    opt.TLSConfig,
	}
}
