// Package redis holds the Redis-backed pieces of the quoting service: the
// connection helper and the prompt layer cache. The rate limiter uses the
// same client.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Config is the connection subset of config.RedisConfig.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	// DialTimeout also bounds the startup ping. Zero means pingTimeout.
	DialTimeout time.Duration
}

func (c Config) options() *redis.Options {
	opts := &redis.Options{
		Addr:        c.Addr,
		Password:    c.Password,
		DB:          c.DB,
		DialTimeout: c.DialTimeout,
	}
	if c.PoolSize > 0 {
		opts.PoolSize = c.PoolSize
	}
	return opts
}

// Connect opens a client and pings it. The client is closed when the ping
// fails, so callers only own it on success.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = pingTimeout
	}

	client := redis.NewClient(cfg.options())

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
