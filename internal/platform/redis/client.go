// Package redis connects the optional Redis instance that backs the shared
// person snapshot cache. The backend runs fine without it; callers treat a
// nil client as "no shared cache".
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/platform/config"
)

const connectTimeout = 5 * time.Second

// Client embeds the go-redis client so it satisfies redis.Cmdable wherever
// a command interface is expected.
type Client struct {
	*redis.Client
}

// New dials Redis from configuration and verifies the connection. A missing
// URL returns (nil, nil): Redis is optional and absence is not an error.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
