// internal/common/database/redis.go
package database

import (
	"context"
	"time"

	"laundry-workers/internal/common/config"
	"laundry-workers/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs the template cache. The cache is optional, so callers treat every error
// here as "run without cache".
type RedisClient struct {
	Client *redis.Client
}

func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, errors.NewValidationError("database.redis.address is empty")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 1,
	})
	return &RedisClient{Client: rdb}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return errors.NewExternalServiceError("redis", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
