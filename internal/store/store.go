// Package store holds the redis-backed persistence used by the
// scheduler lock and the reminder ledger. Redis is optional: callers
// degrade to stateless behaviour when it is not configured.
package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/daybrief/config"
)

// Conn opens a redis client and verifies the connection.
func Conn(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		DialTimeout: cfg.Timeout,
		Password:    cfg.Password,
		DB:          cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
