// Package redisstore keeps verification codes in Redis.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-otp-auth/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewClient connects to the Redis instance named in cfg and pings it.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}
