package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the cache client with short timeouts so a slow Redis
// degrades catalog reads instead of stalling them. The returned client is
// usable even when the initial ping fails; the error is for the caller to log.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {

	redisURL := cfg.RedisConnect.GetDSN()
	slog.Info("Connecting to Redis", slog.String("addr", cfg.RedisConnect.Addr()), slog.Int("db", cfg.RedisConnect.DB))

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Error("Failed to parse Redis URL", slog.Any("error", err), slog.String("addr", cfg.RedisConnect.Addr()))
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.DB = cfg.RedisConnect.DB

	opTimeout := cfg.Cache.OpTimeout
	if opTimeout <= 0 {
		opTimeout = 150 * time.Millisecond
	}

	opt.DialTimeout = 2 * opTimeout
	opt.ReadTimeout = opTimeout
	opt.WriteTimeout = opTimeout
	opt.MaxRetries = -1
	opt.ContextTimeoutEnabled = true

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return client, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("✅ Successfully connected to Redis")
	return client, nil

}
