package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultScanCount = 100

type RedisBackend struct {
	client    *redis.Client
	scanCount int64
}

// NewRedisBackend wraps an already constructed client. The caller owns the
// client's lifecycle.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{
		client:    client,
		scanCount: defaultScanCount,
	}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {

		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("%w: failed to get key %s from redis: %w", ErrCacheUnavailable, key, err)

	}

	return data, true, nil
}

func (r *RedisBackend) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {

	if ttl <= 0 {
		return fmt.Errorf("invalid ttl %s for key %s", ttl, key)
	}

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to set key %s in redis: %w", ErrCacheUnavailable, key, err)
	}

	return nil

}

func (r *RedisBackend) DeleteKeys(ctx context.Context, keys ...string) error {

	if len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: failed to delete %d keys from redis: %w", ErrCacheUnavailable, len(keys), err)
	}

	return nil

}

// ScanKeysByPrefix walks the keyspace with SCAN, so it never blocks the server
// the way KEYS would.
func (r *RedisBackend) ScanKeysByPrefix(ctx context.Context, prefix string) ([]string, error) {

	pattern := escapeGlob(prefix) + "*"

	var (
		keys   []string
		cursor uint64
	)

	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, r.scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan keys with prefix %s: %w", ErrCacheUnavailable, prefix, err)
		}

		keys = append(keys, batch...)

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}
