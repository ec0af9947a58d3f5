package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheUnavailable marks failures to reach the cache backend.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrSerialization marks values that could not be encoded or decoded.
	ErrSerialization = errors.New("cache serialization error")
)

// Backend is the capability set the catalog cache needs from a cache
// technology. Implementations must support enumerating keys by prefix.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteKeys(ctx context.Context, keys ...string) error
	ScanKeysByPrefix(ctx context.Context, prefix string) ([]string, error)
}

// Entry is a stored value together with its absolute expiry.
type Entry struct {
	Key       string
	Value     []byte
	ExpiresAt time.Time
}

// Expired reports whether the entry is no longer servable at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// NoopBackend is used when caching is disabled: every read misses and every
// write is discarded.
type NoopBackend struct{}

func (NoopBackend) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopBackend) SetWithTTL(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopBackend) DeleteKeys(context.Context, ...string) error { return nil }

func (NoopBackend) ScanKeysByPrefix(context.Context, string) ([]string, error) { return nil, nil }
