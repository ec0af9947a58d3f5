package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/viccon/sturdyc"
)

type MemoryConfig struct {
	Capacity  int
	NumShards int
	// MaxTTL bounds how long the underlying store keeps any entry. It must be
	// at least as long as the longest TTL passed to SetWithTTL.
	MaxTTL time.Duration
}

// MemoryBackend keeps entries in a sharded in-process store. Expiry is checked
// passively on read against each entry's own deadline.
type MemoryBackend struct {
	client *sturdyc.Client[Entry]
	now    func() time.Time

	// mu orders writes against the removal of expired entries
	mu sync.Mutex
}

type MemoryOption func(*MemoryBackend)

// WithClock replaces the time source used for expiry checks.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryBackend) {
		m.now = now
	}
}

func NewMemoryBackend(cfg MemoryConfig, opts ...MemoryOption) *MemoryBackend {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 10000
	}
	if cfg.NumShards <= 0 {
		cfg.NumShards = 64
	}
	if cfg.MaxTTL <= 0 {
		cfg.MaxTTL = 10 * time.Minute
	}

	m := &MemoryBackend{
		// eviction percentage only applies once capacity is reached
		client: sturdyc.New[Entry](cfg.Capacity, cfg.NumShards, cfg.MaxTTL, 10),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := m.client.Get(key)
	if !ok {
		return nil, false, nil
	}

	now := m.now()
	if entry.Expired(now) {
		m.dropExpired(key, now)
		return nil, false, nil
	}

	return entry.Value, true, nil
}

// dropExpired deletes key only if the stored entry is still expired, so a
// write that landed after the read survives.
func (m *MemoryBackend) dropExpired(key string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.client.Get(key); ok && current.Expired(now) {
		m.client.Delete(key)
	}
}

func (m *MemoryBackend) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := Entry{
		Key:       key,
		Value:     value,
		ExpiresAt: m.now().Add(ttl),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.client.Set(key, entry)

	return nil
}

func (m *MemoryBackend) DeleteKeys(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.client.Delete(key)
	}

	return nil
}

func (m *MemoryBackend) ScanKeysByPrefix(_ context.Context, prefix string) ([]string, error) {
	var keys []string

	for _, key := range m.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	return keys, nil
}
