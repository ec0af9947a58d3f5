package metrics

import (
	"context"
	"errors"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Catalog reads served from the cache.",
		},
		[]string{"op"},
	)
	cacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Catalog reads that fell through to the database.",
		},
		[]string{"op"},
	)
	cacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_errors_total",
			Help: "Non-fatal catalog cache failures.",
		},
		[]string{"op", "kind"},
	)
)

const (
	errKindUnavailable   = "unavailable"
	errKindSerialization = "serialization"
	errKindTimeout       = "timeout"
	errKindOther         = "other"
)

// CacheObserver exports catalog cache signals as Prometheus counters.
type CacheObserver struct{}

var _ cache.Observer = CacheObserver{}

func (CacheObserver) CacheHit(_ context.Context, op, _ string) {
	cacheHitsTotal.WithLabelValues(op).Inc()
}

func (CacheObserver) CacheMiss(_ context.Context, op, _ string) {
	cacheMissesTotal.WithLabelValues(op).Inc()
}

func (CacheObserver) CacheError(_ context.Context, op, _ string, err error) {
	cacheErrorsTotal.WithLabelValues(op, errorKind(err)).Inc()
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errKindTimeout
	case errors.Is(err, cache.ErrSerialization):
		return errKindSerialization
	case errors.Is(err, cache.ErrCacheUnavailable):
		return errKindUnavailable
	default:
		return errKindOther
	}
}
