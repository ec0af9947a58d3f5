package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/logger"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultListingTTL          = 5 * time.Minute
	DefaultItemTTL             = 10 * time.Minute
	DefaultOpTimeout           = 150 * time.Millisecond
	DefaultInvalidationTimeout = time.Second

	OpListing    = "listing"
	OpItem       = "item"
	OpInvalidate = "invalidate"
)

var tracer = otel.Tracer("github.com/aaravmahajanofficial/marketplace-catalog/internal/cache")

// CatalogStore is the durable source the cache reads through to.
type CatalogStore interface {
	ListProducts(ctx context.Context, q models.ProductQuery) ([]*models.Product, int, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
}

// Observer receives cache outcome signals. Errors are reported here instead of
// being returned to the caller.
type Observer interface {
	CacheHit(ctx context.Context, op, key string)
	CacheMiss(ctx context.Context, op, key string)
	CacheError(ctx context.Context, op, key string, err error)
}

type NopObserver struct{}

func (NopObserver) CacheHit(context.Context, string, string)          {}
func (NopObserver) CacheMiss(context.Context, string, string)         {}
func (NopObserver) CacheError(context.Context, string, string, error) {}

type Options struct {
	ListingTTL          time.Duration
	ItemTTL             time.Duration
	OpTimeout           time.Duration
	InvalidationTimeout time.Duration
	Observer            Observer
}

// CatalogCache serves catalog reads through a Backend and invalidates the
// affected entries after catalog writes.
type CatalogCache struct {
	backend  Backend
	store    CatalogStore
	observer Observer

	listingTTL          time.Duration
	itemTTL             time.Duration
	opTimeout           time.Duration
	invalidationTimeout time.Duration
}

// NewCatalogCache builds the cache layer. A nil backend disables caching.
func NewCatalogCache(backend Backend, store CatalogStore, opts Options) *CatalogCache {
	if backend == nil {
		backend = NoopBackend{}
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	if opts.ListingTTL <= 0 {
		opts.ListingTTL = DefaultListingTTL
	}
	if opts.ItemTTL <= 0 {
		opts.ItemTTL = DefaultItemTTL
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = DefaultOpTimeout
	}
	if opts.InvalidationTimeout <= 0 {
		opts.InvalidationTimeout = DefaultInvalidationTimeout
	}

	return &CatalogCache{
		backend:             backend,
		store:               store,
		observer:            opts.Observer,
		listingTTL:          opts.ListingTTL,
		itemTTL:             opts.ItemTTL,
		opTimeout:           opts.OpTimeout,
		invalidationTimeout: opts.InvalidationTimeout,
	}
}

// GetListing returns one page of the catalog for q.
func (c *CatalogCache) GetListing(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	q = q.Normalized()

	return readThrough(ctx, c, OpListing, ListingKey(q), c.listingTTL, validPage, func(ctx context.Context) (*models.ProductPage, error) {
		products, total, err := c.store.ListProducts(ctx, q)
		if err != nil {
			return nil, err
		}

		return models.NewProductPage(q, products, total), nil
	})
}

// GetBySlug returns a single product.
func (c *CatalogCache) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	valid := func(p *models.Product) bool {
		return p != nil && p.ID != uuid.Nil && p.Slug == slug
	}

	return readThrough(ctx, c, OpItem, ProductKey(slug), c.itemTTL, valid, func(ctx context.Context) (*models.Product, error) {
		return c.store.GetProductBySlug(ctx, slug)
	})
}

// InvalidateOnCreate drops every listing; a new product may belong to any view.
func (c *CatalogCache) InvalidateOnCreate(ctx context.Context) {
	c.invalidate(ctx)
}

// InvalidateOnUpdate drops the product under its previous slug (and the new
// one when it changed) plus every listing.
func (c *CatalogCache) InvalidateOnUpdate(ctx context.Context, oldSlug, newSlug string) {
	keys := []string{ProductKey(oldSlug)}
	if newSlug != "" && newSlug != oldSlug {
		keys = append(keys, ProductKey(newSlug))
	}

	c.invalidate(ctx, keys...)
}

// InvalidateOnDelete drops the product and every listing.
func (c *CatalogCache) InvalidateOnDelete(ctx context.Context, slug string) {
	c.invalidate(ctx, ProductKey(slug))
}

// validPage rejects decoded pages that could not have come from NewProductPage.
func validPage(p *models.ProductPage) bool {
	if p == nil || p.Products == nil || p.Pagination.Page < 1 || p.Pagination.Limit < 1 {
		return false
	}

	for _, product := range p.Products {
		if product == nil || product.ID == uuid.Nil {
			return false
		}
	}

	return true
}

func readThrough[T any](ctx context.Context, c *CatalogCache, op, key string, ttl time.Duration, valid func(T) bool, fetch func(context.Context) (T, error)) (T, error) {

	ctx, span := tracer.Start(ctx, "catalog."+op)
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", key))

	if value, ok := lookup(ctx, c, op, key, valid); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return value, nil
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))

	value, err := fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog store query failed")
		var zero T
		return zero, err
	}

	c.populate(ctx, op, key, value, ttl)

	return value, nil
}

func lookup[T any](ctx context.Context, c *CatalogCache, op, key string, valid func(T) bool) (T, bool) {
	var value T

	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	raw, found, err := c.backend.Get(opCtx, key)
	if err != nil {
		c.report(ctx, op, key, err)
		c.observer.CacheMiss(ctx, op, key)
		return value, false
	}

	if !found {
		c.observer.CacheMiss(ctx, op, key)
		return value, false
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		c.report(ctx, op, key, fmt.Errorf("%w: failed to unmarshal cache data for key %s: %w", ErrSerialization, key, err))
		c.observer.CacheMiss(ctx, op, key)
		var zero T
		return zero, false
	}

	if !valid(value) {
		c.report(ctx, op, key, fmt.Errorf("%w: malformed cache value for key %s", ErrSerialization, key))
		c.observer.CacheMiss(ctx, op, key)
		var zero T
		return zero, false
	}

	c.observer.CacheHit(ctx, op, key)
	logger.FromContext(ctx).Debug("Catalog cache hit", slog.String("op", op), slog.String("key", key))

	return value, true
}

func (c *CatalogCache) populate(ctx context.Context, op, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.report(ctx, op, key, fmt.Errorf("%w: failed to marshal value for key %s: %w", ErrSerialization, key, err))
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.backend.SetWithTTL(opCtx, key, data, ttl); err != nil {
		c.report(ctx, op, key, err)
	}
}

// invalidate removes the given item keys and every listing key. It runs after
// the write has been committed and never reports failure to the writer.
func (c *CatalogCache) invalidate(ctx context.Context, itemKeys ...string) {
	ctx, span := tracer.Start(ctx, "catalog."+OpInvalidate)
	defer span.End()

	opCtx, cancel := context.WithTimeout(ctx, c.invalidationTimeout)
	defer cancel()

	if len(itemKeys) > 0 {
		if err := c.backend.DeleteKeys(opCtx, itemKeys...); err != nil {
			span.RecordError(err)
			c.report(ctx, OpInvalidate, itemKeys[0], err)
		}
	}

	listingKeys, err := c.backend.ScanKeysByPrefix(opCtx, ListingNamespace)
	if err != nil {
		span.RecordError(err)
		c.report(ctx, OpInvalidate, ListingNamespace, err)
		return
	}

	span.SetAttributes(attribute.Int("cache.invalidated_listings", len(listingKeys)))

	if err := c.backend.DeleteKeys(opCtx, listingKeys...); err != nil {
		span.RecordError(err)
		c.report(ctx, OpInvalidate, ListingNamespace, err)
	}
}

func (c *CatalogCache) report(ctx context.Context, op, key string, err error) {
	logger.FromContext(ctx).Warn("Catalog cache operation failed",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)

	c.observer.CacheError(ctx, op, key, err)
}
