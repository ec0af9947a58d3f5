package cache_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/cache"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/logger"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves a fixed catalog and counts queries.
type fakeStore struct {
	mu         sync.Mutex
	products   []*models.Product
	err        error
	listCalls  int
	itemCalls  int
	lastFilter models.ProductQuery
}

func (s *fakeStore) ListProducts(_ context.Context, q models.ProductQuery) ([]*models.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listCalls++
	s.lastFilter = q
	if s.err != nil {
		return nil, 0, s.err
	}

	var out []*models.Product
	for _, p := range s.products {
		if q.Category == "" || p.Category == q.Category {
			cp := *p
			out = append(out, &cp)
		}
	}

	return out, len(out), nil
}

func (s *fakeStore) GetProductBySlug(_ context.Context, slug string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.itemCalls++
	if s.err != nil {
		return nil, s.err
	}

	for _, p := range s.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}

	return nil, errNotFound
}

func (s *fakeStore) add(p *models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
}

var errNotFound = errors.New("not found")

// recordingObserver counts signals per kind.
type recordingObserver struct {
	mu     sync.Mutex
	hits   int
	misses int
	errs   []error
}

func (o *recordingObserver) CacheHit(context.Context, string, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits++
}

func (o *recordingObserver) CacheMiss(context.Context, string, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.misses++
}

func (o *recordingObserver) CacheError(_ context.Context, _, _ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs = append(o.errs, err)
}

// failingBackend refuses every operation.
type failingBackend struct{}

var errDown = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.Join(cache.ErrCacheUnavailable, errDown)
}

func (failingBackend) SetWithTTL(context.Context, string, []byte, time.Duration) error {
	return errors.Join(cache.ErrCacheUnavailable, errDown)
}

func (failingBackend) DeleteKeys(context.Context, ...string) error {
	return errors.Join(cache.ErrCacheUnavailable, errDown)
}

func (failingBackend) ScanKeysByPrefix(context.Context, string) ([]string, error) {
	return nil, errors.Join(cache.ErrCacheUnavailable, errDown)
}

// blockingBackend waits for the caller's deadline on every read.
type blockingBackend struct {
	cache.NoopBackend
}

func (blockingBackend) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	<-ctx.Done()
	return nil, false, ctx.Err()
}

func product(slug, category string, cents int64) *models.Product {
	p := &models.Product{ID: uuid.New(), Slug: slug, Title: slug, Category: category, Tags: []string{}}
	p.SetPriceCents(cents)

	return p
}

func newCatalog(backend cache.Backend, store *fakeStore) (*cache.CatalogCache, *recordingObserver) {
	observer := &recordingObserver{}

	return cache.NewCatalogCache(backend, store, cache.Options{Observer: observer}), observer
}

func TestCatalogCache_ListingReadThrough(t *testing.T) {
	// Arrange
	store := &fakeStore{products: []*models.Product{product("demo-product", "electronics", 1999)}}
	backend, _ := newClockedMemory()
	catalog, observer := newCatalog(backend, store)
	q := models.ProductQuery{Category: "electronics"}

	// Act
	first, err := catalog.GetListing(t.Context(), q)
	require.NoError(t, err)
	second, err := catalog.GetListing(t.Context(), q)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, store.listCalls)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, observer.misses)
	assert.Equal(t, 1, observer.hits)
	assert.Equal(t, 1, second.Pagination.Total)
	assert.Equal(t, models.DefaultLimit, second.Pagination.Limit)

	keys, err := backend.ScanKeysByPrefix(t.Context(), cache.ListingNamespace)
	require.NoError(t, err)
	assert.Equal(t, []string{cache.ListingKey(q)}, keys)
}

func TestCatalogCache_StoreReceivesNormalizedQuery(t *testing.T) {
	store := &fakeStore{}
	catalog, _ := newCatalog(nil, store)

	_, err := catalog.GetListing(t.Context(), models.ProductQuery{Page: -1, Limit: 1000, Category: "all", SortOrder: "ASC"})

	require.NoError(t, err)
	assert.Equal(t, models.ProductQuery{Page: 1, Limit: models.MaxLimit, SortBy: models.SortByCreatedAt, SortOrder: models.SortAsc}, store.lastFilter)
}

func TestCatalogCache_ListingTTL(t *testing.T) {
	// Arrange
	store := &fakeStore{products: []*models.Product{product("demo-product", "electronics", 1999)}}
	backend, clock := newClockedMemory()
	catalog, _ := newCatalog(backend, store)

	_, err := catalog.GetListing(t.Context(), models.ProductQuery{})
	require.NoError(t, err)

	// Act / Assert
	clock.Advance(299 * time.Second)
	_, err = catalog.GetListing(t.Context(), models.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls, "listing is still fresh at T+299s")

	clock.Advance(2 * time.Second)
	_, err = catalog.GetListing(t.Context(), models.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, store.listCalls, "listing is stale at T+301s")
}

func TestCatalogCache_ItemTTL(t *testing.T) {
	// Arrange
	store := &fakeStore{products: []*models.Product{product("demo-product", "electronics", 1999)}}
	backend, clock := newClockedMemory()
	catalog, _ := newCatalog(backend, store)

	_, err := catalog.GetBySlug(t.Context(), "demo-product")
	require.NoError(t, err)

	// Act / Assert
	clock.Advance(599 * time.Second)
	_, err = catalog.GetBySlug(t.Context(), "demo-product")
	require.NoError(t, err)
	assert.Equal(t, 1, store.itemCalls)

	clock.Advance(2 * time.Second)
	_, err = catalog.GetBySlug(t.Context(), "demo-product")
	require.NoError(t, err)
	assert.Equal(t, 2, store.itemCalls)
}

func TestCatalogCache_InvalidateOnCreate(t *testing.T) {
	// Arrange
	store := &fakeStore{products: []*models.Product{product("old-phone", "electronics", 9999)}}
	backend, _ := newClockedMemory()
	catalog, _ := newCatalog(backend, store)
	q := models.ProductQuery{Category: "electronics"}

	before, err := catalog.GetListing(t.Context(), q)
	require.NoError(t, err)
	_, err = catalog.GetListing(t.Context(), models.ProductQuery{Page: 2})
	require.NoError(t, err)
	_, err = catalog.GetBySlug(t.Context(), "old-phone")
	require.NoError(t, err)

	// Act
	store.add(product("new-phone", "electronics", 4999))
	catalog.InvalidateOnCreate(t.Context())

	after, err := catalog.GetListing(t.Context(), q)
	require.NoError(t, err)

	// Assert
	assert.Len(t, before.Products, 1)
	assert.Len(t, after.Products, 2)

	keys, err := backend.ScanKeysByPrefix(t.Context(), cache.ListingNamespace)
	require.NoError(t, err)
	assert.Equal(t, []string{cache.ListingKey(q)}, keys, "only the re-read listing is cached again")

	_, found, err := backend.Get(t.Context(), cache.ProductKey("old-phone"))
	require.NoError(t, err)
	assert.True(t, found, "unrelated item entries survive a create")
}

func TestCatalogCache_PriceUpdateIsVisible(t *testing.T) {
	// Arrange
	demo := product("demo-product", "electronics", 1999)
	store := &fakeStore{products: []*models.Product{demo}}
	backend, _ := newClockedMemory()
	catalog, _ := newCatalog(backend, store)

	cached, err := catalog.GetBySlug(t.Context(), "demo-product")
	require.NoError(t, err)
	listing, err := catalog.GetListing(t.Context(), models.ProductQuery{})
	require.NoError(t, err)

	// Act
	demo.SetPriceCents(2999)
	catalog.InvalidateOnUpdate(t.Context(), "demo-product", "demo-product")

	fresh, err := catalog.GetBySlug(t.Context(), "demo-product")
	require.NoError(t, err)
	freshListing, err := catalog.GetListing(t.Context(), models.ProductQuery{})
	require.NoError(t, err)

	// Assert
	assert.InDelta(t, 19.99, cached.Price, 0.0001)
	assert.InDelta(t, 19.99, listing.Products[0].Price, 0.0001)
	assert.InDelta(t, 29.99, fresh.Price, 0.0001)
	assert.InDelta(t, 29.99, freshListing.Products[0].Price, 0.0001)
}

func TestCatalogCache_SlugChangeDropsBothKeys(t *testing.T) {
	// Arrange
	ctx := t.Context()
	backend, _ := newClockedMemory()
	catalog, _ := newCatalog(backend, &fakeStore{})

	for _, key := range []string{cache.ProductKey("old-slug"), cache.ProductKey("new-slug"), cache.ProductKey("other")} {
		require.NoError(t, backend.SetWithTTL(ctx, key, []byte(`{}`), time.Minute))
	}

	// Act
	catalog.InvalidateOnUpdate(ctx, "old-slug", "new-slug")

	// Assert
	for slug, want := range map[string]bool{"old-slug": false, "new-slug": false, "other": true} {
		_, found, err := backend.Get(ctx, cache.ProductKey(slug))
		require.NoError(t, err)
		assert.Equal(t, want, found, slug)
	}
}

func TestCatalogCache_InvalidateOnDelete(t *testing.T) {
	// Arrange
	demo := product("demo-product", "electronics", 1999)
	store := &fakeStore{products: []*models.Product{demo}}
	backend, _ := newClockedMemory()
	catalog, _ := newCatalog(backend, store)

	_, err := catalog.GetBySlug(t.Context(), "demo-product")
	require.NoError(t, err)
	_, err = catalog.GetListing(t.Context(), models.ProductQuery{})
	require.NoError(t, err)

	// Act
	store.products = nil
	catalog.InvalidateOnDelete(t.Context(), "demo-product")

	_, err = catalog.GetBySlug(t.Context(), "demo-product")
	listing, listErr := catalog.GetListing(t.Context(), models.ProductQuery{})

	// Assert
	require.ErrorIs(t, err, errNotFound)
	require.NoError(t, listErr)
	assert.Empty(t, listing.Products)
}

func TestCatalogCache_DegradesWhenBackendIsDown(t *testing.T) {
	// Arrange
	store := &fakeStore{products: []*models.Product{
		product("a", "electronics", 100),
		product("b", "books", 200),
	}}
	direct := &fakeStore{products: store.products}
	catalog, observer := newCatalog(failingBackend{}, store)
	q := models.ProductQuery{Category: "electronics"}

	// Act
	page, err := catalog.GetListing(t.Context(), q)
	require.NoError(t, err)
	again, err := catalog.GetListing(t.Context(), q)
	require.NoError(t, err)
	item, itemErr := catalog.GetBySlug(t.Context(), "b")
	catalog.InvalidateOnCreate(t.Context())

	// Assert
	wantProducts, wantTotal, err := direct.ListProducts(t.Context(), q.Normalized())
	require.NoError(t, err)
	assert.Equal(t, models.NewProductPage(q.Normalized(), wantProducts, wantTotal), page)
	assert.Equal(t, page, again)
	require.NoError(t, itemErr)
	assert.Equal(t, "b", item.Slug)

	assert.Equal(t, 2, store.listCalls)
	assert.Zero(t, observer.hits)
	assert.Equal(t, 3, observer.misses)
	require.NotEmpty(t, observer.errs)
	for _, err := range observer.errs {
		assert.ErrorIs(t, err, cache.ErrCacheUnavailable)
	}
}

func TestCatalogCache_SlowBackendIsBounded(t *testing.T) {
	// Arrange
	store := &fakeStore{products: []*models.Product{product("a", "electronics", 100)}}
	observer := &recordingObserver{}
	catalog := cache.NewCatalogCache(blockingBackend{}, store, cache.Options{OpTimeout: 20 * time.Millisecond, Observer: observer})

	// Act
	start := time.Now()
	page, err := catalog.GetListing(t.Context(), models.ProductQuery{})

	// Assert
	require.NoError(t, err)
	assert.Len(t, page.Products, 1)
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, observer.errs, 1)
	assert.ErrorIs(t, observer.errs[0], context.DeadlineExceeded)
}

func TestCatalogCache_CorruptEntryIsAMiss(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "Garbage", raw: "{not json"},
		{name: "Wrong shape", raw: `{"products": "nope"}`},
		{name: "Null", raw: "null"},
		{name: "Empty object", raw: `{}`},
		{name: "Zero pagination", raw: `{"products": [], "pagination": {"page": 0, "limit": 0}}`},
		{name: "Product without id", raw: `{"products": [{}], "pagination": {"page": 1, "limit": 24, "total": 1, "pages": 1}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			ctx := t.Context()
			store := &fakeStore{products: []*models.Product{product("a", "electronics", 100)}}
			backend, _ := newClockedMemory()
			catalog, observer := newCatalog(backend, store)
			key := cache.ListingKey(models.ProductQuery{})
			require.NoError(t, backend.SetWithTTL(ctx, key, []byte(tc.raw), time.Minute))

			// Act
			page, err := catalog.GetListing(ctx, models.ProductQuery{})

			// Assert
			require.NoError(t, err)
			assert.Len(t, page.Products, 1)
			assert.Equal(t, 1, store.listCalls)
			require.Len(t, observer.errs, 1)
			assert.ErrorIs(t, observer.errs[0], cache.ErrSerialization)

			_, err = catalog.GetListing(ctx, models.ProductQuery{})
			require.NoError(t, err)
			assert.Equal(t, 1, store.listCalls, "the corrupt entry is overwritten")
		})
	}
}

func TestCatalogCache_StoreErrorsPropagate(t *testing.T) {
	// Arrange
	storeErr := errors.New("pq: too many connections")
	store := &fakeStore{err: storeErr}
	backend, _ := newClockedMemory()
	catalog, _ := newCatalog(backend, store)

	// Act
	page, err := catalog.GetListing(t.Context(), models.ProductQuery{})
	item, itemErr := catalog.GetBySlug(t.Context(), "a")

	// Assert
	assert.Nil(t, page)
	require.ErrorIs(t, err, storeErr)
	assert.Nil(t, item)
	require.ErrorIs(t, itemErr, storeErr)

	keys, err := backend.ScanKeysByPrefix(t.Context(), "")
	require.NoError(t, err)
	assert.Empty(t, keys, "failures are never cached")
}

func TestCatalogCache_DisabledReadsStraightThrough(t *testing.T) {
	// Arrange
	store := &fakeStore{products: []*models.Product{product("a", "electronics", 100)}}
	catalog, observer := newCatalog(nil, store)

	// Act
	for i := 0; i < 3; i++ {
		_, err := catalog.GetListing(t.Context(), models.ProductQuery{})
		require.NoError(t, err)
	}
	catalog.InvalidateOnDelete(t.Context(), "a")

	// Assert
	assert.Equal(t, 3, store.listCalls)
	assert.Zero(t, observer.hits)
	assert.Empty(t, observer.errs)
}

func TestCatalogCache_CorruptItemIsAMiss(t *testing.T) {
	stored := product("demo-product", "electronics", 1999)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "Null", raw: "null"},
		{name: "Empty object", raw: `{}`},
		{name: "Missing id", raw: `{"slug": "demo-product", "priceCents": 1}`},
		{name: "Other product", raw: `{"id": "` + uuid.NewString() + `", "slug": "other-product"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			ctx := t.Context()
			store := &fakeStore{products: []*models.Product{stored}}
			backend, _ := newClockedMemory()
			catalog, observer := newCatalog(backend, store)
			require.NoError(t, backend.SetWithTTL(ctx, cache.ProductKey("demo-product"), []byte(tc.raw), time.Minute))

			// Act
			got, err := catalog.GetBySlug(ctx, "demo-product")

			// Assert
			require.NoError(t, err)
			assert.Equal(t, stored.ID, got.ID)
			assert.Equal(t, 1, store.itemCalls)
			assert.Zero(t, observer.hits)
			require.Len(t, observer.errs, 1)
			assert.ErrorIs(t, observer.errs[0], cache.ErrSerialization)
		})
	}
}

func TestCatalogCache_ReportsThroughRequestLogger(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	reqLogger := slog.New(slog.NewJSONHandler(&buf, nil)).With(slog.String("correlation_id", "req-42"))
	ctx := logger.WithContext(t.Context(), reqLogger)
	store := &fakeStore{products: []*models.Product{product("a", "electronics", 100)}}
	catalog, _ := newCatalog(failingBackend{}, store)

	// Act
	_, err := catalog.GetListing(ctx, models.ProductQuery{})

	// Assert
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"correlation_id":"req-42"`)
	assert.Contains(t, buf.String(), "Catalog cache operation failed")
	assert.Contains(t, buf.String(), `"op":"listing"`)
}
