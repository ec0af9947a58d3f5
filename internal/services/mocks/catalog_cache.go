package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/models"
	"github.com/stretchr/testify/mock"
)

// CatalogCache is a testify mock of service.CatalogCache.
type CatalogCache struct {
	mock.Mock
}

func (m *CatalogCache) GetListing(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	args := m.Called(ctx, q)

	var page *models.ProductPage
	if v := args.Get(0); v != nil {
		page = v.(*models.ProductPage)
	}

	return page, args.Error(1)
}

func (m *CatalogCache) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)

	var product *models.Product
	if v := args.Get(0); v != nil {
		product = v.(*models.Product)
	}

	return product, args.Error(1)
}

func (m *CatalogCache) InvalidateOnCreate(ctx context.Context) {
	m.Called(ctx)
}

func (m *CatalogCache) InvalidateOnUpdate(ctx context.Context, oldSlug, newSlug string) {
	m.Called(ctx, oldSlug, newSlug)
}

func (m *CatalogCache) InvalidateOnDelete(ctx context.Context, slug string) {
	m.Called(ctx, slug)
}
