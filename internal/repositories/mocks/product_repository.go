package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// ProductRepository is a testify mock of repository.ProductRepository.
type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) ListProducts(ctx context.Context, q models.ProductQuery) ([]*models.Product, int, error) {
	args := m.Called(ctx, q)

	var products []*models.Product
	if v := args.Get(0); v != nil {
		products = v.([]*models.Product)
	}

	return products, args.Int(1), args.Error(2)
}

func (m *ProductRepository) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)

	var product *models.Product
	if v := args.Get(0); v != nil {
		product = v.(*models.Product)
	}

	return product, args.Error(1)
}

func (m *ProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)

	var product *models.Product
	if v := args.Get(0); v != nil {
		product = v.(*models.Product)
	}

	return product, args.Error(1)
}

func (m *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *ProductRepository) UpdateProduct(ctx context.Context, product *models.Product, imageURLs []string) error {
	return m.Called(ctx, product, imageURLs).Error(0)
}

func (m *ProductRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
