package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// ProductService is a testify mock of service.ProductService.
type ProductService struct {
	mock.Mock
}

func (m *ProductService) ListProducts(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	args := m.Called(ctx, q)

	var page *models.ProductPage
	if v := args.Get(0); v != nil {
		page = v.(*models.ProductPage)
	}

	return page, args.Error(1)
}

func (m *ProductService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)

	var product *models.Product
	if v := args.Get(0); v != nil {
		product = v.(*models.Product)
	}

	return product, args.Error(1)
}

func (m *ProductService) CreateProduct(ctx context.Context, sellerID uuid.UUID, req *models.CreateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, sellerID, req)

	var product *models.Product
	if v := args.Get(0); v != nil {
		product = v.(*models.Product)
	}

	return product, args.Error(1)
}

func (m *ProductService) UpdateProduct(ctx context.Context, sellerID, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, sellerID, id, req)

	var product *models.Product
	if v := args.Get(0); v != nil {
		product = v.(*models.Product)
	}

	return product, args.Error(1)
}

func (m *ProductService) DeleteProduct(ctx context.Context, sellerID, id uuid.UUID) error {
	return m.Called(ctx, sellerID, id).Error(0)
}
