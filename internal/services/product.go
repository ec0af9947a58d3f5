package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/logger"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/errors"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/models"
	repository "github.com/aaravmahajanofficial/marketplace-catalog/internal/repositories"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// CatalogCache is the read-through layer in front of the product repository.
type CatalogCache interface {
	GetListing(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	InvalidateOnCreate(ctx context.Context)
	InvalidateOnUpdate(ctx context.Context, oldSlug, newSlug string)
	InvalidateOnDelete(ctx context.Context, slug string)
}

type ProductService interface {
	ListProducts(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	CreateProduct(ctx context.Context, sellerID uuid.UUID, req *models.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, sellerID, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, sellerID, id uuid.UUID) error
}

type productService struct {
	repo  repository.ProductRepository
	cache CatalogCache

	plain *bluemonday.Policy
	rich  *bluemonday.Policy
}

func NewProductService(repo repository.ProductRepository, cache CatalogCache) ProductService {
	return &productService{
		repo:  repo,
		cache: cache,
		plain: bluemonday.StrictPolicy(),
		rich:  bluemonday.UGCPolicy(),
	}
}

func (s *productService) ListProducts(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {

	page, err := s.cache.GetListing(ctx, q)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return page, nil
}

func (s *productService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {

	product, err := s.cache.GetBySlug(ctx, slug)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, sellerID uuid.UUID, req *models.CreateProductRequest) (*models.Product, error) {

	reqLogger := logger.FromContext(ctx)

	title := strings.TrimSpace(s.plain.Sanitize(req.Title))
	slug := models.Slugify(title)
	if slug == "" {
		return nil, errors.AddValidationError("title", "must contain at least one letter or digit")
	}

	product := &models.Product{
		SellerID:    sellerID,
		Title:       title,
		Slug:        slug,
		Description: s.rich.Sanitize(req.Description),
		Discount:    req.Discount,
		Category:    strings.TrimSpace(req.Category),
		Stock:       req.Stock,
		Tags:        normalizeTags(req.Tags),
	}
	product.SetPriceCents(req.PriceCents)

	for _, url := range req.ImageURLs {
		product.Images = append(product.Images, models.ProductImage{URL: url})
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, mapWriteError("Failed to create product", product.Slug, err)
	}

	reqLogger.Info("Product created", slog.String("productId", product.ID.String()), slog.String("slug", product.Slug))

	// a new product can land on any listing page
	s.cache.InvalidateOnCreate(context.WithoutCancel(ctx))

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, sellerID, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {

	reqLogger := logger.FromContext(ctx)

	product, err := s.ownedProduct(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	oldSlug := product.Slug

	if req.Title != nil {
		product.Title = strings.TrimSpace(s.plain.Sanitize(*req.Title))
	}
	if req.Slug != nil {
		slug := models.Slugify(*req.Slug)
		if slug == "" {
			return nil, errors.AddValidationError("slug", "must contain at least one letter or digit")
		}
		product.Slug = slug
	}
	if req.Description != nil {
		product.Description = s.rich.Sanitize(*req.Description)
	}
	if req.PriceCents != nil {
		product.SetPriceCents(*req.PriceCents)
	}
	if req.Discount != nil {
		product.Discount = *req.Discount
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Tags != nil {
		product.Tags = normalizeTags(req.Tags)
	}

	var imageURLs []string
	if req.ImageURLs != nil {
		imageURLs = *req.ImageURLs
	}

	if err := s.repo.UpdateProduct(ctx, product, imageURLs); err != nil {
		return nil, mapWriteError("Failed to update product", product.Slug, err)
	}

	reqLogger.Info("Product updated", slog.String("productId", product.ID.String()), slog.String("slug", product.Slug))

	s.cache.InvalidateOnUpdate(context.WithoutCancel(ctx), oldSlug, product.Slug)

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, sellerID, id uuid.UUID) error {

	reqLogger := logger.FromContext(ctx)

	product, err := s.ownedProduct(ctx, sellerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Product not found").WithError(err)
		}

		return errors.DatabaseError("Failed to delete product").WithError(err)
	}

	reqLogger.Info("Product deleted", slog.String("productId", id.String()), slog.String("slug", product.Slug))

	s.cache.InvalidateOnDelete(context.WithoutCancel(ctx), product.Slug)

	return nil
}

// ownedProduct loads the product straight from the repository; writes never
// trust a cached copy.
func (s *productService) ownedProduct(ctx context.Context, sellerID, id uuid.UUID) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}

		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if product.SellerID != sellerID {
		return nil, errors.ForbiddenError("You can only modify your own products")
	}

	return product, nil
}

func mapWriteError(message, slug string, err error) error {
	if stdErrors.Is(err, repository.ErrDuplicateSlug) {
		return errors.DuplicateEntryError("A product with this slug already exists").
			WithDetail(fmt.Sprintf("slug %q is already taken", slug)).
			WithError(err)
	}

	return errors.DatabaseError(message).WithError(err)
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))

	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}

		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	return out
}
