package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/api/middleware"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/errors"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/models"
	service "github.com/aaravmahajanofficial/marketplace-catalog/internal/services"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/utils"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ProductHandler struct {
	productService service.ProductService
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService, validator: validator.New()}
}

// ListProducts godoc
//	@Summary		List catalog products
//	@Description	Returns one page of the public catalog. Responses are served from the read-through cache when possible.
//	@Tags			Products
//	@Produce		json
//	@Param			page		query		int						false	"Page number (default 1)"
//	@Param			limit		query		int						false	"Page size (default 24, max 100)"
//	@Param			category	query		string					false	"Category, or 'all'"
//	@Param			q			query		string					false	"Free-text search over title, description and tags"
//	@Param			minPrice	query		int						false	"Minimum price in cents"
//	@Param			maxPrice	query		string					false	"Maximum price in cents, or 'inf'"
//	@Param			sortBy		query		string					false	"createdAt, priceCents, title or sellerRating"
//	@Param			sortOrder	query		string					false	"asc or desc"
//	@Param			sellerId	query		string					false	"Seller ID, or 'all'"
//	@Success		200			{object}	models.ProductPage		"A page of products"
//	@Success		304			"Not modified"
//	@Failure		500			{object}	response.ErrorResponse	"Internal server error"
//	@Router			/products [get]
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		q := ParseProductQuery(r.URL.Query())

		page, err := h.productService.ListProducts(r.Context(), q)
		if err != nil {
			logger.Error("Failed to list products", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Debug("Products listed", slog.Int("count", len(page.Products)), slog.Int("total", page.Pagination.Total))
		response.SuccessWithETag(w, r, page)
	}
}

// GetProduct godoc
//	@Summary		Get a product by slug
//	@Tags			Products
//	@Produce		json
//	@Param			slug	path		string					true	"Product slug"
//	@Success		200		{object}	models.Product			"The product"
//	@Success		304		"Not modified"
//	@Failure		404		{object}	response.ErrorResponse	"Product not found"
//	@Failure		500		{object}	response.ErrorResponse	"Internal server error"
//	@Router			/products/{slug} [get]
func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		slug := strings.TrimSpace(r.PathValue("slug"))
		if slug == "" {
			response.Error(w, errors.BadRequestError("Product slug is required"))
			return
		}

		product, err := h.productService.GetProductBySlug(r.Context(), slug)
		if err != nil {
			logger.Warn("Failed to get product", slog.String("slug", slug), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.SuccessWithETag(w, r, product)
	}
}

// CreateProduct godoc
//	@Summary		Create a product
//	@Description	Creates a product owned by the authenticated seller. At least five image URLs are required.
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			product	body		models.CreateProductRequest	true	"Product details"
//	@Success		201		{object}	models.Product				"Product created"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse		"Sellers only"
//	@Failure		409		{object}	response.ErrorResponse		"Slug already taken"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/products [post]
func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthorized product creation attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.CreateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid create product input")
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Error("Failed to create product", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product created successfully", slog.String("productId", product.ID.String()))
		response.Success(w, http.StatusCreated, product)
	}
}

// UpdateProduct godoc
//	@Summary		Update a product
//	@Description	Partially updates a product owned by the authenticated seller. A provided image list replaces the existing one.
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Product ID (UUID)"	Format(uuid)
//	@Param			product	body		models.UpdateProductRequest	true	"Fields to update"
//	@Success		200		{object}	models.Product				"Product updated"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse		"Not the owner"
//	@Failure		404		{object}	response.ErrorResponse		"Product not found"
//	@Failure		409		{object}	response.ErrorResponse		"Slug already taken"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/products/{id} [put]
func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		id, ok := utils.ParseIDPathValue(r, w, "id")
		if !ok {
			return
		}

		var req models.UpdateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update product input", slog.String("productId", id.String()))
			return
		}

		product, err := h.productService.UpdateProduct(r.Context(), claims.UserID, id, &req)
		if err != nil {
			logger.Error("Failed to update product", slog.String("productId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product updated successfully", slog.String("productId", product.ID.String()))
		response.Success(w, http.StatusOK, product)
	}
}

// DeleteProduct godoc
//	@Summary		Delete a product
//	@Tags			Products
//	@Param			id	path	string	true	"Product ID (UUID)"	Format(uuid)
//	@Success		204	"Product deleted"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		403	{object}	response.ErrorResponse	"Not the owner"
//	@Failure		404	{object}	response.ErrorResponse	"Product not found"
//	@Security		BearerAuth
//	@Router			/products/{id} [delete]
func (h *ProductHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		id, ok := utils.ParseIDPathValue(r, w, "id")
		if !ok {
			return
		}

		if err := h.productService.DeleteProduct(r.Context(), claims.UserID, id); err != nil {
			logger.Error("Failed to delete product", slog.String("productId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Product deleted successfully", slog.String("productId", id.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}

// ParseProductQuery reads listing parameters. Values that do not parse are
// left absent and resolved to defaults during normalization.
func ParseProductQuery(values url.Values) models.ProductQuery {
	q := models.ProductQuery{
		Category:  values.Get("category"),
		Query:     values.Get("q"),
		SortBy:    values.Get("sortBy"),
		SortOrder: values.Get("sortOrder"),
		SellerID:  values.Get("sellerId"),
	}

	q.Page, _ = strconv.Atoi(values.Get("page"))
	q.Limit, _ = strconv.Atoi(values.Get("limit"))
	q.MinPriceCents = parseCents(values.Get("minPrice"))
	q.MaxPriceCents = parseCents(values.Get("maxPrice"))

	return q
}

func parseCents(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "inf") {
		return nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}

	return &v
}
