package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/models"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrDuplicateSlug is returned when a product write collides with an existing slug.
var ErrDuplicateSlug = errors.New("product slug already exists")

const uniqueViolation = "23505"

type ProductRepository interface {
	ListProducts(ctx context.Context, q models.ProductQuery) ([]*models.Product, int, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product, imageURLs []string) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `
		p.id, p.seller_id, p.title, p.slug, p.description, p.price_cents, p.discount,
		p.category, p.stock, p.tags, p.created_at, p.updated_at,
		u.id, u.name, u.email, u.seller_rating,
		ARRAY(SELECT pi.id::text FROM product_images pi WHERE pi.product_id = p.id ORDER BY pi.position),
		ARRAY(SELECT pi.url FROM product_images pi WHERE pi.product_id = p.id ORDER BY pi.position)`

const productFrom = `
		FROM products p
		JOIN users u ON u.id = p.seller_id`

var sortColumns = map[string]string{
	models.SortByCreatedAt:    "p.created_at",
	models.SortByPriceCents:   "p.price_cents",
	models.SortByTitle:        "p.title",
	models.SortBySellerRating: "u.seller_rating",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// productFilter accumulates WHERE conditions with positional arguments.
type productFilter struct {
	conditions []string
	args       []any
}

func (f *productFilter) arg(v any) string {
	f.args = append(f.args, v)
	return "$" + strconv.Itoa(len(f.args))
}

func (f *productFilter) where() string {
	if len(f.conditions) == 0 {
		return ""
	}

	return "\n\t\tWHERE " + strings.Join(f.conditions, " AND ")
}

func buildProductFilter(q models.ProductQuery) *productFilter {
	f := &productFilter{}

	if q.Category != "" {
		f.conditions = append(f.conditions, "p.category = "+f.arg(q.Category))
	}

	if q.Query != "" {
		pattern := f.arg("%" + likeEscaper.Replace(q.Query) + "%")
		tag := f.arg(q.Query)
		f.conditions = append(f.conditions, fmt.Sprintf("(p.title ILIKE %[1]s OR p.description ILIKE %[1]s OR %[2]s = ANY(p.tags))", pattern, tag))
	}

	if q.MinPriceCents != nil {
		f.conditions = append(f.conditions, "p.price_cents >= "+f.arg(*q.MinPriceCents))
	}

	if q.MaxPriceCents != nil {
		f.conditions = append(f.conditions, "p.price_cents <= "+f.arg(*q.MaxPriceCents))
	}

	if q.SellerID != "" {
		f.conditions = append(f.conditions, "p.seller_id::text = "+f.arg(q.SellerID))
	}

	return f
}

// ListProducts returns one page of products matching q plus the total number
// of matches. q is normalized before use.
func (r *productRepository) ListProducts(ctx context.Context, q models.ProductQuery) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	q = q.Normalized()
	filter := buildProductFilter(q)

	var total int

	countQuery := `SELECT COUNT(*)` + productFrom + filter.where()

	if err := r.DB.QueryRowContext(dbCtx, countQuery, filter.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	direction := "DESC"
	if q.SortOrder == models.SortAsc {
		direction = "ASC"
	}

	// p.id breaks ties so pages never overlap
	orderBy := fmt.Sprintf("\n\t\tORDER BY %s %s, p.id %s", sortColumns[q.SortBy], direction, direction)
	limit := filter.arg(q.Limit)
	offset := filter.arg(q.Offset())

	query := `SELECT` + productColumns + productFrom + filter.where() + orderBy + "\n\t\tLIMIT " + limit + " OFFSET " + offset

	rows, err := r.DB.QueryContext(dbCtx, query, filter.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing products: %w", err)
	}

	defer rows.Close()

	products := []*models.Product{}

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT` + productColumns + productFrom + `
		WHERE p.slug = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, slug))
	if err != nil {
		return nil, fmt.Errorf("querying product by slug: %w", err)
	}

	return product, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT` + productColumns + productFrom + `
		WHERE p.id = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return product, nil
}

// CreateProduct inserts the product and its images in one transaction and fills
// in the generated timestamps.
func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer tx.Rollback()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	query := `
		INSERT INTO products (id, seller_id, title, slug, description, price_cents, discount, category, stock, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query, product.ID, product.SellerID, product.Title, product.Slug, product.Description, product.PriceCents, product.Discount, product.Category, product.Stock, pq.Array(product.Tags)).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return mapWriteError("inserting product", err)
	}

	if err := insertImages(dbCtx, tx, product); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing product: %w", err)
	}

	return nil
}

// UpdateProduct persists the mutable fields of product. A non-nil imageURLs
// replaces the whole image set.
func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product, imageURLs []string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer tx.Rollback()

	query := `
		UPDATE products SET title = $1, slug = $2, description = $3, price_cents = $4, discount = $5, category = $6, stock = $7, tags = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`

	err = tx.QueryRowContext(dbCtx, query, product.Title, product.Slug, product.Description, product.PriceCents, product.Discount, product.Category, product.Stock, pq.Array(product.Tags), product.ID).Scan(&product.UpdatedAt)
	if err != nil {
		return mapWriteError("updating product", err)
	}

	if imageURLs != nil {
		if _, err := tx.ExecContext(dbCtx, `DELETE FROM product_images WHERE product_id = $1`, product.ID); err != nil {
			return fmt.Errorf("clearing product images: %w", err)
		}

		product.Images = make([]models.ProductImage, 0, len(imageURLs))
		for _, url := range imageURLs {
			product.Images = append(product.Images, models.ProductImage{URL: url})
		}

		if err := insertImages(dbCtx, tx, product); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing product update: %w", err)
	}

	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	// product_images rows go with it through ON DELETE CASCADE
	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func insertImages(ctx context.Context, tx *sql.Tx, product *models.Product) error {
	query := `
		INSERT INTO product_images (id, product_id, url, position)
		VALUES ($1, $2, $3, $4)
	`

	for i := range product.Images {
		image := &product.Images[i]
		if image.ID == uuid.Nil {
			image.ID = uuid.New()
		}

		if _, err := tx.ExecContext(ctx, query, image.ID, product.ID, image.URL, i); err != nil {
			return fmt.Errorf("inserting product image: %w", err)
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}
	seller := &models.Seller{}

	var (
		imageIDs  []string
		imageURLs []string
	)

	err := row.Scan(
		&product.ID, &product.SellerID, &product.Title, &product.Slug, &product.Description, &product.PriceCents, &product.Discount,
		&product.Category, &product.Stock, pq.Array(&product.Tags), &product.CreatedAt, &product.UpdatedAt,
		&seller.ID, &seller.Name, &seller.Email, &seller.SellerRating,
		pq.Array(&imageIDs), pq.Array(&imageURLs),
	)
	if err != nil {
		return nil, err
	}

	if len(imageIDs) != len(imageURLs) {
		return nil, fmt.Errorf("product %s: mismatched image columns", product.ID)
	}

	product.Images = make([]models.ProductImage, 0, len(imageURLs))
	for i, url := range imageURLs {
		id, err := uuid.Parse(imageIDs[i])
		if err != nil {
			return nil, fmt.Errorf("product %s: parsing image id: %w", product.ID, err)
		}

		product.Images = append(product.Images, models.ProductImage{ID: id, URL: url})
	}

	if product.Tags == nil {
		product.Tags = []string{}
	}

	product.Price = models.PriceFromCents(product.PriceCents)
	product.Seller = seller

	return product, nil
}

func mapWriteError(action string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", action, ErrDuplicateSlug)
	}

	return fmt.Errorf("%s: %w", action, err)
}
