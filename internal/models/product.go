package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Seller struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	SellerRating float64   `json:"sellerRating"`
}

type ProductImage struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

type Product struct {
	ID          uuid.UUID      `json:"id"`
	SellerID    uuid.UUID      `json:"sellerId"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	PriceCents  int64          `json:"priceCents"`
	Price       float64        `json:"price"`
	Discount    int            `json:"discount"`
	Category    string         `json:"category"`
	Stock       int            `json:"stock"`
	Tags        []string       `json:"tags"`
	Images      []ProductImage `json:"images"`
	Seller      *Seller        `json:"seller,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// PriceFromCents converts the stored minor-unit price to the display price.
func PriceFromCents(cents int64) float64 {
	return float64(cents) / 100
}

// SetPriceCents keeps PriceCents and the derived Price in step.
func (p *Product) SetPriceCents(cents int64) {
	p.PriceCents = cents
	p.Price = PriceFromCents(cents)
}

type CreateProductRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	PriceCents  int64    `json:"priceCents" validate:"required,gt=0"`
	Discount    int      `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
	Category    string   `json:"category" validate:"required,min=2,max=100"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	ImageURLs   []string `json:"images" validate:"required,min=5,dive,url"`
}

type UpdateProductRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Slug        *string   `json:"slug,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	PriceCents  *int64    `json:"priceCents,omitempty" validate:"omitempty,gt=0"`
	Discount    *int      `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
	Category    *string   `json:"category,omitempty" validate:"omitempty,min=2,max=100"`
	Stock       *int      `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Tags        []string  `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	ImageURLs   *[]string `json:"images,omitempty" validate:"omitempty,min=1,dive,url"`
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the input, collapses every run of non-alphanumerics into a
// single dash and trims leading/trailing dashes.
func Slugify(s string) string {
	slug := slugSeparators.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}
