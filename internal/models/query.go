package models

import (
	"math"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 24
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within int for every allowed limit.
	MaxPage = math.MaxInt / MaxLimit

	SortByCreatedAt    = "createdAt"
	SortByPriceCents   = "priceCents"
	SortByTitle        = "title"
	SortBySellerRating = "sellerRating"

	SortAsc  = "asc"
	SortDesc = "desc"
)

var sortFields = map[string]struct{}{
	SortByCreatedAt:    {},
	SortByPriceCents:   {},
	SortByTitle:        {},
	SortBySellerRating: {},
}

// ProductQuery carries every parameter that can change the result of a catalog
// listing. Zero values mean "absent"; Normalized resolves them to defaults.
type ProductQuery struct {
	Page          int
	Limit         int
	Category      string
	Query         string
	MinPriceCents *int64
	MaxPriceCents *int64
	SortBy        string
	SortOrder     string
	SellerID      string
}

// Normalized returns the canonical form of the query. Two queries that select
// the same rows in the same order normalize to equal values.
func (q ProductQuery) Normalized() ProductQuery {
	n := ProductQuery{
		Page:      q.Page,
		Limit:     q.Limit,
		Category:  strings.TrimSpace(q.Category),
		Query:     strings.ToLower(strings.TrimSpace(q.Query)),
		SortBy:    strings.TrimSpace(q.SortBy),
		SortOrder: strings.ToLower(strings.TrimSpace(q.SortOrder)),
		SellerID:  strings.ToLower(strings.TrimSpace(q.SellerID)),
	}

	if n.Page < 1 {
		n.Page = DefaultPage
	}
	if n.Page > MaxPage {
		n.Page = MaxPage
	}

	if n.Limit < 1 {
		n.Limit = DefaultLimit
	}
	if n.Limit > MaxLimit {
		n.Limit = MaxLimit
	}

	// "all" is the documented sentinel for "no category/seller filter"
	if strings.EqualFold(n.Category, "all") {
		n.Category = ""
	}
	if n.SellerID == "all" {
		n.SellerID = ""
	}

	if q.MinPriceCents != nil && *q.MinPriceCents > 0 {
		v := *q.MinPriceCents
		n.MinPriceCents = &v
	}
	// a negative ceiling is kept: it matches nothing, unlike an absent one
	if q.MaxPriceCents != nil {
		v := *q.MaxPriceCents
		n.MaxPriceCents = &v
	}

	if _, ok := sortFields[n.SortBy]; !ok {
		n.SortBy = SortByCreatedAt
	}

	if n.SortOrder != SortAsc && n.SortOrder != SortDesc {
		n.SortOrder = SortDesc
	}

	return n
}

// Offset is the number of rows skipped for the query's page.
func (q ProductQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ProductPage is the cached unit for listing reads.
type ProductPage struct {
	Products   []*Product `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// NewProductPage assembles a listing page for a normalized query.
func NewProductPage(q ProductQuery, products []*Product, total int) *ProductPage {
	if products == nil {
		products = []*Product{}
	}

	pages := 0
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}

	return &ProductPage{
		Products: products,
		Pagination: Pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: pages,
		},
	}
}
