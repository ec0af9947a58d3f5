package cache

import (
	"strconv"
	"strings"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/models"
)

const (
	// ListingNamespace prefixes every catalog listing key.
	ListingNamespace = "products:"
	// ProductNamespace prefixes single-product keys; the rest is the slug.
	ProductNamespace = "product:"

	keyDelimiter = "|"

	sentinelAll  = "all"
	sentinelNone = "none"
	sentinelZero = "0"
	sentinelInf  = "inf"
)

// ListingKey derives the cache key for a listing query. Every parameter is
// normalized first and always present in the key; absent values are written as
// their sentinel. Free-form strings are quoted, so a literal value can never
// collide with a sentinel or swallow the delimiter.
func ListingKey(q models.ProductQuery) string {
	n := q.Normalized()

	fields := []string{
		"page=" + strconv.Itoa(n.Page),
		"limit=" + strconv.Itoa(n.Limit),
		"category=" + textOr(n.Category, sentinelAll),
		"q=" + textOr(n.Query, sentinelNone),
		"min=" + centsOr(n.MinPriceCents, sentinelZero),
		"max=" + centsOr(n.MaxPriceCents, sentinelInf),
		"sort=" + n.SortBy,
		"order=" + n.SortOrder,
		"seller=" + textOr(n.SellerID, sentinelAll),
	}

	return ListingNamespace + strings.Join(fields, keyDelimiter)
}

// ProductKey derives the cache key for a single product looked up by slug.
func ProductKey(slug string) string {
	return ProductNamespace + slug
}

func textOr(v, sentinel string) string {
	if v == "" {
		return sentinel
	}

	return strconv.Quote(v)
}

func centsOr(v *int64, sentinel string) string {
	if v == nil {
		return sentinel
	}

	return strconv.FormatInt(*v, 10)
}
