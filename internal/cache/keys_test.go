package cache_test

import (
	"strings"
	"testing"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/cache"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/models"
	"github.com/stretchr/testify/assert"
)

func cents(v int64) *int64 { return &v }

func TestListingKey_Format(t *testing.T) {
	assert.Equal(t,
		"products:page=1|limit=24|category=all|q=none|min=0|max=inf|sort=createdAt|order=desc|seller=all",
		cache.ListingKey(models.ProductQuery{}),
	)

	assert.Equal(t,
		`products:page=2|limit=10|category="electronics"|q="laptop"|min=1000|max=5000|sort=priceCents|order=asc|seller="s-1"`,
		cache.ListingKey(models.ProductQuery{
			Page:          2,
			Limit:         10,
			Category:      "electronics",
			Query:         "laptop",
			MinPriceCents: cents(1000),
			MaxPriceCents: cents(5000),
			SortBy:        models.SortByPriceCents,
			SortOrder:     models.SortAsc,
			SellerID:      "s-1",
		}),
	)
}

func TestListingKey_EquivalentQueriesShareAKey(t *testing.T) {
	tests := []struct {
		name string
		a, b models.ProductQuery
	}{
		{name: "page defaults", a: models.ProductQuery{}, b: models.ProductQuery{Page: 1}},
		{name: "non-positive page", a: models.ProductQuery{Page: -3}, b: models.ProductQuery{Page: 1}},
		{name: "limit default", a: models.ProductQuery{}, b: models.ProductQuery{Limit: models.DefaultLimit}},
		{name: "limit cap", a: models.ProductQuery{Limit: 5000}, b: models.ProductQuery{Limit: models.MaxLimit}},
		{name: "category sentinel", a: models.ProductQuery{Category: "all"}, b: models.ProductQuery{}},
		{name: "seller sentinel", a: models.ProductQuery{SellerID: "ALL"}, b: models.ProductQuery{}},
		{name: "search case and space", a: models.ProductQuery{Query: "  Laptop "}, b: models.ProductQuery{Query: "laptop"}},
		{name: "zero min price", a: models.ProductQuery{MinPriceCents: cents(0)}, b: models.ProductQuery{}},
		{name: "unknown sort field", a: models.ProductQuery{SortBy: "rank"}, b: models.ProductQuery{SortBy: models.SortByCreatedAt}},
		{name: "order case", a: models.ProductQuery{SortOrder: "ASC"}, b: models.ProductQuery{SortOrder: "asc"}},
		{name: "unknown order", a: models.ProductQuery{SortOrder: "sideways"}, b: models.ProductQuery{SortOrder: "desc"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, cache.ListingKey(tc.a), cache.ListingKey(tc.b))
		})
	}
}

func TestListingKey_DistinctQueriesNeverCollide(t *testing.T) {
	queries := map[string]models.ProductQuery{
		"default":              {},
		"page 2":               {Page: 2},
		"limit 10":             {Limit: 10},
		"category":             {Category: "electronics"},
		"category case":        {Category: "Electronics"},
		"literal none":         {Category: "none"},
		"literal inf category": {Category: "inf"},
		"search":               {Query: "all"},
		"search none":          {Query: "none"},
		"min":                  {MinPriceCents: cents(100)},
		"max zero":             {MaxPriceCents: cents(0)},
		"max":                  {MaxPriceCents: cents(100)},
		"max negative":         {MaxPriceCents: cents(-1)},
		"last page":            {Page: models.MaxPage},
		"sort price":           {SortBy: models.SortByPriceCents},
		"sort rating":          {SortBy: models.SortBySellerRating},
		"order asc":            {SortOrder: models.SortAsc},
		"seller":               {SellerID: "7b0c"},
		"delimiter in value":   {Category: `a|q="b"`},
		"split across fields":  {Category: "a", Query: "b"},
		"quote in value":       {Category: `"all"`},
	}

	seen := make(map[string]string, len(queries))
	for name, q := range queries {
		key := cache.ListingKey(q)
		if other, ok := seen[key]; ok {
			t.Fatalf("queries %q and %q share key %s", name, other, key)
		}
		seen[key] = name
	}
}

func TestListingKey_IsDeterministic(t *testing.T) {
	q := models.ProductQuery{Category: "books", Query: "go", MaxPriceCents: cents(2500)}

	first := cache.ListingKey(q)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, cache.ListingKey(q))
	}
}

func TestNamespacesDoNotOverlap(t *testing.T) {
	itemKey := cache.ProductKey("s:weird-slug")

	assert.Equal(t, "product:s:weird-slug", itemKey)
	assert.False(t, strings.HasPrefix(itemKey, cache.ListingNamespace))
	assert.True(t, strings.HasPrefix(cache.ListingKey(models.ProductQuery{}), cache.ListingNamespace))
}
