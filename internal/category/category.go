package category

import "github.com/jusastore/store-backend/internal/product"

// Collection is a named storefront section backed by a catalog filter.
type Collection struct {
	Slug   string         `json:"slug"`
	Name   string         `json:"name"`
	Filter product.Filter `json:"-"`
}

// DefaultCollections are the sections the storefront navigation links to.
var DefaultCollections = []Collection{
	{Slug: "women", Name: "Women", Filter: product.Filter{Category: "women"}},
	{Slug: "men", Name: "Men", Filter: product.Filter{Category: "men"}},
	{Slug: "sale", Name: "Sale", Filter: product.Filter{Sale: true}},
	{Slug: "new-in", Name: "New In", Filter: product.Filter{New: true}},
}
