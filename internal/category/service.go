package category

import (
	"context"

	"github.com/jusastore/store-backend/internal/apperr"
	"github.com/jusastore/store-backend/internal/product"
)

var ErrUnknownCollection = apperr.NotFound("Collection not found")

// Catalog is the slice of the product service collections read from.
type Catalog interface {
	List(ctx context.Context, f product.Filter) ([]product.Product, error)
}

// Service resolves storefront collections to catalog listings.
type Service struct {
	catalog     Catalog
	collections []Collection
}

func NewService(catalog Catalog, collections []Collection) *Service {
	return &Service{catalog: catalog, collections: collections}
}

// List returns up to `limit` collections.
func (s *Service) List(limit int) []Collection {
	if limit <= 0 || limit > len(s.collections) {
		limit = len(s.collections)
	}
	out := make([]Collection, limit)
	copy(out, s.collections[:limit])
	return out
}

func (s *Service) Products(ctx context.Context, slug string) ([]product.Product, error) {
	for _, c := range s.collections {
		if c.Slug == slug {
			return s.catalog.List(ctx, c.Filter)
		}
	}
	return nil, ErrUnknownCollection
}
