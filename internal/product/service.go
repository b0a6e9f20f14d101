package product

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jusastore/store-backend/internal/apperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	f.Category = normalizeCategory(f.Category)
	return s.repo.List(ctx, f)
}

func (s *Service) Search(ctx context.Context, q string) ([]Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptySearch
	}
	return s.repo.Search(ctx, q)
}

func (s *Service) GetByID(ctx context.Context, id string) (Product, error) {
	if !ValidID(id) {
		return Product{}, ErrInvalidID
	}
	return s.repo.GetByID(ctx, id)
}

// Lookup resolves the given ids to their current catalog entries. Ids that
// are malformed or no longer exist are absent from the result.
func (s *Service) Lookup(ctx context.Context, ids []string) (map[string]Product, error) {
	valid := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || !ValidID(id) {
			continue
		}
		seen[id] = struct{}{}
		valid = append(valid, id)
	}
	return s.repo.GetByIDs(ctx, valid)
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if err := validateProductPayload(&p); err != nil {
		return Product{}, err
	}
	now := s.now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id string, p Product) (Product, error) {
	if !ValidID(id) {
		return Product{}, ErrInvalidID
	}
	if err := validateProductPayload(&p); err != nil {
		return Product{}, err
	}
	p.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

// Replace swaps the whole catalog for products. Every entry gets a fresh id.
func (s *Service) Replace(ctx context.Context, products []Product) ([]Product, error) {
	now := s.now().UTC()
	for i := range products {
		if err := validateProductPayload(&products[i]); err != nil {
			return nil, err
		}
		products[i].ID = uuid.NewString()
		products[i].CreatedAt = now
		products[i].UpdatedAt = now
	}
	if err := s.repo.Reset(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// ValidID reports whether id is a well-formed product identifier.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validateProductPayload normalizes p in place and collects every problem.
func validateProductPayload(p *Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Type = strings.TrimSpace(p.Type)
	p.Category = normalizeCategory(p.Category)
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}

	errs := map[string]string{}
	if p.Name == "" {
		errs["name"] = "name is required"
	}
	if p.Price.IsNegative() {
		errs["price"] = "price must be >= 0"
	}
	if len(errs) > 0 {
		return apperr.Invalid("Invalid product", errs)
	}
	p.Price = p.Price.Round(2)
	return nil
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
