package product

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jusastore/store-backend/internal/apperr"
)

var (
	ErrNotFound    = apperr.NotFound("Product not found")
	ErrInvalidID   = apperr.InvalidArgument("Invalid product ID format")
	ErrEmptySearch = apperr.InvalidArgument("Please enter search text")
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	// Search matches q case-insensitively against name, brand, type and
	// description. q is literal text, never a pattern.
	Search(ctx context.Context, q string) ([]Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	// GetByIDs returns the products that exist, keyed by id. Missing ids are
	// simply absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, id string, p Product) (Product, error)
	Delete(ctx context.Context, id string) error
	// Reset replaces the whole catalog.
	Reset(ctx context.Context, products []Product) error
}

// InMemoryRepository backs the memory store driver and tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{storage: make([]Product, 0, len(seed))}
	r.storage = append(r.storage, seed...)
	return r
}

func (r *InMemoryRepository) List(_ context.Context, f Filter) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InMemoryRepository) Search(_ context.Context, q string) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(q)
	out := make([]Product, 0)
	for _, p := range r.storage {
		for _, field := range []string{p.Name, p.Brand, p.Type, p.Description} {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, p)
				break
			}
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) GetByIDs(_ context.Context, ids []string) (map[string]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make(map[string]Product, len(ids))
	for _, p := range r.storage {
		if _, ok := want[p.ID]; ok {
			out[p.ID] = p
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage = append(r.storage, p)
	return p, nil
}

func (r *InMemoryRepository) Update(_ context.Context, id string, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			p.ID = id
			p.CreatedAt = r.storage[i].CreatedAt
			r.storage[i] = p
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) Reset(_ context.Context, products []Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage = make([]Product, 0, len(products))
	r.storage = append(r.storage, products...)
	return nil
}

func sortNewestFirst(ps []Product) {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].CreatedAt.After(ps[j].CreatedAt)
	})
}
