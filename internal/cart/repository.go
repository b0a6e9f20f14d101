package cart

import (
	"context"
	"sync"

	"github.com/jusastore/store-backend/internal/apperr"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = apperr.NotFound("Cart not found")
	ErrItemNotFound    = apperr.NotFound("Item not found in cart")
	ErrInvalidQuantity = apperr.InvalidArgument("Quantity must be at least 1")
	ErrQuantityLimit   = apperr.InvalidArgument("Quantity cannot exceed 999")
)

// Repository stores one cart per user.
type Repository interface {
	// Get returns ErrNotFound when the user has never had a cart.
	Get(ctx context.Context, userID string) (Cart, error)
	// Save creates or replaces the user's cart.
	Save(ctx context.Context, c Cart) error
	// Clear empties the cart and is a no-op when none exists.
	Clear(ctx context.Context, userID string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]Cart
}

func NewInMemoryRepository(seed ...Cart) *InMemoryRepository {
	r := &InMemoryRepository{carts: make(map[string]Cart, len(seed))}
	for _, c := range seed {
		r.carts[c.UserID] = c.clone()
	}
	return r
}

func (r *InMemoryRepository) Get(_ context.Context, userID string) (Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[userID]
	if !ok {
		return Cart{}, ErrNotFound
	}
	return c.clone(), nil
}

func (r *InMemoryRepository) Save(_ context.Context, c Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[c.UserID] = c.clone()
	return nil
}

func (r *InMemoryRepository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked(userID)
	return nil
}

// Locked runs fn while holding the write lock, so a caller can combine its
// own write with ClearLocked atomically.
func (r *InMemoryRepository) Locked(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn()
}

// ClearLocked must only be called from within Locked.
func (r *InMemoryRepository) ClearLocked(userID string) {
	r.clearLocked(userID)
}

func (r *InMemoryRepository) clearLocked(userID string) {
	c, ok := r.carts[userID]
	if !ok {
		return
	}
	c.Items = []LineItem{}
	c.Total = decimal.Zero
	r.carts[userID] = c
}
