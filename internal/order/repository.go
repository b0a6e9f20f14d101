package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jusastore/store-backend/internal/apperr"
)

var (
	ErrNotFound         = apperr.NotFound("Order not found")
	ErrInvalidID        = apperr.InvalidArgument("Invalid order ID format")
	ErrEmptyCart        = apperr.InvalidArgument("Cart is empty. Cannot place order.")
	ErrInconsistentCart = apperr.DataConsistency("Failed to create order due to inconsistent product data. Please try again or contact support.")
	ErrNotCancellable   = apperr.InvalidArgument("Order can no longer be cancelled")
	ErrPaymentMethod    = apperr.InvalidArgument("Unsupported payment method")
	// ErrStatusChanged is returned by UpdateStatus when the stored status no
	// longer matches the expected one.
	ErrStatusChanged = apperr.InvalidArgument("Order status has changed")
)

// Repository defines persistence operations for orders.
type Repository interface {
	// Place stores the order and empties its owner's cart as one unit.
	// Either both happen or neither does.
	Place(ctx context.Context, o Order) error
	GetByID(ctx context.Context, id string) (Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) (Order, error)
}

// CartLocker is the slice of the in-memory cart store needed to clear a
// cart in the same critical section as the order write.
type CartLocker interface {
	Locked(fn func() error) error
	ClearLocked(userID string)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
	carts  CartLocker
}

func NewInMemoryRepository(carts CartLocker, seed ...Order) *InMemoryRepository {
	r := &InMemoryRepository{orders: make(map[string]Order, len(seed)), carts: carts}
	for _, o := range seed {
		r.orders[o.ID] = cloneOrder(o)
	}
	return r
}

func (r *InMemoryRepository) Place(_ context.Context, o Order) error {
	return r.carts.Locked(func() error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.orders[o.ID] = cloneOrder(o)
		r.carts.ClearLocked(o.UserID)
		return nil
	})
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, id string, from, to Status, at time.Time) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	if o.Status != from {
		return Order{}, ErrStatusChanged
	}
	o.Status = to
	o.UpdatedAt = at
	r.orders[id] = o
	return cloneOrder(o), nil
}

func cloneOrder(o Order) Order {
	items := make([]LineItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
