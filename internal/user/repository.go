package user

import (
	"context"
	"sync"

	"github.com/jusastore/store-backend/internal/apperr"
)

var (
	ErrNotFound           = apperr.NotFound("User not found")
	ErrInvalidID          = apperr.InvalidArgument("Invalid user ID format")
	ErrInvalidCredentials = apperr.Unauthenticated("Invalid credentials")
	ErrEmailExists        = apperr.New(apperr.KindAlreadyExists, "User already exists")
	ErrWrongPassword      = apperr.InvalidArgument("Current password is incorrect")
	ErrForbidden          = apperr.PermissionDenied("You can only access your own account")
)

type Repository interface {
	GetByID(ctx context.Context, id string) (User, error)
	// GetByEmail expects an already normalized address.
	GetByEmail(ctx context.Context, email string) (User, error)
	// Create fails with ErrEmailExists when the email is taken.
	Create(ctx context.Context, u User) (User, error)
	// Update replaces the stored record with u, matched on u.ID.
	Update(ctx context.Context, u User) (User, error)
}

// InMemoryRepository backs the memory store driver and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users []User
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{users: make([]User, 0, len(seed))}
	repo.users = append(repo.users, seed...)
	return repo
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return User{}, ErrEmailExists
		}
	}
	r.users = append(r.users, u)
	return u, nil
}

func (r *InMemoryRepository) Update(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, existing := range r.users {
		if existing.ID == u.ID {
			idx = i
		} else if existing.Email == u.Email {
			return User{}, ErrEmailExists
		}
	}
	if idx < 0 {
		return User{}, ErrNotFound
	}
	r.users[idx] = u
	return u, nil
}
