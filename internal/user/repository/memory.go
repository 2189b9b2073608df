package repository

import (
	"context"
	"sync"

	"medsupply/internal/user/domain"
)

// MemoryRepository keeps users in process memory. Used in demo mode and tests.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

// NewMemoryRepository returns an empty in-memory user repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

// GetByID returns a copy of the user for id, or nil if not found.
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.byID[id]), nil
}

// GetByEmail returns a copy of the user with the given email, or nil if not found.
func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.byEmail[email]), nil
}

// Create stores the user. Returns ErrConflict if the email is taken.
func (r *MemoryRepository) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrConflict
	}
	if _, ok := r.byID[u.ID]; ok {
		return ErrConflict
	}
	c := cloneUser(u)
	r.byID[u.ID] = c
	r.byEmail[u.Email] = c
	return nil
}

// Count returns the number of stored users.
func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
