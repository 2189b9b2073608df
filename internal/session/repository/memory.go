package repository

import (
	"context"
	"sync"
	"time"

	"medsupply/internal/session/domain"
)

// MemoryRepository keeps sessions in process memory. Sessions do not survive a restart.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

// NewMemoryRepository returns an empty in-memory session repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]*domain.Session)}
}

// GetByID returns a copy of the session for id, or nil if not found.
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSession(r.sessions[id]), nil
}

// Create stores a copy of s.
func (r *MemoryRepository) Create(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

// Update replaces the stored session. Updating a deleted session is a no-op.
func (r *MemoryRepository) Update(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return nil
	}
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

// Delete removes the session. Unknown ids are ignored.
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// DeleteExpired removes sessions whose ExpiresAt is not after now and returns how many were removed.
func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func cloneSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.OTPExpiresAt != nil {
		t := *s.OTPExpiresAt
		c.OTPExpiresAt = &t
	}
	return &c
}
