package repository

import (
	"context"
	"sync"

	"medsupply/internal/audit/domain"
)

// memoryCap bounds the in-memory log; the oldest entries are dropped first.
const memoryCap = 10000

// MemoryRepository keeps audit logs in process memory.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

// NewMemoryRepository returns an empty in-memory audit repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Create appends a copy of a.
func (r *MemoryRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	c := *a
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, &c)
	if len(r.entries) > memoryCap {
		r.entries = r.entries[len(r.entries)-memoryCap:]
	}
	return nil
}

// ListRecent returns up to limit entries, newest first.
func (r *MemoryRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.entries) {
		limit = len(r.entries)
	}
	out := make([]*domain.AuditLog, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		c := *r.entries[i]
		out = append(out, &c)
	}
	return out, nil
}
