package repository

import (
	"context"
	"sort"
	"sync"

	"medsupply/internal/order/domain"
)

// HospitalNamer resolves a user ID to the hospital display name. The memory
// repository uses it in place of the users join.
type HospitalNamer func(ctx context.Context, userID string) string

// MemoryRepository keeps orders in process memory.
type MemoryRepository struct {
	mu     sync.Mutex
	orders []*domain.Order
	namer  HospitalNamer
}

// NewMemoryRepository returns an empty order repository. The public feed lists
// the most recently created orders first. namer may be nil; the
// public feed then leaves hospital names empty.
func NewMemoryRepository(namer HospitalNamer) *MemoryRepository {
	return &MemoryRepository{namer: namer}
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	r.mu.Lock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			c := *o
			out = append(out, &c)
		}
	}
	r.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (r *MemoryRepository) ListPublic(ctx context.Context, limit int) ([]*domain.PublicOrder, error) {
	if limit <= 0 {
		limit = PublicFeedLimit
	}
	r.mu.Lock()
	n := min(limit, len(r.orders))
	picked := make([]domain.Order, 0, n)
	for i := len(r.orders) - 1; i >= 0 && len(picked) < n; i-- {
		picked = append(picked, *r.orders[i])
	}
	r.mu.Unlock()

	out := make([]*domain.PublicOrder, 0, n)
	for _, o := range picked {
		p := &domain.PublicOrder{
			ID:             o.ID,
			MedicationName: o.MedicationName,
			Quantity:       o.Quantity,
			Status:         o.Status,
		}
		if r.namer != nil {
			p.HospitalName = r.namer(ctx, o.UserID)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *MemoryRepository) Create(ctx context.Context, o *domain.Order) error {
	c := *o
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, &c)
	return nil
}

func (r *MemoryRepository) CountAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders), nil
}
