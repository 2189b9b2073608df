package repository

import (
	"context"

	"medsupply/internal/order/domain"
)

// PublicFeedLimit caps the cross-hospital order feed.
const PublicFeedLimit = 20

// Repository defines persistence for orders.
type Repository interface {
	// ListByUser returns the orders placed by userID, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	// ListPublic returns up to limit orders joined with the requesting hospital's name.
	ListPublic(ctx context.Context, limit int) ([]*domain.PublicOrder, error)
	Create(ctx context.Context, o *domain.Order) error
	CountAll(ctx context.Context) (int, error)
}
