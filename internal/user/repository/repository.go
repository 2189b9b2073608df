package repository

import (
	"context"
	"errors"

	"medsupply/internal/user/domain"
)

// ErrConflict is returned by Create when the email address is already registered.
var ErrConflict = errors.New("user: email already exists")

// Repository defines persistence for users (the credential store).
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Count(ctx context.Context) (int, error)
}
