package user

import (
	"context"

	"puntomoda/internal/domain"
)

type UpdateInput struct {
	Name  *string
	Email *string
}

// Repository persists users. Create also opens the user's cart.
type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error)
}
