package order

import (
	"context"

	"puntomoda/internal/domain"
)

// Tx exposes the statements checkout runs inside one store transaction.
type Tx interface {
	LoadCart(ctx context.Context, userID string) (*domain.Cart, error)
	InsertOrder(ctx context.Context, userID string, total domain.Money) (*domain.Order, error)
	InsertItem(ctx context.Context, item domain.OrderItem) (*domain.OrderItem, error)
	// DecrementStock returns domain.ErrInsufficientStock when the guard rejects the update.
	DecrementStock(ctx context.Context, variantID string, quantity int) error
	ClearCart(ctx context.Context, cartID string) error
}

type Repository interface {
	// WithTx runs fn in a transaction, committing when fn returns nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(Tx) error) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}
