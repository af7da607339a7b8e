package cart

import (
	"context"

	"puntomoda/internal/domain"
)

// Repository persists carts and their items. Item operations are scoped to a cart id.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	Ensure(ctx context.Context, userID string) (*domain.Cart, error)
	GetItem(ctx context.Context, cartID, itemID string) (*domain.CartItem, error)
	FindItemByVariant(ctx context.Context, cartID, variantID string) (*domain.CartItem, error)
	AddItem(ctx context.Context, cartID, variantID string, quantity int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, cartID, itemID string) error
	Clear(ctx context.Context, cartID string) error
}
