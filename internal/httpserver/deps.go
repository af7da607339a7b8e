package httpserver

import (
	"context"

	"puntomoda/internal/domain"
	"puntomoda/internal/metrics"
	"puntomoda/internal/service/catalog"
	usersvc "puntomoda/internal/service/user"
)

type catalogService interface {
	List(ctx context.Context, f catalog.Filter) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, in catalog.CreateInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in catalog.UpdateInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	AddReview(ctx context.Context, productID, userID string, rating int, comment string) (*domain.Review, error)
}

type userService interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, in usersvc.UpdateInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, *domain.Session, error)
	Logout(ctx context.Context, sess *domain.Session) error
}

type cartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, variantID string, quantity int) (*domain.CartItem, error)
	UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
}

type orderService interface {
	Checkout(ctx context.Context, userID string) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Catalog  catalogService
	Users    userService
	Carts    cartService
	Orders   orderService
	Sessions sessionVerifier
	Metrics  *metrics.Metrics
}
