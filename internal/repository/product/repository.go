package product

import (
	"context"

	"puntomoda/internal/domain"
)

// Filter narrows List. Nil bounds and empty strings are ignored.
type Filter struct {
	Category string
	MinPrice *domain.Money
	MaxPrice *domain.Money
	Search   string
}

type VariantInput struct {
	SKU           string
	Price         *domain.Money
	StockQuantity int
	Attributes    []domain.VariantAttribute
}

type ImageInput struct {
	URL       string
	Color     string
	IsPrimary bool
}

type CreateInput struct {
	Name        string
	Description string
	Price       domain.Money
	SalePrice   *domain.Money
	Category    string
	Images      []ImageInput
	Variants    []VariantInput
}

// UpdateInput carries the fields to change; nil leaves a column untouched.
type UpdateInput struct {
	Name           *string
	Description    *string
	Price          *domain.Money
	SalePrice      *domain.Money
	ClearSalePrice bool
	Category       *string
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByName(ctx context.Context, name string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, in CreateInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	GetVariant(ctx context.Context, id string) (*domain.ProductVariant, error)
	AddReview(ctx context.Context, r domain.Review) (*domain.Review, error)
}
