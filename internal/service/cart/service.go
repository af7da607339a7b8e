package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"puntomoda/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type cartRepo interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	Ensure(ctx context.Context, userID string) (*domain.Cart, error)
	GetItem(ctx context.Context, cartID, itemID string) (*domain.CartItem, error)
	FindItemByVariant(ctx context.Context, cartID, variantID string) (*domain.CartItem, error)
	AddItem(ctx context.Context, cartID, variantID string, quantity int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, cartID, itemID string) error
	Clear(ctx context.Context, cartID string) error
}

type variantRepo interface {
	GetVariant(ctx context.Context, id string) (*domain.ProductVariant, error)
}

type Service struct {
	repo     cartRepo
	variants variantRepo
	logger   *zap.Logger
}

func New(repo cartRepo, variants variantRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, variants: variants, logger: logger.Named("cart_service")}
}

// Get returns the user's cart with its computed total, creating an empty cart
// on first access.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	if err := validateID("userId", userID); err != nil {
		return nil, err
	}
	return s.repo.Ensure(ctx, userID)
}

// AddItem puts quantity units of a variant in the cart. Adding a variant that is
// already present merges the quantities; the merged amount must fit in stock.
func (s *Service) AddItem(ctx context.Context, userID, variantID string, quantity int) (*domain.CartItem, error) {
	if err := validateID("userId", userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(variantID) == "" {
		return nil, domain.Invalidf("productVariantId is required")
	}
	if quantity < 1 {
		return nil, domain.Invalidf("quantity must be at least 1")
	}

	variant, err := s.variants.GetVariant(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("product variant: %w", err)
	}
	if variant.StockQuantity < quantity {
		return nil, &domain.InsufficientStockError{SKU: variant.SKU, Available: variant.StockQuantity, Requested: quantity}
	}

	cart, err := s.repo.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindItemByVariant(ctx, cart.ID, variantID)
	switch {
	case err == nil:
		merged := existing.Quantity + quantity
		if variant.StockQuantity < merged {
			return nil, &domain.InsufficientStockError{SKU: variant.SKU, Available: variant.StockQuantity, Requested: merged}
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	item, err := s.repo.AddItem(ctx, cart.ID, variantID, quantity)
	if err != nil {
		return nil, err
	}
	item.Variant = variant
	s.logger.Debug("item added to cart",
		zap.String("user_id", userID),
		zap.String("sku", variant.SKU),
		zap.Int("quantity", item.Quantity),
	)
	return item, nil
}

// UpdateItem sets the quantity of an item in the user's cart.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, domain.Invalidf("quantity must be at least 1")
	}
	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, fmt.Errorf("cart item: %w", err)
	}
	variant, err := s.variants.GetVariant(ctx, item.ProductVariantID)
	if err != nil {
		return nil, fmt.Errorf("product variant: %w", err)
	}
	if variant.StockQuantity < quantity {
		return nil, &domain.InsufficientStockError{SKU: variant.SKU, Available: variant.StockQuantity, Requested: quantity}
	}
	updated, err := s.repo.UpdateQuantity(ctx, cart.ID, itemID, quantity)
	if err != nil {
		return nil, err
	}
	updated.Variant = variant
	return updated, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) error {
	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return fmt.Errorf("cart item: %w", err)
	}
	return nil
}

// Clear empties the user's cart. The cart itself is kept; a user without a
// cart gets ErrNotFound.
func (s *Service) Clear(ctx context.Context, userID string) error {
	cart, err := s.userCart(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.Clear(ctx, cart.ID)
}

func (s *Service) userCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if err := validateID("userId", userID); err != nil {
		return nil, err
	}
	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cart: %w", err)
	}
	return cart, nil
}

// ensureCart resolves the user's cart the same way Get and AddItem do, so item
// operations on a user without a cart report the missing item.
func (s *Service) ensureCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if err := validateID("userId", userID); err != nil {
		return nil, err
	}
	cart, err := s.repo.Ensure(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cart: %w", err)
	}
	return cart, nil
}

func validateID(name, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Invalidf("%s is required", name)
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.Invalidf("%s must be a valid id", name)
	}
	return nil
}
