// Package order places orders from carts and reads them back.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"puntomoda/internal/domain"
	"puntomoda/internal/metrics"
	orderrepo "puntomoda/internal/repository/order"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type orderRepo interface {
	WithTx(ctx context.Context, fn func(orderrepo.Tx) error) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type Service struct {
	repo    orderRepo
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func New(repo orderRepo, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, metrics: m, logger: logger.Named("order_service")}
}

// Checkout converts the user's cart into an order in a single transaction:
// stock is verified and decremented, prices are frozen on the order items,
// and the cart is emptied. On any failure nothing is written.
func (s *Service) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.Invalidf("userId is required")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.Invalidf("userId must be a valid id")
	}

	var placed *domain.Order
	err := s.repo.WithTx(ctx, func(tx orderrepo.Tx) error {
		cart, err := tx.LoadCart(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrEmptyCart
			}
			return fmt.Errorf("load cart: %w", err)
		}
		if len(cart.Items) == 0 {
			return domain.ErrEmptyCart
		}

		var total domain.Money
		for _, item := range cart.Items {
			v := item.Variant
			if v == nil {
				return fmt.Errorf("cart item %s: variant %s: %w", item.ID, item.ProductVariantID, domain.ErrNotFound)
			}
			if v.StockQuantity < item.Quantity {
				return &domain.InsufficientStockError{SKU: v.SKU, Available: v.StockQuantity, Requested: item.Quantity}
			}
			total = total.Plus(v.Price.Times(item.Quantity))
		}

		order, err := tx.InsertOrder(ctx, userID, total)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range cart.Items {
			inserted, err := tx.InsertItem(ctx, domain.OrderItem{
				OrderID:          order.ID,
				ProductVariantID: item.ProductVariantID,
				Quantity:         item.Quantity,
				PriceAtPurchase:  item.Variant.Price,
			})
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			inserted.Variant = item.Variant
			order.Items = append(order.Items, *inserted)
			if err := tx.DecrementStock(ctx, item.ProductVariantID, item.Quantity); err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					return &domain.InsufficientStockError{SKU: item.Variant.SKU, Requested: item.Quantity}
				}
				return fmt.Errorf("decrement stock: %w", err)
			}
		}

		if err := tx.ClearCart(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		placed = order
		return nil
	})
	if err != nil {
		s.observeFailure(userID, err)
		return nil, err
	}

	s.metrics.ObserveCheckout(metrics.OutcomeSuccess)
	s.metrics.ObserveOrderTotal(placed.TotalAmount.InexactFloat64())
	s.logger.Info("order placed",
		zap.String("order_id", placed.ID),
		zap.String("user_id", userID),
		zap.String("total", placed.TotalAmount.String()),
	)

	// The order is already committed; a failed reload returns what was written.
	full, err := s.repo.GetByID(ctx, placed.ID)
	if err != nil {
		s.logger.Warn("reload placed order", zap.String("order_id", placed.ID), zap.Error(err))
		return placed, nil
	}
	return full, nil
}

func (s *Service) observeFailure(userID string, err error) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		s.metrics.ObserveCheckout(metrics.OutcomeEmptyCart)
	case errors.As(err, &stockErr):
		s.metrics.ObserveCheckout(metrics.OutcomeInsufficientStock)
		s.logger.Info("checkout rejected",
			zap.String("user_id", userID),
			zap.String("sku", stockErr.SKU),
			zap.Int("requested", stockErr.Requested),
			zap.Int("available", stockErr.Available),
		)
	default:
		s.metrics.ObserveCheckout(metrics.OutcomeError)
		s.logger.Error("checkout failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalidf("order id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// ListByUser returns the user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.Invalidf("userId is required")
	}
	return s.repo.ListByUser(ctx, userID)
}
