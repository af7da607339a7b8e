package order

import (
	"context"
	"errors"
	"testing"

	"puntomoda/internal/domain"
	cartrepo "puntomoda/internal/repository/cart"
	orderrepo "puntomoda/internal/repository/order"
	"puntomoda/internal/repository/sqlutil/sqltest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutIntegration(t *testing.T) {
	ctx := context.Background()
	pool := sqltest.Pool(ctx, t)
	f := sqltest.Seed(ctx, t, pool, "10.00", 5)

	carts := cartrepo.NewPostgres(pool, nil)
	svc := New(orderrepo.NewPostgres(pool, nil), nil, nil)

	stock := func() int {
		var n int
		require.NoError(t, pool.QueryRow(ctx, `SELECT stock_quantity FROM product_variants WHERE id = $1`, f.VariantID).Scan(&n))
		return n
	}
	count := func(table string) int {
		var n int
		require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n))
		return n
	}

	t.Run("over stock", func(t *testing.T) {
		_, err := carts.AddItem(ctx, f.CartID, f.VariantID, 6)
		require.NoError(t, err)

		_, err = svc.Checkout(ctx, f.UserID)
		var stockErr *domain.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, f.SKU, stockErr.SKU)
		assert.Equal(t, 5, stock())
		assert.Equal(t, 0, count("orders"))
		assert.Equal(t, 0, count("order_items"))

		require.NoError(t, carts.Clear(ctx, f.CartID))
	})

	t.Run("success", func(t *testing.T) {
		_, err := carts.AddItem(ctx, f.CartID, f.VariantID, 2)
		require.NoError(t, err)

		o, err := svc.Checkout(ctx, f.UserID)
		require.NoError(t, err)
		assert.Equal(t, "20.00", o.TotalAmount.String())
		require.Len(t, o.Items, 1)
		require.NotNil(t, o.Items[0].Variant)
		assert.Equal(t, "Blue Shirt", o.Items[0].Variant.Product.Name)
		assert.Equal(t, 3, stock())

		c, err := carts.GetByUser(ctx, f.UserID)
		require.NoError(t, err)
		assert.Empty(t, c.Items)
	})

	t.Run("empty cart twice", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			_, err := svc.Checkout(ctx, f.UserID)
			assert.True(t, errors.Is(err, domain.ErrEmptyCart))
		}
		assert.Equal(t, 1, count("orders"))
		assert.Equal(t, 3, stock())
	})

	t.Run("history", func(t *testing.T) {
		orders, err := svc.ListByUser(ctx, f.UserID)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "20.00", orders[0].TotalAmount.String())
	})
}
