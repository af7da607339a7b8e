package order

import (
	"context"
	"errors"

	"puntomoda/internal/domain"
	cartrepo "puntomoda/internal/repository/cart"
	"puntomoda/internal/repository/sqlutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("order_repo")}
}

func (r *postgresRepo) WithTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) LoadCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return cartrepo.FetchByUser(ctx, t.tx, userID)
}

func (t *pgTx) InsertOrder(ctx context.Context, userID string, total domain.Money) (*domain.Order, error) {
	o := domain.Order{UserID: userID, TotalAmount: total}
	err := t.tx.QueryRow(ctx, `
INSERT INTO orders (user_id, total_amount)
VALUES ($1, $2)
RETURNING id::text, created_at
`, userID, total).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (t *pgTx) InsertItem(ctx context.Context, item domain.OrderItem) (*domain.OrderItem, error) {
	out := item
	err := t.tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_variant_id, quantity, price_at_purchase)
VALUES ($1, $2, $3, $4)
RETURNING id::text
`, item.OrderID, item.ProductVariantID, item.Quantity, item.PriceAtPurchase).Scan(&out.ID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *pgTx) DecrementStock(ctx context.Context, variantID string, quantity int) error {
	cmd, err := t.tx.Exec(ctx, `
UPDATE product_variants
SET stock_quantity = stock_quantity - $2
WHERE id = $1 AND stock_quantity >= $2
`, variantID, quantity)
	if err != nil {
		if sqlutil.IsCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

func (t *pgTx) ClearCart(ctx context.Context, cartID string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `
SELECT id::text, user_id::text, total_amount, created_at
FROM orders
WHERE id = $1
`, id).Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || sqlutil.IsInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	orders := []domain.Order{o}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, user_id::text, total_amount, created_at
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC, id
`, userID)
	if err != nil {
		if sqlutil.IsInvalidText(err) {
			return []domain.Order{}, nil
		}
		return nil, err
	}
	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	r.logger.Debug("listed orders", zap.String("user_id", userID), zap.Int("count", len(orders)))
	return orders, nil
}

// loadItems attaches order items, each with its variant and product summary.
func (r *postgresRepo) loadItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []domain.OrderItem{}
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, product_variant_id::text, quantity, price_at_purchase
FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY id
`, ids)
	if err != nil {
		return err
	}
	var variantIDs []string
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductVariantID, &it.Quantity, &it.PriceAtPurchase); err != nil {
			rows.Close()
			return err
		}
		o := &orders[index[it.OrderID]]
		o.Items = append(o.Items, it)
		variantIDs = append(variantIDs, it.ProductVariantID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	variants, err := sqlutil.LoadVariants(ctx, r.pool, variantIDs)
	if err != nil {
		return err
	}
	for i := range orders {
		for j := range orders[i].Items {
			orders[i].Items[j].Variant = variants[orders[i].Items[j].ProductVariantID]
		}
	}
	return nil
}
