package cart

import (
	"context"
	"errors"

	"puntomoda/internal/domain"
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
	return &postgresRepo{pool: pool, logger: logger.Named("cart_repo")}
}

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return FetchByUser(ctx, r.pool, userID)
}

// Ensure returns the user's cart, creating it when missing.
func (r *postgresRepo) Ensure(ctx context.Context, userID string) (*domain.Cart, error) {
	_, err := r.pool.Exec(ctx, `
INSERT INTO carts (user_id) VALUES ($1)
ON CONFLICT (user_id) DO NOTHING
`, userID)
	if err != nil {
		if sqlutil.IsForeignKeyViolation(err) || sqlutil.IsInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return FetchByUser(ctx, r.pool, userID)
}

// FetchByUser loads a cart with items, variants, attributes and product summaries.
// It is exported so transactional callers can load the cart on their own connection.
func FetchByUser(ctx context.Context, q sqlutil.Querier, userID string) (*domain.Cart, error) {
	var c domain.Cart
	err := q.QueryRow(ctx, `
SELECT id::text, user_id::text, created_at
FROM carts
WHERE user_id = $1
`, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || sqlutil.IsInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const itemsQuery = `
SELECT id::text, cart_id::text, product_variant_id::text, quantity, created_at
FROM cart_items
WHERE cart_id = $1
ORDER BY created_at ASC, id
`
	rows, err := q.Query(ctx, itemsQuery, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = []domain.CartItem{}
	var variantIDs []string
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductVariantID, &item.Quantity, &item.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		c.Items = append(c.Items, item)
		variantIDs = append(variantIDs, item.ProductVariantID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	variants, err := sqlutil.LoadVariants(ctx, q, variantIDs)
	if err != nil {
		return nil, err
	}
	for i := range c.Items {
		c.Items[i].Variant = variants[c.Items[i].ProductVariantID]
	}
	c.ComputeTotal()
	return &c, nil
}

func (r *postgresRepo) GetItem(ctx context.Context, cartID, itemID string) (*domain.CartItem, error) {
	return r.scanItem(r.pool.QueryRow(ctx, `
SELECT id::text, cart_id::text, product_variant_id::text, quantity, created_at
FROM cart_items
WHERE cart_id = $1 AND id = $2
`, cartID, itemID))
}

func (r *postgresRepo) FindItemByVariant(ctx context.Context, cartID, variantID string) (*domain.CartItem, error) {
	return r.scanItem(r.pool.QueryRow(ctx, `
SELECT id::text, cart_id::text, product_variant_id::text, quantity, created_at
FROM cart_items
WHERE cart_id = $1 AND product_variant_id = $2
`, cartID, variantID))
}

// AddItem inserts a line, or adds quantity to the existing line for the same variant.
func (r *postgresRepo) AddItem(ctx context.Context, cartID, variantID string, quantity int) (*domain.CartItem, error) {
	item, err := r.scanItem(r.pool.QueryRow(ctx, `
INSERT INTO cart_items (cart_id, product_variant_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_variant_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
RETURNING id::text, cart_id::text, product_variant_id::text, quantity, created_at
`, cartID, variantID, quantity))
	if err != nil {
		if sqlutil.IsForeignKeyViolation(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	r.logger.Debug("cart item added",
		zap.String("cart_id", cartID),
		zap.String("variant_id", variantID),
		zap.Int("quantity", item.Quantity),
	)
	return item, nil
}

func (r *postgresRepo) UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) (*domain.CartItem, error) {
	return r.scanItem(r.pool.QueryRow(ctx, `
UPDATE cart_items
SET quantity = $3
WHERE cart_id = $1 AND id = $2
RETURNING id::text, cart_id::text, product_variant_id::text, quantity, created_at
`, cartID, itemID, quantity))
}

func (r *postgresRepo) RemoveItem(ctx context.Context, cartID, itemID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`, cartID, itemID)
	if err != nil {
		if sqlutil.IsInvalidText(err) {
			return domain.ErrNotFound
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, cartID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return err
	}
	r.logger.Debug("cart cleared", zap.String("cart_id", cartID), zap.Int64("removed", cmd.RowsAffected()))
	return nil
}

func (r *postgresRepo) scanItem(row pgx.Row) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := row.Scan(&item.ID, &item.CartID, &item.ProductVariantID, &item.Quantity, &item.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || sqlutil.IsInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}
