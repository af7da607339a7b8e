// Package sqltest opens a migrated, empty Postgres database for integration tests.
package sqltest

import (
	"context"
	"os"
	"testing"

	"puntomoda/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool connects to TEST_DB_DSN, applies migrations and truncates every table.
// The test is skipped when TEST_DB_DSN is unset.
func Pool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	Reset(ctx, t, pool)
	return pool
}

func Reset(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(ctx, `
TRUNCATE order_items, orders, cart_items, carts, reviews, product_images,
         variant_attributes, product_variants, products, sessions, users
RESTART IDENTITY CASCADE
`)
	if err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

// Fixture holds ids created by Seed.
type Fixture struct {
	UserID    string
	CartID    string
	ProductID string
	VariantID string
	SKU       string
}

// Seed inserts one user with a cart and one product with a single variant.
func Seed(ctx context.Context, t *testing.T, pool *pgxpool.Pool, price string, stock int) Fixture {
	t.Helper()
	var f Fixture
	f.SKU = "SHIRT-M-BLUE"
	if err := pool.QueryRow(ctx, `
INSERT INTO users (name, email, password_hash) VALUES ('Ana', 'ana@example.com', 'x')
RETURNING id::text`).Scan(&f.UserID); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := pool.QueryRow(ctx, `INSERT INTO carts (user_id) VALUES ($1) RETURNING id::text`, f.UserID).Scan(&f.CartID); err != nil {
		t.Fatalf("insert cart: %v", err)
	}
	if err := pool.QueryRow(ctx, `
INSERT INTO products (name, price, category) VALUES ('Blue Shirt', $1::numeric, 'shirts')
RETURNING id::text`, price).Scan(&f.ProductID); err != nil {
		t.Fatalf("insert product: %v", err)
	}
	if err := pool.QueryRow(ctx, `
INSERT INTO product_variants (product_id, sku, price, stock_quantity) VALUES ($1, $2, $3::numeric, $4)
RETURNING id::text`, f.ProductID, f.SKU, price, stock).Scan(&f.VariantID); err != nil {
		t.Fatalf("insert variant: %v", err)
	}
	return f
}
