package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

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
	return &postgresRepo{pool: pool, logger: logger.Named("product_repo")}
}

const productColumns = `
p.id::text, p.name, COALESCE(p.description, ''), p.price, p.sale_price, COALESCE(p.category, ''),
p.created_at, p.updated_at,
(SELECT COUNT(*) FROM reviews r WHERE r.product_id = p.id),
(SELECT COALESCE(SUM(r.rating), 0) FROM reviews r WHERE r.product_id = p.id)
`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.SalePrice, &p.Category,
		&p.CreatedAt, &p.UpdatedAt, &p.ReviewCount, &p.RatingSum); err != nil {
		return nil, err
	}
	p.Images = []domain.ProductImage{}
	p.Variants = []domain.ProductVariant{}
	return &p, nil
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Category != "" {
		where = append(where, "p.category = "+arg(f.Category))
	}
	if f.MinPrice != nil {
		where = append(where, "COALESCE(p.sale_price, p.price) >= "+arg(*f.MinPrice)+"::numeric")
	}
	if f.MaxPrice != nil {
		where = append(where, "COALESCE(p.sale_price, p.price) <= "+arg(*f.MaxPrice)+"::numeric")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "p.name ILIKE "+arg("%"+sqlutil.EscapeLike(s)+"%"))
	}

	q := "SELECT " + productColumns + " FROM products p"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY p.created_at DESC, p.id"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("list products", zap.Error(err))
		return nil, err
	}
	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		result = append(result, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, r.pool, result); err != nil {
		return nil, err
	}
	r.logger.Debug("listed products",
		zap.String("category", f.Category),
		zap.String("search", f.Search),
		zap.Int("count", len(result)),
	)
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := "SELECT " + productColumns + " FROM products p WHERE p.id = $1"
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || sqlutil.IsInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get product", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return r.withDetails(ctx, p)
}

func (r *postgresRepo) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	q := "SELECT " + productColumns + " FROM products p WHERE lower(p.name) = lower($1) ORDER BY p.created_at LIMIT 1"
	p, err := scanProduct(r.pool.QueryRow(ctx, q, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.withDetails(ctx, p)
}

func (r *postgresRepo) withDetails(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	list := []domain.Product{*p}
	if err := r.loadChildren(ctx, r.pool, list); err != nil {
		return nil, err
	}
	out := list[0]

	const reviewsQuery = `
SELECT r.id::text, r.product_id::text, r.user_id::text, u.name, r.rating, COALESCE(r.comment, ''), r.created_at
FROM reviews r
JOIN users u ON u.id = r.user_id
WHERE r.product_id = $1
ORDER BY r.created_at DESC
`
	rows, err := r.pool.Query(ctx, reviewsQuery, out.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out.Reviews = []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.ReviewerName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out.Reviews = append(out.Reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &out, nil
}

// loadChildren attaches images and variants (with attributes) to products in place.
func (r *postgresRepo) loadChildren(ctx context.Context, q sqlutil.Querier, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = i
	}

	const imagesQuery = `
SELECT id::text, product_id::text, image_url, COALESCE(color, ''), is_primary
FROM product_images
WHERE product_id = ANY($1::uuid[])
ORDER BY is_primary DESC, id
`
	rows, err := q.Query(ctx, imagesQuery, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.Color, &img.IsPrimary); err != nil {
			rows.Close()
			return err
		}
		p := &products[index[img.ProductID]]
		p.Images = append(p.Images, img)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	const variantsQuery = `
SELECT id::text, product_id::text, sku, price, stock_quantity
FROM product_variants
WHERE product_id = ANY($1::uuid[])
ORDER BY sku
`
	rows, err = q.Query(ctx, variantsQuery, ids)
	if err != nil {
		return err
	}
	var variantIDs []string
	for rows.Next() {
		var v domain.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.StockQuantity); err != nil {
			rows.Close()
			return err
		}
		v.Attributes = []domain.VariantAttribute{}
		p := &products[index[v.ProductID]]
		p.Variants = append(p.Variants, v)
		variantIDs = append(variantIDs, v.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	attrs, err := sqlutil.LoadAttributes(ctx, q, variantIDs)
	if err != nil {
		return err
	}
	for i := range products {
		for j := range products[i].Variants {
			if a, ok := attrs[products[i].Variants[j].ID]; ok {
				products[i].Variants[j].Attributes = a
			}
		}
	}
	return nil
}

func (r *postgresRepo) Categories(ctx context.Context) ([]string, error) {
	const q = `
SELECT DISTINCT category
FROM products
WHERE category IS NOT NULL AND category <> ''
ORDER BY category
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
INSERT INTO products (name, description, price, sale_price, category)
VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''))
RETURNING id::text
`, in.Name, in.Description, in.Price, in.SalePrice, in.Category).Scan(&id)
	if err != nil {
		return nil, err
	}

	for _, img := range in.Images {
		if _, err := tx.Exec(ctx, `
INSERT INTO product_images (product_id, image_url, color, is_primary)
VALUES ($1, $2, NULLIF($3, ''), $4)
`, id, img.URL, img.Color, img.IsPrimary); err != nil {
			return nil, err
		}
	}

	for _, v := range in.Variants {
		price := in.Price
		if v.Price != nil {
			price = *v.Price
		}
		var variantID string
		err := tx.QueryRow(ctx, `
INSERT INTO product_variants (product_id, sku, price, stock_quantity)
VALUES ($1, $2, $3, $4)
RETURNING id::text
`, id, v.SKU, price, v.StockQuantity).Scan(&variantID)
		if err != nil {
			if sqlutil.IsUniqueViolation(err) {
				return nil, fmt.Errorf("sku %s: %w", v.SKU, domain.ErrAlreadyExists)
			}
			return nil, err
		}
		for _, a := range v.Attributes {
			if _, err := tx.Exec(ctx, `
INSERT INTO variant_attributes (product_variant_id, attribute_name, attribute_value)
VALUES ($1, $2, $3)
`, variantID, a.Name, a.Value); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info("product created",
		zap.String("id", id),
		zap.String("name", in.Name),
		zap.Int("variants", len(in.Variants)),
	)
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error) {
	const q = `
UPDATE products
SET name        = COALESCE($2, name),
    description = COALESCE($3, description),
    price       = COALESCE($4, price),
    sale_price  = CASE WHEN $6 THEN NULL ELSE COALESCE($5, sale_price) END,
    category    = COALESCE($7, category),
    updated_at  = now()
WHERE id = $1
`
	var price, sale any
	if in.Price != nil {
		price = *in.Price
	}
	if in.SalePrice != nil {
		sale = *in.SalePrice
	}
	cmd, err := r.pool.Exec(ctx, q, id, in.Name, in.Description, price, sale, in.ClearSalePrice, in.Category)
	if err != nil {
		if sqlutil.IsInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if sqlutil.IsInvalidText(err) {
			return domain.ErrNotFound
		}
		if sqlutil.IsForeignKeyViolation(err) {
			return domain.Invalidf("product has been ordered and cannot be deleted")
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("product deleted", zap.String("id", id))
	return nil
}

func (r *postgresRepo) GetVariant(ctx context.Context, id string) (*domain.ProductVariant, error) {
	variants, err := sqlutil.LoadVariants(ctx, r.pool, []string{id})
	if err != nil {
		if sqlutil.IsInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	v, ok := variants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (r *postgresRepo) AddReview(ctx context.Context, rv domain.Review) (*domain.Review, error) {
	const q = `
INSERT INTO reviews (product_id, user_id, rating, comment)
VALUES ($1, $2, $3, NULLIF($4, ''))
RETURNING id::text, created_at
`
	out := rv
	if err := r.pool.QueryRow(ctx, q, rv.ProductID, rv.UserID, rv.Rating, rv.Comment).Scan(&out.ID, &out.CreatedAt); err != nil {
		if sqlutil.IsForeignKeyViolation(err) || sqlutil.IsInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		if sqlutil.IsCheckViolation(err) {
			return nil, domain.Invalidf("rating must be between 1 and 5")
		}
		return nil, err
	}
	return &out, nil
}
