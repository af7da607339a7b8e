package sqlutil

import (
	"context"

	"puntomoda/internal/domain"
)

// LoadVariants fetches variants by id together with their attributes and a
// summary of the owning product. Unknown ids are absent from the result.
func LoadVariants(ctx context.Context, q Querier, ids []string) (map[string]*domain.ProductVariant, error) {
	out := make(map[string]*domain.ProductVariant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	const variantsQuery = `
SELECT v.id::text, v.product_id::text, v.sku, v.price, v.stock_quantity,
       p.name, COALESCE(p.description, ''), COALESCE(p.category, '')
FROM product_variants v
JOIN products p ON p.id = v.product_id
WHERE v.id = ANY($1::uuid[])
`
	rows, err := q.Query(ctx, variantsQuery, ids)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		v := &domain.ProductVariant{Product: &domain.ProductSummary{}}
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.StockQuantity,
			&v.Product.Name, &v.Product.Description, &v.Product.Category); err != nil {
			rows.Close()
			return nil, err
		}
		v.Product.ID = v.ProductID
		v.Attributes = []domain.VariantAttribute{}
		out[v.ID] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	attrs, err := LoadAttributes(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for id, list := range attrs {
		if v, ok := out[id]; ok {
			v.Attributes = list
		}
	}
	return out, nil
}

// LoadAttributes groups variant attributes by variant id.
func LoadAttributes(ctx context.Context, q Querier, variantIDs []string) (map[string][]domain.VariantAttribute, error) {
	out := make(map[string][]domain.VariantAttribute)
	if len(variantIDs) == 0 {
		return out, nil
	}
	const attrsQuery = `
SELECT product_variant_id::text, attribute_name, attribute_value
FROM variant_attributes
WHERE product_variant_id = ANY($1::uuid[])
ORDER BY attribute_name
`
	rows, err := q.Query(ctx, attrsQuery, variantIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var variantID string
		var a domain.VariantAttribute
		if err := rows.Scan(&variantID, &a.Name, &a.Value); err != nil {
			return nil, err
		}
		out[variantID] = append(out[variantID], a)
	}
	return out, rows.Err()
}
