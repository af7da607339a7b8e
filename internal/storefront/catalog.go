package storefront

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"puntomoda/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed data/products.json
var staticProductsJSON []byte

var (
	staticOnce     sync.Once
	staticProducts []domain.Product
	staticErr      error
)

// StaticProducts returns a copy of the bundled product list.
func StaticProducts() ([]domain.Product, error) {
	staticOnce.Do(func() {
		staticErr = json.Unmarshal(staticProductsJSON, &staticProducts)
		if staticErr != nil {
			staticErr = fmt.Errorf("decode bundled products: %w", staticErr)
		}
	})
	if staticErr != nil {
		return nil, staticErr
	}
	out := make([]domain.Product, len(staticProducts))
	copy(out, staticProducts)
	return out, nil
}

const (
	WarningUnavailable = "Could not reach the server. Showing sample products."
	WarningEmpty       = "The catalog is empty. Showing sample products."
)

// Catalog is what the catalog page renders. Fallback marks the bundled list;
// Warning is shown to the shopper but does not stop rendering.
type Catalog struct {
	Products []domain.Product
	Fallback bool
	Warning  string
}

// LoadCatalog fetches the live listing once. A failed request, a non-success
// envelope or an empty result yields the bundled list instead; the only error
// returned is a broken bundle.
func (c *Client) LoadCatalog(ctx context.Context, q Query) (Catalog, error) {
	products, err := c.ListProducts(ctx, q)
	if err == nil && len(products) > 0 {
		return Catalog{Products: products}, nil
	}

	warning := WarningEmpty
	if err != nil {
		warning = WarningUnavailable
		c.logger.Warn("catalog unavailable, using bundled products", zap.Error(err))
	}
	static, serr := StaticProducts()
	if serr != nil {
		return Catalog{}, serr
	}
	return Catalog{Products: static, Fallback: true, Warning: warning}, nil
}

// PageFilter holds the catalog page's client-side filters. Empty fields match everything.
type PageFilter struct {
	Category string
	Size     string
	Color    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// FilterProducts narrows products by category, a variant's size or color, and
// the effective price bounds. The input slice is left untouched.
func FilterProducts(products []domain.Product, f PageFilter) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.Size != "" && !hasAttribute(p, "size", f.Size) {
			continue
		}
		if f.Color != "" && !hasAttribute(p, "color", f.Color) {
			continue
		}
		price := p.EffectivePrice().Decimal
		if f.MinPrice != nil && price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && price.GreaterThan(*f.MaxPrice) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasAttribute(p domain.Product, name, value string) bool {
	for _, v := range p.Variants {
		for _, a := range v.Attributes {
			if strings.EqualFold(a.Name, name) && strings.EqualFold(a.Value, value) {
				return true
			}
		}
	}
	return false
}

// Options lists the distinct categories, sizes and colors present in products,
// in first-seen order, for building the filter sidebar.
func Options(products []domain.Product) (categories, sizes, colors []string) {
	seen := map[string]bool{}
	add := func(list *[]string, kind, v string) {
		key := kind + "\x00" + strings.ToLower(v)
		if v == "" || seen[key] {
			return
		}
		seen[key] = true
		*list = append(*list, v)
	}
	for _, p := range products {
		add(&categories, "category", p.Category)
		for _, v := range p.Variants {
			for _, a := range v.Attributes {
				switch strings.ToLower(a.Name) {
				case "size":
					add(&sizes, "size", a.Value)
				case "color":
					add(&colors, "color", a.Value)
				}
			}
		}
	}
	return categories, sizes, colors
}
