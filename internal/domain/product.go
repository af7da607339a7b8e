package domain

import "time"

type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       Money            `json:"price"`
	SalePrice   *Money           `json:"salePrice,omitempty"`
	Category    string           `json:"category,omitempty"`
	Images      []ProductImage   `json:"images"`
	Variants    []ProductVariant `json:"variants"`
	Reviews     []Review         `json:"reviews,omitempty"`
	AvgRating   string           `json:"avgRating"`
	ReviewCount int              `json:"reviewCount"`
	RatingSum   int              `json:"-"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// EffectivePrice is the sale price when one is set, else the regular price.
func (p Product) EffectivePrice() Money {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

type ProductImage struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	URL       string `json:"imageUrl"`
	Color     string `json:"color,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

// ProductVariant is a purchasable SKU of a product.
type ProductVariant struct {
	ID            string             `json:"id"`
	ProductID     string             `json:"productId"`
	SKU           string             `json:"sku"`
	Price         Money              `json:"price"`
	StockQuantity int                `json:"stockQuantity"`
	Attributes    []VariantAttribute `json:"attributes"`
	Product       *ProductSummary    `json:"product,omitempty"`
}

type VariantAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductSummary is the product data embedded in cart and order lines.
type ProductSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

type Review struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	UserID       string    `json:"userId"`
	ReviewerName string    `json:"reviewerName,omitempty"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
