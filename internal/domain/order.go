package domain

import "time"

// Order is an immutable snapshot of a cart taken at checkout.
type Order struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	TotalAmount Money       `json:"totalAmount"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type OrderItem struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"orderId"`
	ProductVariantID string          `json:"productVariantId"`
	Quantity         int             `json:"quantity"`
	PriceAtPurchase  Money           `json:"priceAtPurchase"`
	Variant          *ProductVariant `json:"variant,omitempty"`
}

// Subtotal is the frozen unit price times quantity.
func (i OrderItem) Subtotal() Money {
	return i.PriceAtPurchase.Times(i.Quantity)
}
