package domain

import "time"

type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	Total     Money      `json:"total"`
	CreatedAt time.Time  `json:"createdAt"`
}

type CartItem struct {
	ID               string          `json:"id"`
	CartID           string          `json:"cartId"`
	ProductVariantID string          `json:"productVariantId"`
	Quantity         int             `json:"quantity"`
	Variant          *ProductVariant `json:"variant,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// ComputeTotal sums variant price times quantity over the loaded items.
func (c *Cart) ComputeTotal() Money {
	var total Money
	for _, item := range c.Items {
		if item.Variant == nil {
			continue
		}
		total = total.Plus(item.Variant.Price.Times(item.Quantity))
	}
	c.Total = total
	return total
}
