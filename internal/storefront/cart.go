package storefront

import (
	"context"
	"net/http"
	"net/url"

	"puntomoda/internal/domain"
)

func cartPath(userID string) string {
	return "/cart/" + url.PathEscape(userID)
}

func (c *Client) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var out domain.Cart
	if err := c.do(ctx, http.MethodGet, cartPath(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddToCart(ctx context.Context, userID, variantID string, quantity int) (*domain.CartItem, error) {
	var out domain.CartItem
	body := map[string]any{"productVariantId": variantID, "quantity": quantity}
	if err := c.do(ctx, http.MethodPost, cartPath(userID)+"/items", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, userID, itemID string, quantity int) (*domain.CartItem, error) {
	var out domain.CartItem
	body := map[string]int{"quantity": quantity}
	if err := c.do(ctx, http.MethodPut, cartPath(userID)+"/items/"+url.PathEscape(itemID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, userID, itemID string) error {
	return c.do(ctx, http.MethodDelete, cartPath(userID)+"/items/"+url.PathEscape(itemID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, cartPath(userID), nil, nil)
}

// Checkout turns the user's cart into an order.
func (c *Client) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, http.MethodPost, "/orders", map[string]string{"userId": userID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := c.do(ctx, http.MethodGet, "/orders/user/"+url.PathEscape(userID), nil, &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
