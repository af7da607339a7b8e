package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ProductVariantID string `json:"productVariantId" binding:"required"`
	Quantity         *int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.deps.Carts.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, cart)
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	item, err := h.deps.Carts.AddItem(c.Request.Context(), c.Param("userId"), req.ProductVariantID, qty)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, item)
}

func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	item, err := h.deps.Carts.UpdateItem(c.Request.Context(), c.Param("userId"), c.Param("itemId"), *req.Quantity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, item)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	if err := h.deps.Carts.RemoveItem(c.Request.Context(), c.Param("userId"), c.Param("itemId")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondMessage(c, "Item removed from cart")
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.deps.Carts.Clear(c.Request.Context(), c.Param("userId")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondMessage(c, "Cart cleared")
}
