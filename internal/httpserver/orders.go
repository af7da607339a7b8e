package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *handlers) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := authorizeUser(c, h.authRequired, req.UserID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	order, err := h.deps.Orders.Checkout(c.Request.Context(), req.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, order)
}

func (h *handlers) listUserOrders(c *gin.Context) {
	orders, err := h.deps.Orders.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondList(c, orders)
}

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.deps.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := authorizeUser(c, h.authRequired, order.UserID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}
