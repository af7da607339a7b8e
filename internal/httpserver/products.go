package httpserver

import (
	"net/http"

	"puntomoda/internal/service/catalog"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listProducts(c *gin.Context) {
	f, err := catalog.ParseFilter(c.Query("category"), c.Query("minPrice"), c.Query("maxPrice"), c.Query("search"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	products, err := h.deps.Catalog.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondList(c, products)
}

func (h *handlers) listCategories(c *gin.Context) {
	cats, err := h.deps.Catalog.Categories(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, cats)
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, p)
}

func (h *handlers) createProduct(c *gin.Context) {
	var req catalog.CreateInput
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	p, err := h.deps.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, p)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var req catalog.UpdateInput
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	p, err := h.deps.Catalog.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, p)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.deps.Catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondMessage(c, "Product deleted")
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

func (h *handlers) addReview(c *gin.Context) {
	var req reviewRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	sess := sessionFrom(c)
	r, err := h.deps.Catalog.AddReview(c.Request.Context(), c.Param("id"), sess.UserID, req.Rating, req.Comment)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, r)
}
