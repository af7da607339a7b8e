package httpserver

import (
	"net/http"
	"time"

	"puntomoda/internal/domain"
	usersvc "puntomoda/internal/service/user"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

func (h *handlers) registerUser(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	u, err := h.deps.Users.Register(c.Request.Context(), usersvc.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, u)
}

func (h *handlers) getUser(c *gin.Context) {
	u, err := h.deps.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, u)
}

func (h *handlers) updateUser(c *gin.Context) {
	var req usersvc.UpdateInput
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	u, err := h.deps.Users.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, u)
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	u, token, sess, err := h.deps.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, loginResponse{User: u, Token: token, ExpiresAt: sess.ExpiresAt})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.deps.Users.Logout(c.Request.Context(), sessionFrom(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondMessage(c, "Logged out")
}
