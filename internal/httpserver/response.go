package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"puntomoda/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	c.JSON(http.StatusOK, envelope{Success: true, Data: items, Count: &n})
}

func respondMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: msg})
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Error: msg})
}

// writeError maps a service error onto a status code and the error envelope.
// Unclassified errors are logged and reported with an opaque message.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validation *domain.ValidationError
		stock      *domain.InsufficientStockError
	)
	switch {
	case errors.As(err, &validation):
		respondError(c, http.StatusBadRequest, validation.Message)
	case errors.As(err, &stock):
		respondError(c, http.StatusBadRequest, stock.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		respondError(c, http.StatusBadRequest, "insufficient stock")
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(c, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, domain.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, domain.ErrAlreadyExists):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, unauthorizedMessage(err))
	case errors.Is(err, domain.ErrForbidden):
		respondError(c, http.StatusForbidden, "forbidden")
	default:
		logger.Error("request failed",
			zap.String("request_id", requestIDFrom(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

// notFoundMessage keeps the wrapping context ("cart item: not found") but
// drops anything after it.
func notFoundMessage(err error) string {
	msg := err.Error()
	if msg == domain.ErrNotFound.Error() {
		return "resource not found"
	}
	return msg
}

func unauthorizedMessage(err error) string {
	if err == domain.ErrUnauthorized {
		return "authentication required"
	}
	return err.Error()
}

// bindJSON decodes the body into dst and turns binding failures into
// validation errors naming the offending fields.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return domain.Invalidf("request body is required")
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", lowerFirst(fe.Field()), fe.Tag()))
		}
		return domain.Invalidf("invalid fields: %s", strings.Join(fields, ", "))
	}
	return domain.Invalidf("malformed JSON body: %v", err)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
