package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict (e.g. duplicate email).
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrEmptyCart is returned by checkout when the cart has no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInsufficientStock matches any *InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalidf builds a ValidationError.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError names the SKU whose stock cannot cover a requested quantity.
type InsufficientStockError struct {
	SKU       string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	if e.SKU == "" {
		return "insufficient stock"
	}
	return fmt.Sprintf("insufficient stock for product %s", e.SKU)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }
