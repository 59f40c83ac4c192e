package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = NewValidationError("cart", "cart is empty, nothing to checkout")
	ErrIllegalTransition = errors.New("illegal transition of order status")
	ErrDuplicateCheckout = errors.New("order for this checkout already exists")
)

// ValidationError reports bad user input. It is surfaced to the caller as-is.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// OutOfStockError is returned by checkout when a line asks for more than the
// inventory holds.
type OutOfStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	name := e.Name
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("product %s is out of stock: requested %d, available %d", name, e.Requested, e.Available)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsOutOfStock(err error) bool {
	var o *OutOfStockError
	return errors.As(err, &o)
}

// IsNotFound reports whether err means the requested entity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrCartNotFound)
}
