package services

import (
	"errors"
	"strings"

	"campus_portal/internal/cart"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrItemUnavailable    = errors.New("menu item is not available")
	ErrUnknownServiceType = errors.New("unknown service type")
	ErrForbidden          = errors.New("insufficient permissions")
)

// CartInvalidError carries the reasons a cart cannot be checked out.
type CartInvalidError struct {
	Validation cart.Validation
}

func (e *CartInvalidError) Error() string {
	return "cart is not valid: " + strings.Join(e.Validation.Errors, "; ")
}

// SubmissionError is a backend rejection reported by the order adapter.
type SubmissionError struct {
	Message string
}

func (e *SubmissionError) Error() string {
	return e.Message
}
