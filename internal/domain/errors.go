package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error classes. Concrete errors unwrap to one of these so the transport
// layer can map them with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("insufficient permissions")
)

// Error is a classified error whose message is safe to show to clients
type Error struct {
	Class   error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Class }

// NewError returns an error of the given class
func NewError(class error, message string) error {
	return &Error{Class: class, Message: message}
}

// Invalidf builds a validation error
func Invalidf(format string, args ...any) error {
	return &Error{Class: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// ErrEmptyCart is returned when checking out a cart with no items
var ErrEmptyCart = NewError(ErrInvalidInput, "cart is empty")

// InsufficientStockError reports a checkout line that exceeds available stock
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrConflict }
