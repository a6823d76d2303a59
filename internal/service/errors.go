package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dancehub/event-registration/internal/repository"
)

var (
	ErrNotFound                = repository.ErrNotFound
	ErrInventoryConflict       = repository.ErrInventoryConflict
	ErrQuantityBelowSold       = repository.ErrQuantityBelowSold
	ErrDuplicateIdempotencyKey = repository.ErrDuplicateIdempotencyKey
	ErrPaymentIntentBound      = repository.ErrPaymentIntentBound
)

var (
	ErrPersistence   = errors.New("registration could not be saved")
	ErrForbidden     = errors.New("not allowed")
	ErrNotEventStaff = fmt.Errorf("%w: event director role required", ErrForbidden)
	ErrNotOwner      = fmt.Errorf("%w: resource belongs to another user", ErrForbidden)
)

// ValidationError is a rejected input. Nothing has been written when it is
// returned.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error) error {
	return &ValidationError{Err: err}
}

// InventoryConflictError names the products that could not be reserved.
type InventoryConflictError struct {
	Products []string
}

func (e *InventoryConflictError) Error() string {
	return fmt.Sprintf("products unavailable: %s", strings.Join(e.Products, ", "))
}

func (e *InventoryConflictError) Unwrap() error {
	return ErrInventoryConflict
}
