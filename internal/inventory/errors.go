package inventory

import (
	"errors"
	"fmt"
)

// Error taxonomy. The transport layer maps each kind to a stable HTTP status;
// anything else is treated as a store failure and surfaced generically.

var (
	ErrProductNotFound   = &NotFoundError{Entity: "product"}
	ErrUserNotFound      = &NotFoundError{Entity: "user"}
	ErrInsufficientStock = &InsufficientStockError{}
	ErrEmailTaken        = &ValidationError{Msg: "Email already registered"}
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// Is lets any NotFoundError for the same entity match the package sentinel.
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	return ok && t.Entity == e.Entity
}

type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string { return "insufficient stock" }

func (e *InsufficientStockError) Is(target error) bool {
	_, ok := target.(*InsufficientStockError)
	return ok
}

// IsUserError reports whether err should be returned to the caller as-is
// (validation, not-found, stock) rather than hidden as an internal failure.
func IsUserError(err error) bool {
	var ve *ValidationError
	var nf *NotFoundError
	var is *InsufficientStockError
	return errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &is)
}
