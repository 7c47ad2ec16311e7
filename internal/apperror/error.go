// Package apperror provides the error kinds shared by the shop engine.
// Every error returned by the core wraps exactly one kind so callers can
// branch with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

// Error kinds
var (
	// ErrInvalidArgument marks malformed or missing input (caller bug, never retried)
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientStock marks a warehouse removal that cannot be satisfied
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInsufficientFunds marks a purchase the ledger cannot cover
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidState marks an operation on an order in the wrong lifecycle state
	ErrInvalidState = errors.New("invalid state")

	// ErrNotFound marks a catalog lookup miss
	ErrNotFound = errors.New("not found")
)

// Error is the structured error type used across the engine.
type Error struct {
	// Kind is one of the sentinel kinds above
	Kind error

	// Message is a human-readable description
	Message string

	// Details carries context such as part names and quantities
	Details map[string]any

	// Err is an optional underlying cause
	Err error
}

// Error implements error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// WithDetail adds a key-value pair to error details
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// --- Factory functions ---

// InvalidArgument creates an ErrInvalidArgument error
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// InvalidState creates an ErrInvalidState error
func InvalidState(format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidState, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates an ErrNotFound error for the given entity
func NotFound(entity string, id any) *Error {
	return &Error{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("%s %v not found", entity, id),
		Details: map[string]any{"entity": entity, "id": id},
	}
}

// InsufficientStock creates a stock shortage error
func InsufficientStock(partName string, requested, available int) *Error {
	return &Error{
		Kind:    ErrInsufficientStock,
		Message: fmt.Sprintf("cannot take %d of %q, %d on hand", requested, partName, available),
		Details: map[string]any{
			"part":      partName,
			"requested": requested,
			"available": available,
		},
	}
}

// InsufficientFunds creates an error for a purchase the balance cannot cover.
// Amounts are passed pre-formatted to keep this package free of money types.
func InsufficientFunds(required, balance string) *Error {
	return &Error{
		Kind:    ErrInsufficientFunds,
		Message: fmt.Sprintf("purchase costs %s, balance is %s", required, balance),
		Details: map[string]any{
			"required": required,
			"balance":  balance,
		},
	}
}

// --- Helper functions ---

// AsError extracts *Error from error chain
func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsInvalidArgument checks for ErrInvalidArgument
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

// IsInsufficientStock checks for ErrInsufficientStock
func IsInsufficientStock(err error) bool { return errors.Is(err, ErrInsufficientStock) }

// IsInsufficientFunds checks for ErrInsufficientFunds
func IsInsufficientFunds(err error) bool { return errors.Is(err, ErrInsufficientFunds) }

// IsInvalidState checks for ErrInvalidState
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }

// IsNotFound checks for ErrNotFound
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
