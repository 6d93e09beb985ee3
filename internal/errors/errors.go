// Package errors defines the error taxonomy shared by the pharmacy service
// layers. Handlers translate these into HTTP responses.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = stderrors.New("not found")

	// ErrUnauthenticated is returned when an operation needs a known user.
	ErrUnauthenticated = stderrors.New("authentication required")

	// ErrForbidden is returned when the actor may not touch the resource.
	ErrForbidden = stderrors.New("forbidden")

	// ErrEmptyCart is returned when checking out a cart with no lines.
	ErrEmptyCart = stderrors.New("cart is empty")
)

// ValidationError reports an invalid input field.
type ValidationError struct {
	Field   string            `json:"field"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: map[string]string{field: message},
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// PartialOrderError is returned when a multi-pharmacy checkout fails after
// some pharmacy groups were already committed.
type PartialOrderError struct {
	CreatedOrderIDs []int64
	Compensated     bool
	Err             error
}

func (e *PartialOrderError) Error() string {
	ids := make([]string, len(e.CreatedOrderIDs))
	for i, id := range e.CreatedOrderIDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("checkout failed after creating orders [%s] (compensated=%t): %v",
		strings.Join(ids, ","), e.Compensated, e.Err)
}

func (e *PartialOrderError) Unwrap() error {
	return e.Err
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// AsValidation extracts a ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if stderrors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// AsPartialOrder extracts a PartialOrderError from err.
func AsPartialOrder(err error) (*PartialOrderError, bool) {
	var p *PartialOrderError
	if stderrors.As(err, &p) {
		return p, true
	}
	return nil, false
}
