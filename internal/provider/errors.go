package provider

import (
	"errors"
	"fmt"
)

// ErrorCategory normalizes provider failures into a small taxonomy. Callers
// branch on the category, never on vendor status strings.
type ErrorCategory string

const (
	// ErrorTimeout indicates the provider took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorOutage indicates transport failure or a non-2xx response.
	ErrorOutage ErrorCategory = "outage"

	// ErrorBadData indicates the provider returned a body we cannot decode.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorNotFound indicates the requested record doesn't exist upstream.
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorInternal indicates an unexpected internal error.
	ErrorInternal ErrorCategory = "internal"
)

// Error wraps a provider failure with its category. The underlying error is
// kept for logs; the Error() string never includes response bodies, so it is
// safe to log but still never handed to HTTP clients verbatim.
type Error struct {
	Category   ErrorCategory
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("provider [%s]: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Underlying }

// NewError creates a categorized provider error.
func NewError(category ErrorCategory, message string, underlying error) *Error {
	return &Error{Category: category, Message: message, Underlying: underlying}
}

// CategoryOf extracts the category from an error, defaulting to internal.
func CategoryOf(err error) ErrorCategory {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}

// IsNotFound reports whether the error is a provider-side miss.
func IsNotFound(err error) bool {
	return CategoryOf(err) == ErrorNotFound
}
