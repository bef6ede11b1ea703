package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a tenant-scoped lookup finds nothing.
	ErrNotFound = errors.New("not found")
	// ErrInactive is returned for disabled services/staff. Handlers surface it
	// identically to ErrNotFound so existence is not leaked.
	ErrInactive = errors.New("inactive")
	// ErrOverlap is returned when the booking exclusion constraint fires. It is
	// a legitimate business outcome and must never be retried automatically.
	ErrOverlap = errors.New("booking overlap")
	// ErrExpired is returned when a payment intent is past its TTL or already
	// terminal. The caller has to restart checkout.
	ErrExpired = errors.New("payment intent expired")
	// ErrRateLimited is returned when the shared request budget is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrForbidden is returned when the acting role may not perform an operation.
	ErrForbidden = errors.New("forbidden")
	// ErrUpstream is returned when a payment or notification provider fails
	// before a booking is committed.
	ErrUpstream = errors.New("upstream unavailable")
)

// ValidationError reports a single malformed or disallowed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Invalid builds a field-level validation error.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
