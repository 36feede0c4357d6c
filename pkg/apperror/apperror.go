// Package apperror defines the error taxonomy shared by every layer and its
// mapping onto HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("too many attempts")
	ErrInternal     = errors.New("internal error")

	// ErrInvalidCredentials covers an unknown user and a wrong password alike.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
)

// ValidationError carries every violated rule, in evaluation order.
type ValidationError struct {
	Details []string
}

func NewValidation(details ...string) *ValidationError {
	return &ValidationError{Details: details}
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Details returns the violation list of err, or nil.
func Details(err error) []string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Details
	}
	return nil
}

// StatusFromError maps an error onto an HTTP status code.
func StatusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
