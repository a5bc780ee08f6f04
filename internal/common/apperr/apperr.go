package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ValidationError signals an illegal field/operator/value combination or a
// missing required input. Raised before any remote call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// RemoteQueryError wraps a read query the backing store rejected or failed
// (bad field, permission, connectivity, timeout).
type RemoteQueryError struct {
	Module string
	Err    error
}

func (e *RemoteQueryError) Error() string {
	return fmt.Sprintf("remote query on %s: %v", e.Module, e.Err)
}

func (e *RemoteQueryError) Unwrap() error {
	return e.Err
}

func RemoteQuery(module string, err error) *RemoteQueryError {
	return &RemoteQueryError{Module: module, Err: err}
}

// AuthorizationError signals a mutation attempted by a non-owner or an
// unauthenticated caller. No partial effect.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "unauthorized: " + e.Reason
}

func Authorization(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError signals a missing record or saved filter.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return e.What + " not found"
}

func NotFound(what string) *NotFoundError {
	return &NotFoundError{What: what}
}

// StatusCode maps a service error onto the HTTP status controllers respond with.
func StatusCode(err error) int {
	var ve *ValidationError
	var ae *AuthorizationError
	var ne *NotFoundError
	var re *RemoteQueryError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.As(err, &ae):
		return fiber.StatusForbidden
	case errors.As(err, &ne):
		return fiber.StatusNotFound
	case errors.As(err, &re):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
