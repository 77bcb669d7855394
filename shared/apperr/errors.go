// Package apperr holds the error taxonomy shared by every service. Services
// wrap these sentinels with context (fmt.Errorf("...: %w", apperr.ErrNotFound))
// and handlers translate them to HTTP status codes at the boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Kinded carries a user-facing message alongside one of the sentinels.
type Kinded struct {
	Kind    error
	Message string
}

func (e *Kinded) Error() string { return e.Message }

func (e *Kinded) Unwrap() error { return e.Kind }

func Validation(format string, args ...any) error {
	return &Kinded{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Kinded{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Kinded{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) error {
	return &Kinded{Kind: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &Kinded{Kind: ErrForbidden, Message: fmt.Sprintf(format, args...)}
}

// Status maps an error to the HTTP status code it should produce.
// Unknown errors are internal errors.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing text of err. Internal errors never leak
// their cause; fallback is returned instead.
func Message(err error, fallback string) string {
	if Status(err) == http.StatusInternalServerError {
		return fallback
	}
	var k *Kinded
	if errors.As(err, &k) {
		return k.Message
	}
	return err.Error()
}
