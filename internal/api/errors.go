package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNoToken is returned when a request is attempted without an auth token.
	ErrNoToken = errors.New("api: no auth token configured")
	// ErrTokenExpired is returned, before any I/O, when the JWT auth token has expired.
	ErrTokenExpired = errors.New("api: auth token expired")
	// ErrDecode wraps response bodies that are not a valid envelope or entity.
	ErrDecode = errors.New("api: cannot decode response")
	// ErrMissingKey is returned when the envelope lacks the entity's serialization key.
	ErrMissingKey = errors.New("api: response has no data for key")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string // envelope status, e.g. "fail" or "error"
	Message    string // envelope message, if any
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// IsStatus reports whether err is a *StatusError with the given HTTP code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
