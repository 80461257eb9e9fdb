// Package common defines shared constants, sentinel errors and small helpers
// used across the server and client. Callers should use errors.Is to match
// the sentinel values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorBadRequest   = errors.New("bad request")

	// Signature errors, both match ErrorUnauthorized.
	ErrMissingSignature = fmt.Errorf("%w: missing signature", ErrorUnauthorized)
	ErrInvalidSignature = fmt.Errorf("%w: invalid signature", ErrorUnauthorized)
)

// Detail attaches a human readable message to a sentinel while keeping it
// matchable with errors.Is.
func Detail(sentinel error, format string, args ...any) error {
	return &detailError{sentinel: sentinel, msg: fmt.Sprintf(format, args...)}
}

type detailError struct {
	sentinel error
	msg      string
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.sentinel }

// Message returns the text that should be shown to API callers for err.
// Detail errors expose their message, sentinels their own text.
func Message(err error) string {
	var d *detailError
	if errors.As(err, &d) {
		return d.msg
	}
	return err.Error()
}
