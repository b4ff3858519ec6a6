package service

import (
	"errors"
	"fmt"
)

// Error kinds returned by the reservation core.  Callers classify an
// error with errors.Is, e.g. errors.Is(err, service.ErrConflict).
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrPermissionDenied  = errors.New("permission denied")
)

// Error carries a human readable message together with one of the kind
// sentinels above.  The message is safe to show to API clients.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the kind so errors.Is works against the sentinels.
func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error     { return newError(ErrNotFound, format, args...) }
func invalidInput(format string, args ...any) error { return newError(ErrInvalidInput, format, args...) }
func conflict(format string, args ...any) error     { return newError(ErrConflict, format, args...) }
func denied(format string, args ...any) error       { return newError(ErrPermissionDenied, format, args...) }
