package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the explorer API
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")

	// Token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Storage errors
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Kind classifies an error into one of the API's failure categories.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error carries a kind, a message that is safe to show to users, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

func Validation(format string, args ...interface{}) error {
	return newError(KindValidation, nil, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newError(KindConflict, nil, format, args...)
}

func Auth(format string, args ...interface{}) error {
	return newError(KindAuth, nil, format, args...)
}

func Forbidden(format string, args ...interface{}) error {
	return newError(KindForbidden, nil, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return newError(KindNotFound, nil, format, args...)
}

// AuthWrap is Auth with an underlying cause that is kept for logging but never shown to users.
func AuthWrap(cause error, format string, args ...interface{}) error {
	return newError(KindAuth, cause, format, args...)
}

// Internal wraps an unexpected failure. The message shown to users is always generic.
func Internal(cause error, format string, args ...interface{}) error {
	return newError(KindInternal, cause, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the user-facing message for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Server error"
}

// HTTPStatus maps err onto a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need a single import.
func New(text string) error {
	return errors.New(text)
}
