package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx response from the API.
type Error struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status of err, or 0 when err is not an API response.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// Message returns the server's message for err, or err's text.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
