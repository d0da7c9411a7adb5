package sessions

import (
	"errors"
	"net/http"
)

// Session errors.
var (
	ErrNotFound = errors.New("upload session not found")
	ErrExpired  = errors.New("upload session expired")
	ErrClosed   = errors.New("upload session closed")
)

// MapHTTPStatus translates session errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrExpired), errors.Is(err, ErrClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
