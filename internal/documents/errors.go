package documents

import (
	"errors"
	"net/http"
)

// Document errors.
var (
	ErrNotFound         = errors.New("document not found")
	ErrNotDraft         = errors.New("document is not a draft")
	ErrNotActive        = errors.New("document is not active")
	ErrAlreadyFinalized = errors.New("document already finalized")
	ErrAlreadyDeleted   = errors.New("document already deleted")
)

// MapHTTPStatus translates document errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyFinalized),
		errors.Is(err, ErrAlreadyDeleted),
		errors.Is(err, ErrNotDraft),
		errors.Is(err, ErrNotActive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
