package links

import (
	"errors"
	"net/http"
)

// Link errors.
var (
	ErrUnknownType             = errors.New("unknown link type")
	ErrDocumentNotFound        = errors.New("document not found")
	ErrContextConflictProperty = errors.New("document already linked to a different property")
	ErrContextConflictLease    = errors.New("document already linked to a different lease")
)

// MapHTTPStatus translates link errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrContextConflictProperty),
		errors.Is(err, ErrContextConflictLease):
		return http.StatusConflict
	case errors.Is(err, ErrUnknownType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
