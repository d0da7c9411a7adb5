package catalog

import (
	"errors"
	"net/http"
)

// Domain errors for catalog operations.
var (
	ErrTypeNotFound     = errors.New("document type not found")
	ErrTypeExists       = errors.New("document type code already exists")
	ErrTypeReferenced   = errors.New("document type is referenced by documents")
	ErrSignalNotFound   = errors.New("signal not found")
	ErrSignalExists     = errors.New("signal code already exists")
	ErrSignalProtected  = errors.New("signal is protected")
	ErrUnknownContext   = errors.New("unknown context")
	ErrInvalidThreshold = errors.New("auto assign threshold must be between 0 and 1")
	ErrInvalidCatalog   = errors.New("invalid catalog definition")
)

// MapHTTPStatus maps catalog domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrTypeNotFound), errors.Is(err, ErrSignalNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTypeExists), errors.Is(err, ErrSignalExists),
		errors.Is(err, ErrTypeReferenced):
		return http.StatusConflict
	case errors.Is(err, ErrSignalProtected):
		return http.StatusForbidden
	case errors.Is(err, ErrUnknownContext), errors.Is(err, ErrInvalidThreshold),
		errors.Is(err, ErrInvalidCatalog):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
