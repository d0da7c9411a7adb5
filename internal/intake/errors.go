package intake

import (
	"errors"
	"net/http"

	"github.com/proprio/docintake/internal/catalog"
	"github.com/proprio/docintake/internal/documents"
	"github.com/proprio/docintake/internal/links"
	"github.com/proprio/docintake/internal/sessions"
)

// Intake errors.
var (
	ErrMissingFile  = errors.New("upload requires a file part")
	ErrFileTooLarge = errors.New("upload exceeds the size limit")
	ErrUnknownType  = errors.New("unknown document type code")
)

// MapHTTPStatus translates intake errors, including those surfaced from the
// systems it orchestrates, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingFile), errors.Is(err, ErrUnknownType):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	}

	for _, mapper := range []func(error) int{
		documents.MapHTTPStatus,
		sessions.MapHTTPStatus,
		links.MapHTTPStatus,
		catalog.MapHTTPStatus,
	} {
		if status := mapper(err); status != http.StatusInternalServerError {
			return status
		}
	}

	return http.StatusInternalServerError
}
