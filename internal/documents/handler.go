package documents

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/google/uuid"

	"github.com/proprio/docintake/internal/catalog"
	"github.com/proprio/docintake/internal/links"
	"github.com/proprio/docintake/pkg/handlers"
	"github.com/proprio/docintake/pkg/pagination"
	"github.com/proprio/docintake/pkg/routes"
	"github.com/proprio/docintake/pkg/storage"
)

// Handler provides HTTP endpoints for document records.
type Handler struct {
	sys    System
	links  *links.Manager
	blobs  storage.System
	pages  pagination.Config
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system, link manager, and
// blob storage.
func NewHandler(sys System, links *links.Manager, blobs storage.System, pages pagination.Config, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		links:  links,
		blobs:  blobs,
		pages:  pages,
		logger: logger.With("handler", "documents"),
	}
}

// Routes returns the route group definition for document endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/content", Handler: h.Download},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "GET", Pattern: "/{id}/links", Handler: h.Links},
			{Method: "POST", Pattern: "/{id}/links", Handler: h.CreateLinks},
		},
	}
}

// List returns a filtered page of documents.
// Query parameters: page, page_size, search, sort, owner_id, type, context, status.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	req := ListRequest{Page: pagination.FromQuery(values, h.pages)}

	if raw := values.Get("owner_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		req.OwnerID = &ownerID
	}
	if raw := values.Get("type"); raw != "" {
		req.TypeCode = &raw
	}
	if raw := values.Get("context"); raw != "" {
		docContext, err := catalog.ParseContext(raw)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		req.Context = &docContext
	}
	if raw := values.Get("status"); raw != "" {
		status := Status(raw)
		req.Status = &status
	}

	page, err := h.sys.List(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, page)
}

// Find returns a single document by ID.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Download streams the document's stored file.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if doc.Status == StatusDeleted {
		handlers.RespondError(w, h.logger, MapHTTPStatus(ErrAlreadyDeleted), ErrAlreadyDeleted)
		return
	}

	body, err := h.blobs.Download(r.Context(), doc.StorageKey)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", doc.Mime)
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(doc.Filename)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}

// Delete tombstones an active document.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.SoftDelete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Links returns the link rows of a document.
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if _, err := h.sys.Find(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	rows, err := h.links.ListForDocument(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, links.MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, rows)
}

// CreateLinks attaches an already-finalized document to additional entities.
func (h *Handler) CreateLinks(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var target links.Target
	if err := handlers.DecodeJSON(r, &target); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if doc.Status != StatusActive {
		handlers.RespondError(w, h.logger, http.StatusConflict, ErrNotActive)
		return
	}

	created, err := h.links.CreateLinks(r.Context(), id, target)
	if err != nil {
		handlers.RespondError(w, h.logger, links.MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, map[string]int{"created": created})
}
