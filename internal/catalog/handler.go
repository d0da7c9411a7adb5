package catalog

import (
	"log/slog"
	"net/http"

	"github.com/proprio/docintake/pkg/handlers"
	"github.com/proprio/docintake/pkg/routes"
)

// Handler provides HTTP endpoints for catalog management.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "catalog"),
	}
}

// Routes returns the route group definition for catalog endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/catalog",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/types", Handler: h.ListTypes},
			{Method: "GET", Pattern: "/types/{code}", Handler: h.FindType},
			{Method: "POST", Pattern: "/types", Handler: h.CreateType},
			{Method: "PUT", Pattern: "/types/{code}", Handler: h.UpdateType},
			{Method: "DELETE", Pattern: "/types/{code}", Handler: h.DeleteType},
			{Method: "GET", Pattern: "/signals", Handler: h.ListSignals},
			{Method: "POST", Pattern: "/signals", Handler: h.CreateSignal},
			{Method: "PUT", Pattern: "/signals/{code}", Handler: h.UpdateSignal},
			{Method: "DELETE", Pattern: "/signals/{code}", Handler: h.DeleteSignal},
			{Method: "GET", Pattern: "/export", Handler: h.Export},
			{Method: "POST", Pattern: "/import", Handler: h.Import},
		},
	}
}

// ListTypes returns all document type definitions, active or not.
func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.sys.ListTypes(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, types)
}

// FindType returns a single document type by its code path parameter.
func (h *Handler) FindType(w http.ResponseWriter, r *http.Request) {
	dt, err := h.sys.FindType(r.Context(), r.PathValue("code"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, dt)
}

// CreateType defines a new document type from a JSON body.
func (h *Handler) CreateType(w http.ResponseWriter, r *http.Request) {
	var cmd CreateTypeCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	dt, err := h.sys.CreateType(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, dt)
}

// UpdateType updates the mutable fields of an existing document type.
func (h *Handler) UpdateType(w http.ResponseWriter, r *http.Request) {
	var cmd UpdateTypeCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	dt, err := h.sys.UpdateType(r.Context(), r.PathValue("code"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, dt)
}

// DeleteType removes a non-system, unreferenced document type.
func (h *Handler) DeleteType(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.DeleteType(r.Context(), r.PathValue("code")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSignals returns all signal definitions.
func (h *Handler) ListSignals(w http.ResponseWriter, r *http.Request) {
	signals, err := h.sys.ListSignals(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, signals)
}

// CreateSignal defines a new signal from a JSON body.
func (h *Handler) CreateSignal(w http.ResponseWriter, r *http.Request) {
	var cmd SignalCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	sig, err := h.sys.CreateSignal(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, sig)
}

// UpdateSignal updates an unprotected signal.
func (h *Handler) UpdateSignal(w http.ResponseWriter, r *http.Request) {
	var cmd SignalCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	sig, err := h.sys.UpdateSignal(r.Context(), r.PathValue("code"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, sig)
}

// DeleteSignal removes an unprotected signal.
func (h *Handler) DeleteSignal(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.DeleteSignal(r.Context(), r.PathValue("code")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export returns the portable catalog serialization.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	p, err := h.sys.Export(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, p)
}

// Import replaces the catalog with an uploaded portable serialization.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var p Portable
	if err := handlers.DecodeJSON(r, &p); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.Import(r.Context(), &p); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
