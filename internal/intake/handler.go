package intake

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/proprio/docintake/internal/catalog"
	"github.com/proprio/docintake/internal/classifier"
	"github.com/proprio/docintake/internal/dedupflow"
	"github.com/proprio/docintake/pkg/handlers"
	"github.com/proprio/docintake/pkg/routes"
)

// Handler provides the intake HTTP endpoints.
type Handler struct {
	sys    *System
	cfg    Config
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and config.
func NewHandler(sys *System, cfg Config, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		cfg:    cfg,
		logger: logger.With("handler", "intake"),
	}
}

// Routes returns the route group definition for intake endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/intake",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/upload", Handler: h.Upload},
			{Method: "POST", Pattern: "/classify", Handler: h.Classify},
			{Method: "GET", Pattern: "/dedup/{id}", Handler: h.Dedup},
			{Method: "POST", Pattern: "/flow", Handler: h.Flow},
			{Method: "POST", Pattern: "/finalize", Handler: h.Finalize},
			{Method: "POST", Pattern: "/cancel/{id}", Handler: h.Cancel},
		},
	}
}

// Upload accepts a multipart upload and stages it as a draft.
// Form fields: file, owner_id, context; optional session_id.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes())

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, MapHTTPStatus(ErrFileTooLarge), ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(ErrMissingFile), ErrMissingFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	ownerID, err := uuid.Parse(r.FormValue("owner_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	docContext, err := catalog.ParseContext(r.FormValue("context"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	cmd := UploadCommand{
		OwnerID:  ownerID,
		Context:  docContext,
		Filename: header.Filename,
		Mime:     contentType(header.Header.Get("Content-Type"), data),
		Checksum: checksum(data),
		Data:     data,
	}

	if raw := r.FormValue("session_id"); raw != "" {
		sessionID, err := uuid.Parse(raw)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		cmd.SessionID = &sessionID
	}

	result, err := h.sys.Upload(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// Classify runs the rule engine on caller-supplied input without touching
// any stored document.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var in classifier.Input
	if err := handlers.DecodeJSON(r, &in); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if _, err := catalog.ParseContext(string(in.Context)); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.Classify(in))
}

// Dedup re-runs duplicate detection for a draft.
func (h *Handler) Dedup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	match, err := h.sys.Dedup(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, match)
}

// Flow advances the duplicate resolution state machine.
func (h *Handler) Flow(w http.ResponseWriter, r *http.Request) {
	var req dedupflow.Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	out, err := dedupflow.Orchestrate(req)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, out)
}

// Finalize promotes a draft to an active document.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	var cmd FinalizeCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Finalize(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Cancel discards a draft upload.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.Cancel(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func contentType(declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}
