package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"mindcanvas/internal/codec"
	"mindcanvas/internal/domain"
	"mindcanvas/internal/editor"
	"mindcanvas/internal/service"
)

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MindmapHandler handles stored mindmap requests
type MindmapHandler struct {
	svc    *service.MindmapService
	logger *zap.Logger
}

// NewMindmapHandler creates a new mindmap handler
func NewMindmapHandler(svc *service.MindmapService, logger *zap.Logger) *MindmapHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MindmapHandler{svc: svc, logger: logger.Named("http")}
}

// createRequest is the body of POST /api/mindmaps
type createRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ProjectID   int64            `json:"project_id"`
	Data        *domain.Document `json:"data"`
}

// ListMindmaps returns all mindmaps, optionally filtered by ?project_id=
func (h *MindmapHandler) ListMindmaps(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		projectID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(h.logger, w, "Invalid project ID", err.Error(), http.StatusBadRequest)
			return
		}
		h.listByProject(w, r, projectID)
		return
	}

	maps, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, "Failed to list mindmaps", err)
		return
	}
	writeJSON(h.logger, w, maps, http.StatusOK)
}

// ListProjectMindmaps returns the mindmaps of one project
func (h *MindmapHandler) ListProjectMindmaps(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(r.PathValue("project_id"), 10, 64)
	if err != nil {
		writeError(h.logger, w, "Invalid project ID", err.Error(), http.StatusBadRequest)
		return
	}
	h.listByProject(w, r, projectID)
}

func (h *MindmapHandler) listByProject(w http.ResponseWriter, r *http.Request, projectID int64) {
	maps, err := h.svc.ListByProject(r.Context(), projectID)
	if err != nil {
		h.fail(w, "Failed to list mindmaps", err)
		return
	}
	writeJSON(h.logger, w, maps, http.StatusOK)
}

// GetMindmap returns a single mindmap
func (h *MindmapHandler) GetMindmap(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mindmapID(w, r)
	if !ok {
		return
	}

	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "Failed to get mindmap", err)
		return
	}
	writeJSON(h.logger, w, m, http.StatusOK)
}

// CreateMindmap creates a new mindmap
func (h *MindmapHandler) CreateMindmap(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	m := &domain.Mindmap{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
	}
	if req.Data != nil {
		m.Data = *req.Data
	}

	if err := h.svc.Create(r.Context(), m); err != nil {
		h.fail(w, "Failed to create mindmap", err)
		return
	}
	writeJSON(h.logger, w, m, http.StatusCreated)
}

// UpdateMindmap applies a partial update
func (h *MindmapHandler) UpdateMindmap(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mindmapID(w, r)
	if !ok {
		return
	}

	var upd domain.MindmapUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(h.logger, w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	m, err := h.svc.Update(r.Context(), id, upd)
	if err != nil {
		h.fail(w, "Failed to update mindmap", err)
		return
	}
	writeJSON(h.logger, w, m, http.StatusOK)
}

// DeleteMindmap removes a mindmap
func (h *MindmapHandler) DeleteMindmap(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mindmapID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, "Failed to delete mindmap", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportMindmap writes the document of a mindmap as JSON or YAML
func (h *MindmapHandler) ExportMindmap(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mindmapID(w, r)
	if !ok {
		return
	}
	format := r.PathValue("format")

	// Render into a buffer first so a failure can still produce an error response
	var buf bytes.Buffer
	if err := h.svc.Export(r.Context(), id, format, &buf); err != nil {
		h.fail(w, "Failed to export mindmap", err)
		return
	}

	if c, err := codec.Lookup(format); err == nil {
		w.Header().Set("Content-Type", c.ContentType())
	}
	w.Header().Set("Content-Disposition", "attachment; filename=mindmap-"+strconv.FormatInt(id, 10)+"."+format)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write export", zap.Error(err))
	}
}

// ImportMindmap replaces the document of a mindmap with the request body
func (h *MindmapHandler) ImportMindmap(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mindmapID(w, r)
	if !ok {
		return
	}

	m, err := h.svc.Import(r.Context(), id, r.PathValue("format"), r.Body)
	if err != nil {
		h.fail(w, "Failed to import mindmap", err)
		return
	}
	writeJSON(h.logger, w, m, http.StatusOK)
}

// ImportNewMindmap creates a mindmap from the request body.
// Query parameters: title, project_id.
func (h *MindmapHandler) ImportNewMindmap(w http.ResponseWriter, r *http.Request) {
	var projectID int64
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		var err error
		if projectID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			writeError(h.logger, w, "Invalid project ID", err.Error(), http.StatusBadRequest)
			return
		}
	}

	m, err := h.svc.ImportNew(r.Context(), r.URL.Query().Get("title"), projectID, r.PathValue("format"), r.Body)
	if err != nil {
		h.fail(w, "Failed to import mindmap", err)
		return
	}
	writeJSON(h.logger, w, m, http.StatusCreated)
}

// GetPalette returns the toolbar colors
func (h *MindmapHandler) GetPalette(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.logger, w, map[string]interface{}{
		"palette":       editor.Palette,
		"default_color": editor.NewNodeColor,
	}, http.StatusOK)
}

func (h *MindmapHandler) mindmapID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(h.logger, w, "Invalid mindmap ID", "Mindmap ID must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *MindmapHandler) fail(w http.ResponseWriter, msg string, err error) {
	fail(h.logger, w, msg, err)
}

// Helper functions

func fail(logger *zap.Logger, w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
	}
	writeError(logger, w, msg, err.Error(), status)
}

// statusFor maps an error to the HTTP status of its sentinel
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, editor.ErrBlankText),
		errors.Is(err, editor.ErrInvalidColor),
		errors.Is(err, editor.ErrSelection):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrReadOnly):
		return http.StatusForbidden
	case errors.Is(err, editor.ErrClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("failed to encode JSON", zap.Error(err))
	}
}

func writeError(logger *zap.Logger, w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		logger.Warn("failed to encode error response", zap.Error(err))
	}
}
