package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"mindcanvas/internal/domain"
	"mindcanvas/internal/editor"
	"mindcanvas/internal/overlay"
	"mindcanvas/internal/service"
	"mindcanvas/internal/session"
)

// Pointer event types
const (
	PointerDown     = "down"
	PointerMove     = "move"
	PointerUp       = "up"
	PointerLeave    = "leave"
	PointerClick    = "click"
	PointerDblClick = "dblclick"
)

// Toolbar actions
const (
	ActionSelect             = "select"
	ActionClearSelection     = "clear-selection"
	ActionAddNode            = "add-node"
	ActionBeginConnection    = "begin-connection"
	ActionCompleteConnection = "complete-connection"
	ActionToggleConnection   = "toggle-connection"
	ActionCancelConnection   = "cancel-connection"
	ActionDeleteConnection   = "delete-connection"
	ActionDeleteSelected     = "delete-selected"
	ActionRecolor            = "recolor"
	ActionEditText           = "edit-text"
	ActionCommitEdit         = "commit-edit"
	ActionCancelEdit         = "cancel-edit"
	ActionSave               = "save"
)

// SessionHandler drives editor sessions
type SessionHandler struct {
	sessions *session.Manager
	overlay  *overlay.Service
	eventBus *service.EventBus
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Manager, ov *overlay.Service, eventBus *service.EventBus, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{
		sessions: sessions,
		overlay:  ov,
		eventBus: eventBus,
		logger:   logger.Named("http"),
	}
}

// OpenRequest is the body of POST /api/sessions
type OpenRequest struct {
	MindmapID int64 `json:"mindmap_id"`
	ReadOnly  bool  `json:"read_only"`
}

// SessionResponse describes a session and its editor
type SessionResponse struct {
	*session.Session
	View  editor.View      `json:"view"`
	Stats editor.SaveStats `json:"stats"`
}

// PointerRequest is one pointer event
type PointerRequest struct {
	Type   string  `json:"type"`
	NodeID string  `json:"node_id,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// ActionRequest is one toolbar or keyboard action
type ActionRequest struct {
	Action  string   `json:"action"`
	Text    string   `json:"text,omitempty"`
	Color   string   `json:"color,omitempty"`
	NodeIDs []string `json:"node_ids,omitempty"`
}

// ActionResponse is the result of an action
type ActionResponse struct {
	View    editor.View  `json:"view"`
	Node    *domain.Node `json:"node,omitempty"`
	Deleted []string     `json:"deleted,omitempty"`
}

// OverlayRequest sets the debug overlay. A missing value toggles it.
type OverlayRequest struct {
	Enabled *bool `json:"enabled"`
}

// OpenSession starts an editor over a stored mindmap
func (h *SessionHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.MindmapID <= 0 {
		writeError(h.logger, w, "Invalid mindmap ID", "mindmap_id is required", http.StatusBadRequest)
		return
	}

	s, err := h.sessions.Open(r.Context(), req.MindmapID, req.ReadOnly)
	if err != nil {
		fail(h.logger, w, "Failed to open session", err)
		return
	}
	writeJSON(h.logger, w, describe(s), http.StatusCreated)
}

// ListSessions returns the open sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.logger, w, h.sessions.List(), http.StatusOK)
}

// GetSession returns the current view of a session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(h.logger, w, describe(s), http.StatusOK)
}

// CloseSession ends a session
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.PathValue("sid")); err != nil {
		fail(h.logger, w, "Failed to close session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pointer applies one pointer event to a session
func (h *SessionHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	ctrl := s.Editor.Controller()
	target := editor.OnNode(req.NodeID)
	pos := domain.Point{X: req.X, Y: req.Y}

	switch req.Type {
	case PointerDown:
		ctrl.PointerDown(target, pos)
	case PointerMove:
		ctrl.PointerMove(pos)
	case PointerUp:
		ctrl.PointerUp()
	case PointerLeave:
		ctrl.PointerLeave()
	case PointerClick:
		ctrl.Click(target)
	case PointerDblClick:
		if req.NodeID == "" {
			writeError(h.logger, w, "Invalid pointer event", "dblclick needs node_id", http.StatusBadRequest)
			return
		}
		if err := ctrl.DoubleClick(req.NodeID); err != nil {
			fail(h.logger, w, "Failed to start editing", err)
			return
		}
	default:
		writeError(h.logger, w, "Invalid pointer event", fmt.Sprintf("unknown type %q", req.Type), http.StatusBadRequest)
		return
	}

	writeJSON(h.logger, w, s.Editor.View(), http.StatusOK)
}

// Action applies one toolbar action to a session
func (h *SessionHandler) Action(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	ctrl := s.Editor.Controller()
	var resp ActionResponse
	var err error

	switch req.Action {
	case ActionSelect:
		s.Editor.Store().SelectNodes(req.NodeIDs...)
	case ActionClearSelection:
		s.Editor.Store().ClearSelection()
		ctrl.CancelConnection()
	case ActionAddNode:
		var n domain.Node
		if n, err = ctrl.AddNode(req.Text); err == nil {
			resp.Node = &n
		}
	case ActionBeginConnection:
		err = ctrl.BeginConnection()
	case ActionCompleteConnection:
		err = ctrl.CompleteConnection()
	case ActionToggleConnection:
		err = ctrl.ToggleConnection()
	case ActionCancelConnection:
		ctrl.CancelConnection()
	case ActionDeleteConnection:
		err = ctrl.DeleteConnection()
	case ActionDeleteSelected:
		resp.Deleted, err = ctrl.DeleteSelected()
	case ActionRecolor:
		err = ctrl.Recolor(req.Color)
	case ActionEditText:
		err = ctrl.EditSelectedText(req.Text)
	case ActionCommitEdit:
		err = ctrl.CommitEdit(req.Text)
	case ActionCancelEdit:
		ctrl.CancelEdit()
	case ActionSave:
		err = s.Editor.Save(r.Context())
	default:
		writeError(h.logger, w, "Invalid action", fmt.Sprintf("unknown action %q", req.Action), http.StatusBadRequest)
		return
	}

	if err != nil {
		fail(h.logger, w, "Action failed", err)
		return
	}

	resp.View = s.Editor.View()
	writeJSON(h.logger, w, resp, http.StatusOK)
}

// Debug returns the overlay report of a session
func (h *SessionHandler) Debug(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(h.logger, w, h.overlay.Report(s.Editor.View()), http.StatusOK)
}

// SetOverlay turns the debug overlay on or off
func (h *SessionHandler) SetOverlay(w http.ResponseWriter, r *http.Request) {
	var req OverlayRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(h.logger, w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
	}

	var enabled bool
	if req.Enabled == nil {
		enabled = h.overlay.Toggle()
	} else {
		enabled = *req.Enabled
		h.overlay.SetEnabled(enabled)
	}

	if h.eventBus != nil {
		h.eventBus.Publish(service.Event{
			Type:    service.EventOverlayToggled,
			Payload: map[string]bool{"enabled": enabled},
		})
	}
	writeJSON(h.logger, w, map[string]bool{"enabled": enabled}, http.StatusOK)
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(r.PathValue("sid"))
	if err != nil {
		fail(h.logger, w, "Session not found", err)
		return nil, false
	}
	return s, true
}

func describe(s *session.Session) SessionResponse {
	return SessionResponse{
		Session: s,
		View:    s.Editor.View(),
		Stats:   s.Editor.Stats(),
	}
}
