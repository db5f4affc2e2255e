package handler

import (
	"net/http"

	"go.uber.org/zap"
)

// Routes holds everything the router dispatches to
type Routes struct {
	Mindmaps   *MindmapHandler
	Sessions   *SessionHandler
	Events     http.Handler
	CORSOrigin string
	Logger     *zap.Logger
}

// NewRouter registers every API route and wraps the mux in middleware
func NewRouter(rt Routes) http.Handler {
	logger := rt.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	// Mindmap endpoints
	mux.HandleFunc("GET /api/mindmaps", rt.Mindmaps.ListMindmaps)
	mux.HandleFunc("POST /api/mindmaps", rt.Mindmaps.CreateMindmap)
	mux.HandleFunc("GET /api/mindmaps/{id}", rt.Mindmaps.GetMindmap)
	mux.HandleFunc("PUT /api/mindmaps/{id}", rt.Mindmaps.UpdateMindmap)
	mux.HandleFunc("DELETE /api/mindmaps/{id}", rt.Mindmaps.DeleteMindmap)
	mux.HandleFunc("GET /api/projects/{project_id}/mindmaps", rt.Mindmaps.ListProjectMindmaps)

	// Import/export endpoints
	mux.HandleFunc("GET /api/mindmaps/{id}/export/{format}", rt.Mindmaps.ExportMindmap)
	mux.HandleFunc("POST /api/mindmaps/{id}/import/{format}", rt.Mindmaps.ImportMindmap)
	mux.HandleFunc("POST /api/import/{format}", rt.Mindmaps.ImportNewMindmap)
	mux.HandleFunc("GET /api/palette", rt.Mindmaps.GetPalette)

	// Session endpoints
	mux.HandleFunc("GET /api/sessions", rt.Sessions.ListSessions)
	mux.HandleFunc("POST /api/sessions", rt.Sessions.OpenSession)
	mux.HandleFunc("GET /api/sessions/{sid}", rt.Sessions.GetSession)
	mux.HandleFunc("DELETE /api/sessions/{sid}", rt.Sessions.CloseSession)
	mux.HandleFunc("POST /api/sessions/{sid}/pointer", rt.Sessions.Pointer)
	mux.HandleFunc("POST /api/sessions/{sid}/actions", rt.Sessions.Action)
	mux.HandleFunc("GET /api/sessions/{sid}/debug", rt.Sessions.Debug)
	mux.HandleFunc("POST /api/debug/overlay", rt.Sessions.SetOverlay)

	// SSE events endpoint
	if rt.Events != nil {
		mux.Handle("GET /events", rt.Events)
	}

	origin := rt.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	return Chain(mux,
		Recover(logger),
		CORS(origin),
		Logger(logger),
	)
}
