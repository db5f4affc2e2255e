// Package handler implements the HTTP layer of the mindcanvas API.
//
// MindmapHandler serves stored mind maps: CRUD, per-project listing and
// import/export in every codec format. SessionHandler drives editor
// sessions: pointer events, toolbar actions and the debug overlay.
//
// All responses are JSON. Errors are written as {error, details} with a
// status derived from the sentinel the error wraps.
//
// Middleware provides panic recovery, CORS and request logging.
package handler
