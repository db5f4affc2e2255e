// Package overlay produces numbered debug annotations for editor sessions.
//
// A Service is injected into editors as their Observer. While enabled it
// keeps a short history of store changes per editor and can annotate any
// editor view with one numbered entry per node and connection.
package overlay

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"mindcanvas/internal/editor"
)

// HistorySize is the number of recent changes kept per editor
const HistorySize = 50

// Kind of annotated element
const (
	KindNode       = "node"
	KindConnection = "connection"
)

// Annotation describes one element of an editor view
type Annotation struct {
	Index    int     `json:"index"`
	Kind     string  `json:"kind"`
	ID       string  `json:"id"`
	Text     string  `json:"text,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Color    string  `json:"color,omitempty"`
	Selected bool    `json:"selected,omitempty"`
	Editing  bool    `json:"editing,omitempty"`
}

// Report is the overlay output for one editor
type Report struct {
	Enabled     bool            `json:"enabled"`
	Annotations []Annotation    `json:"annotations"`
	Recent      []editor.Change `json:"recent"`
}

// Service is the debug overlay
type Service struct {
	mu      sync.Mutex
	enabled bool
	history map[string][]editor.Change
	logger  *zap.Logger
}

// New creates an overlay service
func New(enabled bool, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		enabled: enabled,
		history: make(map[string][]editor.Change),
		logger:  logger.Named("overlay"),
	}
}

// Enabled reports whether the overlay is on
func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetEnabled turns the overlay on or off. Turning it off drops the history.
func (s *Service) SetEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled == on {
		return
	}
	s.enabled = on
	if !on {
		s.history = make(map[string][]editor.Change)
	}
	s.logger.Info("debug overlay toggled", zap.Bool("enabled", on))
}

// Toggle flips the overlay and returns the new state
func (s *Service) Toggle() bool {
	on := !s.Enabled()
	s.SetEnabled(on)
	return on
}

// Observe records a change while enabled
func (s *Service) Observe(editorID string, c editor.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}

	h := append(s.history[editorID], c)
	if len(h) > HistorySize {
		h = h[len(h)-HistorySize:]
	}
	s.history[editorID] = h

	s.logger.Debug("change",
		zap.String("editor", editorID),
		zap.String("kind", string(c.Kind)),
		zap.Strings("nodes", c.NodeIDs))
}

// Forget drops the history of a closed editor
func (s *Service) Forget(editorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, editorID)
}

// Recent returns the recorded changes of an editor, oldest first
func (s *Service) Recent(editorID string) []editor.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]editor.Change(nil), s.history[editorID]...)
}

// Annotate numbers every node, then every connection, of a view.
// Connections sit at the midpoint of their cached points.
func Annotate(v editor.View) []Annotation {
	selected := make(map[string]bool, len(v.Selected))
	for _, id := range v.Selected {
		selected[id] = true
	}

	out := make([]Annotation, 0, len(v.Nodes)+len(v.Connections))
	for _, n := range v.Nodes {
		out = append(out, Annotation{
			Index:    len(out) + 1,
			Kind:     KindNode,
			ID:       n.ID,
			Text:     n.Text,
			X:        n.X,
			Y:        n.Y,
			Width:    n.Style.Width,
			Height:   n.Style.Height,
			Color:    n.Style.BackgroundColor,
			Selected: selected[n.ID],
			Editing:  v.Editing == n.ID,
		})
	}
	for _, c := range v.Connections {
		a := Annotation{
			Index: len(out) + 1,
			Kind:  KindConnection,
			ID:    fmt.Sprintf("%s->%s", c.Source, c.Target),
		}
		if len(c.Points) == 2 {
			a.X = (c.Points[0].X + c.Points[1].X) / 2
			a.Y = (c.Points[0].Y + c.Points[1].Y) / 2
		}
		out = append(out, a)
	}
	return out
}

// Report annotates v when the overlay is enabled
func (s *Service) Report(v editor.View) Report {
	if !s.Enabled() {
		return Report{Annotations: []Annotation{}, Recent: []editor.Change{}}
	}
	recent := s.Recent(v.ID)
	if recent == nil {
		recent = []editor.Change{}
	}
	return Report{
		Enabled:     true,
		Annotations: Annotate(v),
		Recent:      recent,
	}
}
