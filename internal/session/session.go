// Package session keeps the open editor sessions of the HTTP host.
//
// Sessions live in an expiring in-memory cache. Each session owns one
// editor over one stored mind map; the editor saves back through the
// MindmapStore. A session that sees no request for the idle TTL is evicted
// and its editor closed.
package session

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"mindcanvas/internal/domain"
	"mindcanvas/internal/editor"
	"mindcanvas/internal/service"
)

// MindmapStore loads and saves the documents sessions edit
type MindmapStore interface {
	Get(ctx context.Context, id int64) (*domain.Mindmap, error)
	SaveDocument(ctx context.Context, id int64, doc domain.Document) error
}

// Config tunes the manager and the editors it opens
type Config struct {
	IdleTTL         time.Duration
	CleanupInterval time.Duration

	Width      float64
	Height     float64
	ExportMode editor.ExportMode
	Debounce   time.Duration
	Interval   time.Duration
	Clock      editor.Clock
}

// Session is one open editor
type Session struct {
	ID        string         `json:"id"`
	MindmapID int64          `json:"mindmap_id"`
	ReadOnly  bool           `json:"read_only"`
	OpenedAt  time.Time      `json:"opened_at"`
	Editor    *editor.Editor `json:"-"`
}

// Manager opens, finds and closes sessions
type Manager struct {
	cache    *cache.Cache
	store    MindmapStore
	cfg      Config
	overlay  editor.Observer
	eventBus *service.EventBus
	logger   *zap.Logger
}

// NewManager creates a session manager. overlay may be nil.
func NewManager(store MindmapStore, cfg Config, overlay editor.Observer, eventBus *service.EventBus, logger *zap.Logger) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		cache:    cache.New(cfg.IdleTTL, cfg.CleanupInterval),
		store:    store,
		cfg:      cfg,
		overlay:  overlay,
		eventBus: eventBus,
		logger:   logger.Named("sessions"),
	}
	m.cache.OnEvicted(m.onEvicted)
	return m
}

func (m *Manager) onEvicted(id string, v interface{}) {
	s, ok := v.(*Session)
	if !ok {
		return
	}
	s.Editor.Close()
	if f, ok := m.overlay.(interface{ Forget(string) }); ok {
		f.Forget(id)
	}

	m.logger.Info("session closed", zap.String("session", id), zap.Int64("mindmap", s.MindmapID))
	m.publish(service.EventSessionClosed, map[string]interface{}{"session_id": id, "mindmap_id": s.MindmapID})
}

// Observe forwards editor changes to the overlay and the event bus
func (m *Manager) Observe(editorID string, c editor.Change) {
	if m.overlay != nil {
		m.overlay.Observe(editorID, c)
	}
	if c.Kind.IsContent() {
		m.publish(service.EventSessionChanged, map[string]interface{}{"session_id": editorID, "kind": c.Kind})
	}
}

// Open starts an editor session over a stored mind map
func (m *Manager) Open(ctx context.Context, mindmapID int64, readOnly bool) (*Session, error) {
	mm, err := m.store.Get(ctx, mindmapID)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s := &Session{
		ID:        id,
		MindmapID: mindmapID,
		ReadOnly:  readOnly,
		OpenedAt:  time.Now(),
	}
	s.Editor = editor.New(mm.Data, editor.Options{
		ID:         id,
		ReadOnly:   readOnly,
		Width:      m.cfg.Width,
		Height:     m.cfg.Height,
		ExportMode: m.cfg.ExportMode,
		Debounce:   m.cfg.Debounce,
		Interval:   m.cfg.Interval,
		Clock:      m.cfg.Clock,
		Observer:   m,
		Logger:     m.logger,
		Save: func(ctx context.Context, doc domain.Document) error {
			return m.store.SaveDocument(ctx, mindmapID, doc)
		},
	})

	m.cache.Set(id, s, cache.DefaultExpiration)

	m.logger.Info("session opened",
		zap.String("session", id),
		zap.Int64("mindmap", mindmapID),
		zap.Bool("read_only", readOnly))
	m.publish(service.EventSessionOpened, map[string]interface{}{"session_id": id, "mindmap_id": mindmapID})
	return s, nil
}

// Get returns a session and restarts its idle timer
func (m *Manager) Get(id string) (*Session, error) {
	m.cache.DeleteExpired()
	x, found := m.cache.Get(id)
	if !found {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	s := x.(*Session)
	m.cache.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

// List returns the open sessions ordered by opening time
func (m *Manager) List() []*Session {
	m.cache.DeleteExpired()
	items := m.cache.Items()
	out := make([]*Session, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(*Session))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out
}

// Count returns the number of open sessions
func (m *Manager) Count() int {
	m.cache.DeleteExpired()
	return m.cache.ItemCount()
}

// Close ends a session. Pending debounced saves are discarded.
func (m *Manager) Close(id string) error {
	m.cache.DeleteExpired()
	if _, found := m.cache.Get(id); !found {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	m.cache.Delete(id)
	return nil
}

// Shutdown saves and closes every session, then waits for in-flight saves
func (m *Manager) Shutdown(ctx context.Context) {
	sessions := m.List()
	for _, s := range sessions {
		if !s.ReadOnly {
			if err := s.Editor.Save(ctx); err != nil {
				m.logger.Warn("final save failed", zap.String("session", s.ID), zap.Error(err))
			}
		}
		m.cache.Delete(s.ID)
	}
	for _, s := range sessions {
		s.Editor.Wait()
	}
}

func (m *Manager) publish(t service.EventType, payload interface{}) {
	if m.eventBus == nil {
		return
	}
	m.eventBus.Publish(service.Event{Type: t, Payload: payload})
}
