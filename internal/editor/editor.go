package editor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindcanvas/internal/domain"
)

// Observer receives every store change of an editor. Observers must not
// block and must not mutate the editor from within Observe.
type Observer interface {
	Observe(editorID string, c Change)
}

// Options configures an Editor
type Options struct {
	// ID identifies the editor to observers
	ID string

	ReadOnly bool

	// Canvas size used to place a root without coordinates
	Width  float64
	Height float64

	// Save persists exported documents. Autosave is disabled when nil or
	// when the editor is read-only.
	Save SaveFunc

	ExportMode ExportMode
	Debounce   time.Duration
	Interval   time.Duration
	Clock      Clock

	Observer Observer
	Logger   *zap.Logger
}

// View is the renderable state of an editor
type View struct {
	ID          string              `json:"id"`
	Nodes       []domain.Node       `json:"nodes"`
	Connections []domain.Connection `json:"connections"`
	Selected    []string            `json:"selected"`
	Editing     string              `json:"editing,omitempty"`
	Controller  ControllerState     `json:"controller"`
	Width       float64             `json:"width"`
	Height      float64             `json:"height"`
}

// Editor is one editing session over a single document
type Editor struct {
	opts     Options
	store    *Store
	ctrl     *Controller
	importer *Importer
	logger   *zap.Logger

	mu     sync.RWMutex
	sched  *Scheduler
	closed bool
}

// New imports doc and starts autosave
func New(doc domain.Document, opts Options) *Editor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ExportMode == "" {
		opts.ExportMode = ExportTree
	}
	logger := opts.Logger.Named("editor")
	if opts.ID != "" {
		logger = logger.With(zap.String("editor", opts.ID))
	}

	importer := NewImporter(opts.Width, opts.Height)
	opts.Width, opts.Height = importer.Width, importer.Height

	store := NewStore()
	e := &Editor{
		opts:     opts,
		store:    store,
		ctrl:     NewController(store, opts.ReadOnly, logger),
		importer: importer,
		logger:   logger,
	}
	store.Subscribe(e.onChange)

	e.load(doc)
	return e
}

func (e *Editor) onChange(c Change) {
	if c.Kind.IsContent() && !e.opts.ReadOnly {
		e.mu.RLock()
		sched := e.sched
		e.mu.RUnlock()
		if sched != nil {
			sched.Touch()
		}
	}
	if e.opts.Observer != nil {
		e.opts.Observer.Observe(e.opts.ID, c)
	}
}

func (e *Editor) load(doc domain.Document) {
	g := e.importer.Import(doc)
	e.store.Load(g)
	e.ctrl.Reset()

	e.logger.Debug("document loaded",
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("connections", len(g.Connections)))

	if e.opts.ReadOnly || e.opts.Save == nil {
		return
	}
	sched := NewScheduler(e.Export, e.opts.Save, SchedulerConfig{
		Debounce: e.opts.Debounce,
		Interval: e.opts.Interval,
		Clock:    e.opts.Clock,
	}, e.logger.Named("autosave"))

	// Close or another Load may have run while the document was loading
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	old := e.sched
	e.sched = sched
	sched.Start()
	e.mu.Unlock()

	if old != nil {
		old.Stop()
	}
}

// Load discards the current graph and pending saves and imports doc
func (e *Editor) Load(doc domain.Document) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	old := e.sched
	e.sched = nil
	e.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	e.load(doc)
	return nil
}

// Store returns the graph store
func (e *Editor) Store() *Store {
	return e.store
}

// Controller returns the interaction controller
func (e *Editor) Controller() *Controller {
	return e.ctrl
}

// ReadOnly reports whether mutations are disabled
func (e *Editor) ReadOnly() bool {
	return e.opts.ReadOnly
}

// View returns the renderable state
func (e *Editor) View() View {
	snap := e.store.Snapshot()
	return View{
		ID:          e.opts.ID,
		Nodes:       snap.Nodes,
		Connections: snap.Connections,
		Selected:    snap.Selected,
		Editing:     snap.Editing,
		Controller:  e.ctrl.State(),
		Width:       e.opts.Width,
		Height:      e.opts.Height,
	}
}

// Export folds the current graph into a document
func (e *Editor) Export() domain.Document {
	snap := e.store.Snapshot()
	if e.opts.ExportMode == ExportFlat {
		return ExportFlatDocument(snap.Nodes)
	}
	doc, dropped := ExportTreeDocument(snap.Nodes, snap.Connections)
	if dropped > 0 {
		e.logger.Debug("export dropped connections outside the tree", zap.Int("count", dropped))
	}
	return doc
}

// Save flushes the current document through the save callback
func (e *Editor) Save(ctx context.Context) error {
	if e.opts.ReadOnly {
		return ErrReadOnly
	}
	e.mu.RLock()
	sched, closed := e.sched, e.closed
	e.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if sched == nil {
		return nil
	}
	return sched.Flush(ctx)
}

// Stats returns the autosave counters
func (e *Editor) Stats() SaveStats {
	e.mu.RLock()
	sched := e.sched
	e.mu.RUnlock()
	if sched == nil {
		return SaveStats{}
	}
	return sched.Stats()
}

// Close stops autosave. Pending debounced saves are discarded; saves
// already running finish in the background.
func (e *Editor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	sched := e.sched
	e.mu.Unlock()

	if sched != nil {
		sched.Stop()
	}
	e.logger.Debug("editor closed")
}

// Wait blocks until in-flight saves have returned
func (e *Editor) Wait() {
	e.mu.RLock()
	sched := e.sched
	e.mu.RUnlock()
	if sched != nil {
		sched.Wait()
	}
}
