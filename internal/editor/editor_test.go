package editor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcanvas/internal/domain"
)

type recordingObserver struct {
	mu      sync.Mutex
	changes []Change
	ids     []string
}

func (o *recordingObserver) Observe(editorID string, c Change) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.changes = append(o.changes, c)
	o.ids = append(o.ids, editorID)
}

type savedDocs struct {
	mu   sync.Mutex
	docs []domain.Document
}

func (s *savedDocs) save(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
	return nil
}

func (s *savedDocs) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *savedDocs) last() domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[len(s.docs)-1]
}

func testDocument() domain.Document {
	doc := domain.NewDocument("root", "Central")
	doc.Children = []domain.Document{
		domain.NewDocument("left", "Left"),
		domain.NewDocument("right", "Right"),
	}
	return doc
}

func newTestEditor(t *testing.T, opts Options) (*Editor, *fakeClock, *savedDocs) {
	t.Helper()
	clock := newFakeClock()
	saved := &savedDocs{}
	opts.Clock = clock
	if opts.Save == nil {
		opts.Save = saved.save
	}
	e := New(testDocument(), opts)
	t.Cleanup(func() {
		e.Close()
		e.Wait()
	})
	return e, clock, saved
}

func TestEditor_New(t *testing.T) {
	e, _, _ := newTestEditor(t, Options{ID: "s1"})

	v := e.View()
	assert.Equal(t, "s1", v.ID)
	require.Len(t, v.Nodes, 3)
	assert.Len(t, v.Connections, 2)
	assert.Equal(t, DefaultWidth, v.Width)
	assert.Equal(t, domain.Point{X: 400, Y: 300}, v.Nodes[0].Position())
	assert.Equal(t, PhaseIdle, v.Controller.Phase)
}

func TestEditor_ContentChangesAutosave(t *testing.T) {
	e, clock, saved := newTestEditor(t, Options{})

	e.Store().SelectNodes("left")
	clock.Advance(2 * time.Second)
	e.Wait()
	assert.Equal(t, 0, saved.count(), "selection alone must not save")

	require.NoError(t, e.Controller().EditSelectedText("Renamed"))
	clock.Advance(time.Second)
	e.Wait()

	require.Equal(t, 1, saved.count())
	var texts []string
	saved.last().Walk(func(n domain.Document, _ int) { texts = append(texts, n.Text) })
	assert.Equal(t, []string{"Central", "Renamed", "Right"}, texts)
}

func TestEditor_Save(t *testing.T) {
	e, _, saved := newTestEditor(t, Options{})
	require.NoError(t, e.Save(context.Background()))
	assert.Equal(t, 1, saved.count())
	assert.Equal(t, 1, e.Stats().Saves)
}

func TestEditor_ReadOnly(t *testing.T) {
	e, clock, saved := newTestEditor(t, Options{ReadOnly: true})

	assert.True(t, e.ReadOnly())
	assert.ErrorIs(t, e.Save(context.Background()), ErrReadOnly)
	_, err := e.Controller().AddNode("x")
	assert.ErrorIs(t, err, ErrReadOnly)

	clock.Advance(time.Minute)
	assert.Equal(t, 0, saved.count())
	assert.Equal(t, 0, clock.Active())
}

func TestEditor_Close(t *testing.T) {
	e, clock, saved := newTestEditor(t, Options{})

	_, err := e.Controller().AddNode("pending")
	require.NoError(t, err)
	e.Close()

	clock.Advance(time.Minute)
	e.Wait()
	assert.Equal(t, 0, saved.count())
	assert.ErrorIs(t, e.Save(context.Background()), ErrClosed)
	assert.ErrorIs(t, e.Load(testDocument()), ErrClosed)
}

func TestEditor_LoadDiscardsPendingSave(t *testing.T) {
	e, clock, saved := newTestEditor(t, Options{})

	e.Store().SelectNodes("left")
	require.NoError(t, e.Controller().BeginConnection())
	_, err := e.Controller().AddNode("pending")
	require.NoError(t, err)

	require.NoError(t, e.Load(domain.NewDocument("other", "Other")))
	clock.Advance(time.Second)
	e.Wait()

	assert.Equal(t, 0, saved.count())
	v := e.View()
	require.Len(t, v.Nodes, 1)
	assert.Equal(t, "other", v.Nodes[0].ID)
	assert.Empty(t, v.Selected)
	assert.False(t, v.Controller.Connecting)

	// the new document autosaves on its own schedule
	clock.Advance(DefaultInterval)
	e.Wait()
	require.Equal(t, 1, saved.count())
	assert.Equal(t, "other", saved.last().ID)
}

// closeOnLoad closes its editor when a document is loaded
type closeOnLoad struct {
	e *Editor
}

func (o *closeOnLoad) Observe(_ string, c Change) {
	if c.Kind == ChangeLoaded && o.e != nil {
		o.e.Close()
	}
}

func TestEditor_CloseDuringLoad(t *testing.T) {
	obs := &closeOnLoad{}
	e, clock, saved := newTestEditor(t, Options{Observer: obs})
	obs.e = e

	require.NoError(t, e.Load(domain.NewDocument("other", "Other")))

	clock.Advance(DefaultInterval + time.Second)
	e.Wait()
	assert.Equal(t, 0, saved.count(), "no save after Close")
	assert.Equal(t, 0, clock.Active())
	assert.ErrorIs(t, e.Save(context.Background()), ErrClosed)
}

func TestEditor_ConcurrentLoads(t *testing.T) {
	e, clock, saved := newTestEditor(t, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.Load(domain.NewDocument("other", "Other")))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, clock.Active(), "one periodic timer survives")
	clock.Advance(DefaultInterval)
	e.Wait()
	assert.Equal(t, 1, saved.count())

	e.Close()
	assert.Equal(t, 0, clock.Active())
}

func TestEditor_Observer(t *testing.T) {
	obs := &recordingObserver{}
	e, _, _ := newTestEditor(t, Options{ID: "observed", Observer: obs})

	e.Store().SelectNodes("root")

	obs.mu.Lock()
	defer obs.mu.Unlock()
	require.NotEmpty(t, obs.changes)
	assert.Equal(t, ChangeLoaded, obs.changes[0].Kind)
	assert.Equal(t, ChangeSelection, obs.changes[len(obs.changes)-1].Kind)
	assert.Equal(t, "observed", obs.ids[0])
}

func TestEditor_ExportModes(t *testing.T) {
	t.Run("tree", func(t *testing.T) {
		e, _, _ := newTestEditor(t, Options{})
		doc := e.Export()
		assert.Equal(t, "root", doc.ID)
		assert.Equal(t, 3, doc.Count())
		assert.Equal(t, 2, doc.Depth())
	})

	t.Run("flat", func(t *testing.T) {
		e, _, _ := newTestEditor(t, Options{ExportMode: ExportFlat})
		doc := e.Export()
		assert.Equal(t, PlaceholderRootID, doc.ID)
		assert.Equal(t, PlaceholderRootText, doc.Text)
		assert.Equal(t, 4, doc.Count())
	})
}
