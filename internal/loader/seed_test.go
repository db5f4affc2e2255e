package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcanvas/internal/domain"
)

type memoryStore struct {
	maps []domain.Mindmap
}

func (s *memoryStore) List(context.Context) ([]domain.Mindmap, error) {
	return s.maps, nil
}

func (s *memoryStore) Create(_ context.Context, m *domain.Mindmap) error {
	m.ID = int64(len(s.maps) + 1)
	s.maps = append(s.maps, *m)
	return nil
}

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "goals.json"),
		[]byte(`{"id":"g","text":"Goals","children":[{"id":"g1","text":"Ship"}]}`), 0644))

	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(`version: 1
mindmaps:
  - title: Inline
    project_id: 4
    description: typed in place
    document:
      id: root
      text: Inline root
      color: "#ff0000"
      children:
        - id: a
          text: A
  - file: goals.json
  - title: Empty
`), 0644))

	maps, err := LoadSeed(seedPath)
	require.NoError(t, err)
	require.Len(t, maps, 3)

	inline := maps[0]
	assert.Equal(t, "Inline", inline.Title)
	assert.Equal(t, int64(4), inline.ProjectID)
	assert.Equal(t, "typed in place", inline.Description)
	assert.Equal(t, "Inline root", inline.Data.Text)
	require.NotNil(t, inline.Data.Style)
	assert.Equal(t, "#ff0000", inline.Data.Style.BackgroundColor)
	require.Len(t, inline.Data.Children, 1)

	fromFile := maps[1]
	assert.Equal(t, "Goals", fromFile.Title, "title falls back to the root text")
	assert.Equal(t, 2, fromFile.Data.Count())

	assert.Equal(t, "Empty", maps[2].Title)
	assert.Equal(t, domain.Document{}, maps[2].Data)
}

func TestParseSeed_Errors(t *testing.T) {
	_, err := ParseSeed([]byte("mindmaps: [unclosed"), ".")
	assert.Error(t, err)

	_, err = ParseSeed([]byte("mindmaps:\n  - file: missing.json\n"), t.TempDir())
	assert.Error(t, err)

	_, err = ParseSeed([]byte("mindmaps:\n  - file: plan.txt\n"), t.TempDir())
	assert.Error(t, err)

	_, err = ParseSeed([]byte("mindmaps:\n  - file: a.json\n    document: {text: x}\n"), ".")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	maps := []domain.Mindmap{*domain.NewMindmap("One", 0), *domain.NewMindmap("Two", 0)}

	store := &memoryStore{}
	n, err := Apply(ctx, store, maps, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, store.maps, 2)

	n, err = Apply(ctx, store, maps, nil)
	require.NoError(t, err)
	assert.Zero(t, n, "a populated store is not seeded again")
	assert.Len(t, store.maps, 2)
}
