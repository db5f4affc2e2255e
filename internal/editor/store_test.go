package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcanvas/internal/domain"
)

// newTestStore returns a store with nodes a, b, c and connections a->b, a->c
func newTestStore(t *testing.T) *Store {
	t.Helper()
	g := domain.NewGraph()
	a := domain.NewNode("a", "A", 100, 100)
	b := domain.NewNode("b", "B", 0, 250)
	c := domain.NewNode("c", "C", 200, 250)
	g.AddNode(a)
	g.AddNode(b)
	g.AddNode(c)
	g.AddConnection(domain.NewConnection(a, b))
	g.AddConnection(domain.NewConnection(a, c))

	s := NewStore()
	s.Load(g)
	return s
}

func assertPointsDerived(t *testing.T, s *Store) {
	t.Helper()
	snap := s.Snapshot()
	for _, c := range snap.Connections {
		src, ok := s.Node(c.Source)
		require.True(t, ok, "connection source %s missing", c.Source)
		dst, ok := s.Node(c.Target)
		require.True(t, ok, "connection target %s missing", c.Target)
		require.Len(t, c.Points, 2)
		assert.Equal(t, src.Position(), c.Points[0])
		assert.Equal(t, dst.Position(), c.Points[1])
	}
}

func TestStore_Load(t *testing.T) {
	s := newTestStore(t)
	s.SelectNodes("a")
	s.StartEditing("a")

	s.Load(domain.NewGraph())

	assert.Empty(t, s.Nodes())
	assert.Empty(t, s.Connections())
	assert.Empty(t, s.Selected())
	_, editing := s.Editing()
	assert.False(t, editing)
}

func TestStore_ToggleSelectNode(t *testing.T) {
	t.Run("twice is identity", func(t *testing.T) {
		s := newTestStore(t)
		s.SelectNodes("c")
		before := s.Selected()

		s.ToggleSelectNode("a")
		assert.Equal(t, []string{"c", "a"}, s.Selected())
		s.ToggleSelectNode("a")
		assert.Equal(t, before, s.Selected())
	})

	t.Run("unknown id ignored", func(t *testing.T) {
		s := newTestStore(t)
		s.ToggleSelectNode("missing")
		assert.Empty(t, s.Selected())
	})
}

func TestStore_SetSelectedNodes(t *testing.T) {
	s := newTestStore(t)
	s.SetSelectedNodes(func([]string) []string {
		return []string{"b", "a", "b", "ghost"}
	})
	assert.Equal(t, []string{"b", "a"}, s.Selected())
}

func TestStore_UpdateNode(t *testing.T) {
	t.Run("moves re-derive points", func(t *testing.T) {
		s := newTestStore(t)
		x, y := 500.0, 600.0
		s.UpdateNode("a", domain.NodePatch{X: &x, Y: &y})

		n, ok := s.Node("a")
		require.True(t, ok)
		assert.Equal(t, domain.Point{X: 500, Y: 600}, n.Position())
		assertPointsDerived(t, s)
	})

	t.Run("text only", func(t *testing.T) {
		s := newTestStore(t)
		text := "renamed"
		s.UpdateNode("b", domain.NodePatch{Text: &text})

		n, _ := s.Node("b")
		assert.Equal(t, "renamed", n.Text)
		assert.Equal(t, domain.Point{X: 0, Y: 250}, n.Position())
	})

	t.Run("unknown id is no-op", func(t *testing.T) {
		s := newTestStore(t)
		var changes []Change
		s.Subscribe(func(c Change) { changes = append(changes, c) })

		text := "x"
		s.UpdateNode("ghost", domain.NodePatch{Text: &text})
		assert.Empty(t, changes)
		assert.Len(t, s.Nodes(), 3)
	})
}

func TestStore_SetNodes_DropsDanglingConnections(t *testing.T) {
	s := newTestStore(t)
	s.SelectNodes("b")
	s.SetNodes(func(nodes []domain.Node) []domain.Node {
		return nodes[:2] // drop c
	})

	conns := s.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "b", conns[0].Target)
	assert.Equal(t, []string{"b"}, s.Selected())
}

func TestStore_AddConnection(t *testing.T) {
	t.Run("no de-dup", func(t *testing.T) {
		s := newTestStore(t)
		s.AddConnection("a", "b")
		assert.Len(t, s.Connections(), 3)
	})

	t.Run("points from endpoints", func(t *testing.T) {
		s := newTestStore(t)
		s.AddConnection("b", "c")
		assert.True(t, s.HasConnection("b", "c"))
		assertPointsDerived(t, s)
	})

	t.Run("missing endpoint dropped", func(t *testing.T) {
		s := newTestStore(t)
		s.AddConnection("a", "ghost")
		assert.Len(t, s.Connections(), 2)
	})
}

func TestStore_UpdateConnection(t *testing.T) {
	s := newTestStore(t)
	pts := []domain.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}
	s.UpdateConnection("a", "b", pts)

	conns := s.Connections()
	assert.Equal(t, pts, conns[0].Points)

	// the next node mutation re-derives them
	x := 10.0
	s.UpdateNode("c", domain.NodePatch{X: &x})
	assertPointsDerived(t, s)
}

func TestStore_DeleteSelectedNodes(t *testing.T) {
	s := newTestStore(t)
	s.SelectNodes("a", "b")
	s.StartEditing("b")

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	removed := s.DeleteSelectedNodes()
	assert.ElementsMatch(t, []string{"a", "b"}, removed)

	nodes := s.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "c", nodes[0].ID)
	assert.Empty(t, s.Connections())
	assert.Empty(t, s.Selected())
	_, editing := s.Editing()
	assert.False(t, editing)

	// single state transition
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeNodes, changes[0].Kind)

	t.Run("empty selection", func(t *testing.T) {
		assert.Nil(t, s.DeleteSelectedNodes())
		assert.Len(t, s.Nodes(), 1)
	})
}

func TestStore_DeleteSelectedNodes_LeavesNoDanglingConnections(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []string
		edges    [][2]string
		selected []string
		left     int
	}{
		{"star hub", []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"a", "c"}, {"a", "d"}}, []string{"a"}, 0},
		{"chain middle", []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}}, []string{"b", "c"}, 0},
		{"cycle", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, []string{"c"}, 1},
		{"shared target", []string{"a", "b", "c"}, [][2]string{{"a", "c"}, {"b", "c"}, {"a", "b"}}, []string{"c"}, 1},
		{"both directions", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "a"}, {"b", "c"}}, []string{"a"}, 1},
		{"everything", []string{"a", "b"}, [][2]string{{"a", "b"}}, []string{"a", "b"}, 0},
		{"isolated", []string{"a", "b", "c"}, [][2]string{{"a", "b"}}, []string{"c"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := domain.NewGraph()
			byID := map[string]domain.Node{}
			for i, id := range tt.nodes {
				n := domain.NewNode(id, id, float64(i*100), 0)
				byID[id] = n
				g.AddNode(n)
			}
			for _, e := range tt.edges {
				g.AddConnection(domain.NewConnection(byID[e[0]], byID[e[1]]))
			}
			s := NewStore()
			s.Load(g)
			s.SelectNodes(tt.selected...)

			s.DeleteSelectedNodes()

			snap := s.Snapshot()
			assert.Len(t, snap.Nodes, len(tt.nodes)-len(tt.selected))
			assert.Len(t, snap.Connections, tt.left)
			assert.Empty(t, snap.Selected)
			for _, c := range snap.Connections {
				_, ok := s.Node(c.Source)
				assert.True(t, ok, "dangling source %s", c.Source)
				_, ok = s.Node(c.Target)
				assert.True(t, ok, "dangling target %s", c.Target)
			}
			assertPointsDerived(t, s)
		})
	}
}

func TestStore_UpdateSelectedNodesBackgroundColor(t *testing.T) {
	s := newTestStore(t)
	s.SelectNodes("a", "c")
	s.UpdateSelectedNodesBackgroundColor("#ff5722")

	for _, n := range s.Nodes() {
		if n.ID == "b" {
			assert.Empty(t, n.Style.BackgroundColor)
		} else {
			assert.Equal(t, "#ff5722", n.Style.BackgroundColor)
		}
	}
}

func TestStore_Editing(t *testing.T) {
	s := newTestStore(t)
	s.StartEditing("ghost")
	_, ok := s.Editing()
	assert.False(t, ok)

	s.StartEditing("b")
	id, ok := s.Editing()
	assert.True(t, ok)
	assert.Equal(t, "b", id)

	s.StopEditing()
	_, ok = s.Editing()
	assert.False(t, ok)
}

func TestStore_SnapshotIsDeepCopy(t *testing.T) {
	s := newTestStore(t)
	snap := s.Snapshot()
	snap.Nodes[0].Text = "mutated"
	snap.Connections[0].Points[0] = domain.Point{X: -1, Y: -1}

	n, _ := s.Node("a")
	assert.Equal(t, "A", n.Text)
	assertPointsDerived(t, s)
}

func TestChangeKind_IsContent(t *testing.T) {
	tests := []struct {
		kind ChangeKind
		want bool
	}{
		{ChangeNodes, true},
		{ChangeConnections, true},
		{ChangeSelection, false},
		{ChangeEditing, false},
		{ChangeLoaded, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.IsContent())
		})
	}
}
