package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcanvas/internal/domain"
)

func newTestController(t *testing.T, readOnly bool) (*Controller, *Store) {
	t.Helper()
	s := newTestStore(t)
	return NewController(s, readOnly, nil), s
}

func pos(x, y float64) domain.Point {
	return domain.Point{X: x, Y: y}
}

func TestController_ClickTogglesSelection(t *testing.T) {
	c, s := newTestController(t, false)

	c.PointerDown(OnNode("a"), pos(100, 100))
	c.PointerUp()
	c.Click(OnNode("a"))
	assert.Equal(t, []string{"a"}, s.Selected())

	c.PointerDown(OnNode("a"), pos(100, 100))
	c.PointerUp()
	c.Click(OnNode("a"))
	assert.Empty(t, s.Selected())
}

func TestController_DragThreshold(t *testing.T) {
	tests := []struct {
		name      string
		to        domain.Point
		wantMoved bool
	}{
		{"below threshold", pos(103, 97), false},
		{"x exceeds", pos(104, 100), true},
		{"y exceeds", pos(100, 96), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s := newTestController(t, false)

			c.PointerDown(OnNode("a"), pos(100, 100))
			c.PointerMove(tt.to)
			c.PointerUp()
			c.Click(OnNode("a"))

			assert.Equal(t, tt.wantMoved, c.State().Moved)
			if tt.wantMoved {
				assert.Empty(t, s.Selected(), "click after drag must not toggle")
			} else {
				assert.Equal(t, []string{"a"}, s.Selected())
			}
		})
	}
}

func TestController_DragMovesNode(t *testing.T) {
	c, s := newTestController(t, false)

	c.PointerDown(OnNode("b"), pos(10, 10))
	assert.Equal(t, PhaseDragging, c.State().Phase)
	c.PointerMove(pos(20, 15))
	c.PointerMove(pos(60, 40))
	c.PointerUp()

	b, _ := s.Node("b")
	assert.Equal(t, pos(50, 280), b.Position())
	a, _ := s.Node("a")
	assert.Equal(t, pos(100, 100), a.Position())
	assertPointsDerived(t, s)
	assert.Equal(t, PhaseIdle, c.State().Phase)
}

func TestController_DragSelectionKeepsSelection(t *testing.T) {
	c, s := newTestController(t, false)
	s.SelectNodes("a", "c")

	c.PointerDown(OnNode("c"), pos(0, 0))
	c.PointerMove(pos(10, -20))
	c.PointerUp()
	c.Click(OnNode("c"))

	a, _ := s.Node("a")
	cc, _ := s.Node("c")
	b, _ := s.Node("b")
	assert.Equal(t, pos(110, 80), a.Position())
	assert.Equal(t, pos(210, 230), cc.Position())
	assert.Equal(t, pos(0, 250), b.Position())
	assert.Equal(t, []string{"a", "c"}, s.Selected())
	assertPointsDerived(t, s)
}

func TestController_DragUnselectedNodeMovesOnlyIt(t *testing.T) {
	c, s := newTestController(t, false)
	s.SelectNodes("a")

	c.PointerDown(OnNode("b"), pos(0, 0))
	c.PointerMove(pos(5, 5))
	c.PointerUp()

	a, _ := s.Node("a")
	assert.Equal(t, pos(100, 100), a.Position())
	b, _ := s.Node("b")
	assert.Equal(t, pos(5, 255), b.Position())
}

func TestController_Pan(t *testing.T) {
	c, s := newTestController(t, false)
	s.SelectNodes("a")

	c.PointerDown(Background, pos(0, 0))
	assert.Equal(t, PhasePanning, c.State().Phase)
	c.PointerMove(pos(30, 40))
	c.PointerLeave()
	c.Click(Background)

	assert.Equal(t, pos(30, 40), c.State().Pan)
	assert.Equal(t, []string{"a"}, s.Selected(), "click after pan must not clear")

	// a second pan continues from the current offset
	c.PointerDown(Background, pos(100, 100))
	c.PointerMove(pos(90, 100))
	c.PointerUp()
	assert.Equal(t, pos(20, 40), c.State().Pan)

	a, _ := s.Node("a")
	assert.Equal(t, pos(100, 100), a.Position(), "pan never moves nodes")
}

func TestController_BackgroundClickClears(t *testing.T) {
	c, s := newTestController(t, false)
	s.SelectNodes("a", "b")

	c.PointerDown(Background, pos(0, 0))
	c.PointerUp()
	c.Click(Background)

	assert.Empty(t, s.Selected())
}

func TestController_Connecting(t *testing.T) {
	t.Run("requires one selected", func(t *testing.T) {
		c, s := newTestController(t, false)
		assert.ErrorIs(t, c.BeginConnection(), ErrSelection)
		s.SelectNodes("a", "b")
		assert.ErrorIs(t, c.BeginConnection(), ErrSelection)
	})

	t.Run("click supplies target", func(t *testing.T) {
		c, s := newTestController(t, false)
		s.SelectNodes("b")
		require.NoError(t, c.BeginConnection())
		assert.True(t, c.State().Connecting)
		assert.Equal(t, "b", c.State().ConnectionSource)

		c.PointerDown(OnNode("c"), pos(0, 0))
		c.PointerUp()
		c.Click(OnNode("c"))

		assert.True(t, s.HasConnection("b", "c"))
		assert.False(t, c.State().Connecting)
		assert.Equal(t, []string{"c"}, s.Selected())
		assertPointsDerived(t, s)
	})

	t.Run("self loop declined", func(t *testing.T) {
		c, s := newTestController(t, false)
		s.SelectNodes("b")
		require.NoError(t, c.BeginConnection())
		c.NodeClick("b")

		assert.False(t, s.HasConnection("b", "b"))
		assert.Len(t, s.Connections(), 2)
		assert.False(t, c.State().Connecting)
	})

	t.Run("duplicate declined", func(t *testing.T) {
		c, s := newTestController(t, false)
		s.SelectNodes("a")
		require.NoError(t, c.BeginConnection())
		c.NodeClick("b")

		assert.Len(t, s.Connections(), 2)
		assert.False(t, c.State().Connecting)
	})

	t.Run("reverse direction allowed", func(t *testing.T) {
		c, s := newTestController(t, false)
		s.SelectNodes("b")
		require.NoError(t, c.BeginConnection())
		c.NodeClick("a")

		assert.True(t, s.HasConnection("b", "a"))
		assert.Len(t, s.Connections(), 3)
	})

	t.Run("complete with selected target", func(t *testing.T) {
		c, s := newTestController(t, false)
		s.SelectNodes("b")
		require.NoError(t, c.ToggleConnection())
		s.SelectNodes("c")
		require.NoError(t, c.ToggleConnection())

		assert.True(t, s.HasConnection("b", "c"))
		assert.False(t, c.State().Connecting)
	})

	t.Run("complete without single selection exits", func(t *testing.T) {
		c, s := newTestController(t, false)
		s.SelectNodes("b")
		require.NoError(t, c.BeginConnection())
		s.SelectNodes("a", "c")
		require.NoError(t, c.CompleteConnection())

		assert.Len(t, s.Connections(), 2)
		assert.False(t, c.State().Connecting)
	})

	t.Run("empty selection cancels", func(t *testing.T) {
		c, s := newTestController(t, false)
		s.SelectNodes("b")
		require.NoError(t, c.BeginConnection())
		c.BackgroundClick()

		assert.False(t, c.State().Connecting)
	})

	t.Run("drag click does not connect", func(t *testing.T) {
		c, s := newTestController(t, false)
		s.SelectNodes("b")
		require.NoError(t, c.BeginConnection())

		c.PointerDown(OnNode("c"), pos(0, 0))
		c.PointerMove(pos(50, 0))
		c.PointerUp()
		c.Click(OnNode("c"))

		assert.False(t, s.HasConnection("b", "c"))
		assert.True(t, c.State().Connecting)
	})
}

func TestController_AddNode(t *testing.T) {
	t.Run("placed at centroid offset", func(t *testing.T) {
		c, s := newTestController(t, false)
		n, err := c.AddNode("idea")
		require.NoError(t, err)

		// centroid of (100,100) (0,250) (200,250) is (100,200)
		assert.Equal(t, pos(250, 350), n.Position())
		assert.Equal(t, NewNodeColor, n.Style.BackgroundColor)
		assert.Equal(t, 120.0, n.Style.Width)
		assert.Len(t, s.Nodes(), 4)
		assert.NotEmpty(t, n.ID)
	})

	t.Run("empty graph", func(t *testing.T) {
		s := NewStore()
		c := NewController(s, false, nil)
		n, err := c.AddNode("first")
		require.NoError(t, err)
		assert.Equal(t, pos(150, 150), n.Position())
	})

	t.Run("blank text rejected", func(t *testing.T) {
		c, s := newTestController(t, false)
		_, err := c.AddNode("   ")
		assert.ErrorIs(t, err, ErrBlankText)
		assert.Len(t, s.Nodes(), 3)
	})

	t.Run("connecting mode targets new node", func(t *testing.T) {
		c, s := newTestController(t, false)
		s.SelectNodes("c")
		require.NoError(t, c.BeginConnection())
		n, err := c.AddNode("child")
		require.NoError(t, err)

		assert.True(t, s.HasConnection("c", n.ID))
		assert.False(t, c.State().Connecting)
	})

	t.Run("ids never reused", func(t *testing.T) {
		c, s := newTestController(t, false)
		n1, _ := c.AddNode("one")
		s.SelectNodes(n1.ID)
		_, _ = c.DeleteSelected()
		n2, _ := c.AddNode("two")
		assert.NotEqual(t, n1.ID, n2.ID)
	})
}

func TestController_DeleteConnection(t *testing.T) {
	c, s := newTestController(t, false)
	s.AddConnection("b", "a")

	s.SelectNodes("a")
	assert.ErrorIs(t, c.DeleteConnection(), ErrSelection)

	s.SelectNodes("a", "b")
	require.NoError(t, c.DeleteConnection())

	assert.False(t, s.HasConnection("a", "b"))
	assert.False(t, s.HasConnection("b", "a"))
	assert.True(t, s.HasConnection("a", "c"))
}

func TestController_DeleteSelected(t *testing.T) {
	c, s := newTestController(t, false)
	s.SelectNodes("a")
	removed, err := c.DeleteSelected()
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, removed)
	assert.Len(t, s.Nodes(), 2)
	assert.Empty(t, s.Connections())
}

func TestController_Recolor(t *testing.T) {
	c, s := newTestController(t, false)
	s.SelectNodes("b")

	assert.ErrorIs(t, c.Recolor("red"), ErrInvalidColor)
	assert.ErrorIs(t, c.Recolor(""), ErrInvalidColor)
	assert.ErrorIs(t, c.Recolor("#ffff"), ErrInvalidColor, "alpha forms are rejected")
	assert.ErrorIs(t, c.Recolor("#ffffffff"), ErrInvalidColor)
	assert.ErrorIs(t, c.Recolor("#ggg"), ErrInvalidColor)

	require.NoError(t, c.Recolor(Palette[5]))
	b, _ := s.Node("b")
	assert.Equal(t, "#2196f3", b.Style.BackgroundColor)

	s.ClearSelection()
	require.NoError(t, c.Recolor("#000"))
}

func TestController_TextEditing(t *testing.T) {
	t.Run("double click then commit", func(t *testing.T) {
		c, s := newTestController(t, false)
		require.NoError(t, c.DoubleClick("b"))
		id, ok := s.Editing()
		require.True(t, ok)
		assert.Equal(t, "b", id)

		require.NoError(t, c.CommitEdit("new label"))
		b, _ := s.Node("b")
		assert.Equal(t, "new label", b.Text)
		_, ok = s.Editing()
		assert.False(t, ok)
	})

	t.Run("cancel keeps label", func(t *testing.T) {
		c, s := newTestController(t, false)
		require.NoError(t, c.DoubleClick("b"))
		c.CancelEdit()
		b, _ := s.Node("b")
		assert.Equal(t, "B", b.Text)
	})

	t.Run("edit selected text", func(t *testing.T) {
		c, s := newTestController(t, false)
		assert.ErrorIs(t, c.EditSelectedText("x"), ErrSelection)
		s.SelectNodes("c")
		assert.ErrorIs(t, c.EditSelectedText(" "), ErrBlankText)
		require.NoError(t, c.EditSelectedText("renamed"))
		n, _ := s.Node("c")
		assert.Equal(t, "renamed", n.Text)
	})
}

func TestController_ReadOnly(t *testing.T) {
	c, s := newTestController(t, true)
	s.SelectNodes("a")

	_, err := c.AddNode("x")
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.ErrorIs(t, c.BeginConnection(), ErrReadOnly)
	assert.ErrorIs(t, c.DeleteConnection(), ErrReadOnly)
	assert.ErrorIs(t, c.Recolor("#fff"), ErrReadOnly)
	assert.ErrorIs(t, c.EditSelectedText("x"), ErrReadOnly)
	assert.ErrorIs(t, c.DoubleClick("a"), ErrReadOnly)
	_, err = c.DeleteSelected()
	assert.ErrorIs(t, err, ErrReadOnly)

	c.PointerDown(OnNode("a"), pos(0, 0))
	c.PointerMove(pos(50, 50))
	c.PointerUp()
	a, _ := s.Node("a")
	assert.Equal(t, pos(100, 100), a.Position(), "read-only drag must not move")
	c.Click(OnNode("a"))
	assert.Equal(t, []string{"a"}, s.Selected(), "click ending a read-only drag is ignored")

	// selection and pan still work
	c.PointerDown(OnNode("b"), pos(0, 0))
	c.PointerMove(pos(2, 0))
	c.PointerUp()
	c.Click(OnNode("b"))
	assert.Equal(t, []string{"a", "b"}, s.Selected())
	c.PointerDown(Background, pos(0, 0))
	c.PointerMove(pos(7, 0))
	c.PointerUp()
	assert.Equal(t, pos(7, 0), c.State().Pan)
	assert.Len(t, s.Nodes(), 3)
}

func TestController_Reset(t *testing.T) {
	c, s := newTestController(t, false)
	s.SelectNodes("a")
	require.NoError(t, c.BeginConnection())
	c.PointerDown(Background, pos(0, 0))
	c.PointerMove(pos(10, 10))

	c.Reset()

	st := c.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.False(t, st.Connecting)
	assert.False(t, st.Moved)
	assert.Equal(t, domain.Point{}, st.Pan)
}
