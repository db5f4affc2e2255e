package editor

import (
	"slices"
	"sync"

	"mindcanvas/internal/domain"
)

// ChangeKind identifies what part of the store a mutation touched
type ChangeKind string

const (
	ChangeNodes       ChangeKind = "nodes"
	ChangeConnections ChangeKind = "connections"
	ChangeSelection   ChangeKind = "selection"
	ChangeEditing     ChangeKind = "editing"
	ChangeLoaded      ChangeKind = "loaded"
)

// IsContent reports whether the change alters what gets persisted
func (k ChangeKind) IsContent() bool {
	return k == ChangeNodes || k == ChangeConnections
}

// Change describes one store state transition
type Change struct {
	Kind    ChangeKind `json:"kind"`
	NodeIDs []string   `json:"node_ids,omitempty"`
}

// Listener receives store changes
type Listener func(Change)

// Snapshot is a deep copy of the store state
type Snapshot struct {
	Nodes       []domain.Node       `json:"nodes"`
	Connections []domain.Connection `json:"connections"`
	Selected    []string            `json:"selected"`
	Editing     string              `json:"editing,omitempty"`
}

// Store is the single source of truth for one editing session
type Store struct {
	mu          sync.RWMutex
	nodes       []domain.Node
	connections []domain.Connection
	selected    []string
	editing     string

	listenersMu sync.Mutex
	listeners   []Listener
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		nodes:       make([]domain.Node, 0),
		connections: make([]domain.Connection, 0),
		selected:    make([]string, 0),
	}
}

// Subscribe registers a listener for every subsequent change
func (s *Store) Subscribe(l Listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) emit(c Change) {
	s.listenersMu.Lock()
	listeners := slices.Clone(s.listeners)
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(c)
	}
}

// Load replaces the whole state with the given graph and clears the
// selection and editing pointer
func (s *Store) Load(g *domain.Graph) {
	s.mu.Lock()
	s.nodes = cloneNodes(g.Nodes)
	s.connections = cloneConnections(g.Connections)
	s.selected = make([]string, 0)
	s.editing = ""
	s.reconcileLocked()
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeLoaded})
}

// Nodes returns a copy of all nodes in insertion order
func (s *Store) Nodes() []domain.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNodes(s.nodes)
}

// Node returns the node with the given id
func (s *Store) Node(id string) (domain.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.nodes[i], true
	}
	return domain.Node{}, false
}

// Connections returns a copy of all connections
func (s *Store) Connections() []domain.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneConnections(s.connections)
}

// HasConnection reports whether a source->target connection exists
func (s *Store) HasConnection(source, target string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.connections, func(c domain.Connection) bool {
		return c.Links(source, target)
	})
}

// Selected returns the selected node ids in selection order
func (s *Store) Selected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.selected)
}

// IsSelected reports whether id is in the selection
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.selected, id)
}

// Editing returns the node currently being text-edited
func (s *Store) Editing() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editing, s.editing != ""
}

// Snapshot returns a consistent deep copy of the whole state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Nodes:       cloneNodes(s.nodes),
		Connections: cloneConnections(s.connections),
		Selected:    slices.Clone(s.selected),
		Editing:     s.editing,
	}
}

// SetNodes replaces the node list with the result of fn applied to a copy of
// the current list. fn runs under the store lock and must not call back into
// the store.
func (s *Store) SetNodes(fn func([]domain.Node) []domain.Node) {
	s.mu.Lock()
	s.nodes = fn(cloneNodes(s.nodes))
	s.reconcileLocked()
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeNodes})
}

// ReplaceNodes replaces the node list
func (s *Store) ReplaceNodes(nodes []domain.Node) {
	s.SetNodes(func([]domain.Node) []domain.Node { return cloneNodes(nodes) })
}

// SetConnections replaces the connection list with the result of fn applied
// to a copy of the current list. Connections whose endpoints do not exist
// are dropped.
func (s *Store) SetConnections(fn func([]domain.Connection) []domain.Connection) {
	s.mu.Lock()
	s.connections = fn(cloneConnections(s.connections))
	s.reconcileLocked()
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeConnections})
}

// ReplaceConnections replaces the connection list
func (s *Store) ReplaceConnections(conns []domain.Connection) {
	s.SetConnections(func([]domain.Connection) []domain.Connection { return cloneConnections(conns) })
}

// UpdateNode merges patch into the node with the given id.
// Unknown ids are ignored.
func (s *Store) UpdateNode(id string, patch domain.NodePatch) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.nodes[i] = patch.Apply(s.nodes[i])
	s.reconcileLocked()
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeNodes, NodeIDs: []string{id}})
}

// AddConnection appends a source->target connection. Duplicates are not
// checked here; a connection with a missing endpoint is dropped.
func (s *Store) AddConnection(source, target string) {
	s.SetConnections(func(conns []domain.Connection) []domain.Connection {
		return append(conns, domain.Connection{Source: source, Target: target})
	})
}

// UpdateConnection overwrites the cached points of every source->target
// connection. The points are re-derived on the next node mutation.
func (s *Store) UpdateConnection(source, target string, points []domain.Point) {
	s.mu.Lock()
	found := false
	for i := range s.connections {
		if s.connections[i].Links(source, target) {
			s.connections[i].Points = slices.Clone(points)
			found = true
		}
	}
	s.mu.Unlock()

	if found {
		s.emit(Change{Kind: ChangeConnections, NodeIDs: []string{source, target}})
	}
}

// ToggleSelectNode adds id to the selection if absent, removes it if present
func (s *Store) ToggleSelectNode(id string) {
	s.mu.Lock()
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return
	}
	if i := slices.Index(s.selected, id); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
	} else {
		s.selected = append(s.selected, id)
	}
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeSelection, NodeIDs: []string{id}})
}

// SetSelectedNodes replaces the selection with the result of fn. Duplicates
// and unknown ids are removed.
func (s *Store) SetSelectedNodes(fn func([]string) []string) {
	s.mu.Lock()
	s.selected = fn(slices.Clone(s.selected))
	s.pruneSelectionLocked()
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeSelection})
}

// SelectNodes replaces the selection with ids
func (s *Store) SelectNodes(ids ...string) {
	s.SetSelectedNodes(func([]string) []string { return slices.Clone(ids) })
}

// ClearSelection empties the selection
func (s *Store) ClearSelection() {
	s.SelectNodes()
}

// StartEditing sets the editing pointer. Unknown ids are ignored.
func (s *Store) StartEditing(id string) {
	s.mu.Lock()
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return
	}
	s.editing = id
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeEditing, NodeIDs: []string{id}})
}

// StopEditing clears the editing pointer
func (s *Store) StopEditing() {
	s.mu.Lock()
	had := s.editing != ""
	s.editing = ""
	s.mu.Unlock()

	if had {
		s.emit(Change{Kind: ChangeEditing})
	}
}

// DeleteSelectedNodes removes every selected node, every connection touching
// one of them, and clears the selection in a single state transition.
// It returns the removed ids.
func (s *Store) DeleteSelectedNodes() []string {
	s.mu.Lock()
	removed := slices.Clone(s.selected)
	if len(removed) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.nodes = slices.DeleteFunc(s.nodes, func(n domain.Node) bool {
		return slices.Contains(removed, n.ID)
	})
	s.connections = slices.DeleteFunc(s.connections, func(c domain.Connection) bool {
		return slices.Contains(removed, c.Source) || slices.Contains(removed, c.Target)
	})
	s.selected = make([]string, 0)
	if slices.Contains(removed, s.editing) {
		s.editing = ""
	}
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeNodes, NodeIDs: removed})
	return removed
}

// UpdateSelectedNodesBackgroundColor sets the fill color of every selected node
func (s *Store) UpdateSelectedNodesBackgroundColor(color string) {
	s.mu.Lock()
	if len(s.selected) == 0 {
		s.mu.Unlock()
		return
	}
	for i := range s.nodes {
		if slices.Contains(s.selected, s.nodes[i].ID) {
			s.nodes[i].Style.BackgroundColor = color
		}
	}
	ids := slices.Clone(s.selected)
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeNodes, NodeIDs: ids})
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.nodes, func(n domain.Node) bool { return n.ID == id })
}

// reconcileLocked restores the store invariants after a bulk mutation:
// dangling connections are dropped, connection points follow their
// endpoints, and selection/editing only reference existing nodes.
func (s *Store) reconcileLocked() {
	pos := make(map[string]domain.Point, len(s.nodes))
	for _, n := range s.nodes {
		pos[n.ID] = n.Position()
	}

	kept := s.connections[:0]
	for _, c := range s.connections {
		src, okSrc := pos[c.Source]
		dst, okDst := pos[c.Target]
		if !okSrc || !okDst {
			continue
		}
		c.Points = []domain.Point{src, dst}
		kept = append(kept, c)
	}
	s.connections = kept

	s.pruneSelectionLocked()
	if _, ok := pos[s.editing]; !ok {
		s.editing = ""
	}
}

func (s *Store) pruneSelectionLocked() {
	seen := make(map[string]bool, len(s.selected))
	kept := make([]string, 0, len(s.selected))
	for _, id := range s.selected {
		if seen[id] || s.indexLocked(id) < 0 {
			continue
		}
		seen[id] = true
		kept = append(kept, id)
	}
	s.selected = kept
}

func cloneNodes(nodes []domain.Node) []domain.Node {
	if nodes == nil {
		return make([]domain.Node, 0)
	}
	return slices.Clone(nodes)
}

func cloneConnections(conns []domain.Connection) []domain.Connection {
	out := make([]domain.Connection, len(conns))
	for i, c := range conns {
		c.Points = slices.Clone(c.Points)
		out[i] = c
	}
	return out
}
