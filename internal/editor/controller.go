package editor

import (
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mindcanvas/internal/domain"
)

// DragThreshold is the per-axis displacement, in pixels, above which a
// pointer session counts as a drag rather than a click
const DragThreshold = 3.0

// NewNodeOffset is added to the centroid of existing nodes to place a new node
const NewNodeOffset = 150.0

// NewNodeColor is the fill of nodes created from the toolbar
const NewNodeColor = "#ffffff"

// Palette is the fixed set of toolbar colors
var Palette = []string{
	"#f44336", "#e91e63", "#9c27b0", "#673ab7",
	"#3f51b5", "#2196f3", "#03a9f4", "#00bcd4",
	"#009688", "#4caf50", "#8bc34a", "#cddc39",
	"#ffeb3b", "#ffc107", "#ff9800", "#ff5722",
}

// Phase is the pointer state of the controller
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePanning
	PhaseDragging
)

func (p Phase) String() string {
	switch p {
	case PhasePanning:
		return "panning"
	case PhaseDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// MarshalText renders the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name. Unknown names read as idle.
func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "panning":
		*p = PhasePanning
	case "dragging":
		*p = PhaseDragging
	default:
		*p = PhaseIdle
	}
	return nil
}

// Target is what a pointer event landed on. An empty NodeID is the
// background.
type Target struct {
	NodeID string `json:"node_id,omitempty"`
}

// Background is the canvas outside every node
var Background = Target{}

// OnNode targets the node with the given id
func OnNode(id string) Target {
	return Target{NodeID: id}
}

// IsBackground reports whether the target is the canvas
func (t Target) IsBackground() bool {
	return t.NodeID == ""
}

// ControllerState is a read-only view of the controller
type ControllerState struct {
	Phase            Phase        `json:"phase"`
	Pan              domain.Point `json:"pan"`
	Moved            bool         `json:"moved"`
	Connecting       bool         `json:"connecting"`
	ConnectionSource string       `json:"connection_source,omitempty"`
	ReadOnly         bool         `json:"read_only"`
}

type tracked struct {
	id     string
	origin domain.Point
}

// Controller turns gestures and toolbar actions into store mutations
type Controller struct {
	mu       sync.Mutex
	store    *Store
	readOnly bool
	logger   *zap.Logger
	validate *validator.Validate
	newID    func() string

	phase     Phase
	pressed   bool
	start     domain.Point
	moved     bool
	tracked   []tracked
	panOrigin domain.Point
	pan       domain.Point

	connecting    bool
	connectSource string
}

// NewController creates a controller over store
func NewController(store *Store, readOnly bool, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:    store,
		readOnly: readOnly,
		logger:   logger,
		validate: validator.New(),
		newID:    NewID,
	}
}

// State returns the current controller state
func (c *Controller) State() ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ControllerState{
		Phase:            c.phase,
		Pan:              c.pan,
		Moved:            c.moved,
		Connecting:       c.connecting,
		ConnectionSource: c.connectSource,
		ReadOnly:         c.readOnly,
	}
}

// Reset returns the controller to its initial state
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = PhaseIdle
	c.pressed = false
	c.moved = false
	c.tracked = nil
	c.pan = domain.Point{}
	c.panOrigin = domain.Point{}
	c.connecting = false
	c.connectSource = ""
}

// PointerDown starts a pointer session. On the background it starts a pan;
// on a node it starts a potential drag of the node, or of the whole
// selection when the node is selected.
func (c *Controller) PointerDown(t Target, pos domain.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.start = pos
	c.pressed = true
	c.moved = false
	c.tracked = nil

	if t.IsBackground() {
		c.phase = PhasePanning
		c.panOrigin = c.pan
		return
	}

	// read-only presses only track displacement
	if c.readOnly {
		c.phase = PhaseIdle
		return
	}

	snap := c.store.Snapshot()
	ids := []string{t.NodeID}
	if slices.Contains(snap.Selected, t.NodeID) {
		ids = snap.Selected
	}
	for _, n := range snap.Nodes {
		if slices.Contains(ids, n.ID) {
			c.tracked = append(c.tracked, tracked{id: n.ID, origin: n.Position()})
		}
	}
	if len(c.tracked) == 0 {
		c.phase = PhaseIdle
		return
	}
	c.phase = PhaseDragging
}

// PointerMove updates the pan offset or the positions of the dragged nodes.
// Positions are always origin plus total displacement.
func (c *Controller) PointerMove(pos domain.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.pressed {
		return
	}

	delta := pos.Sub(c.start)
	if delta.Exceeds(DragThreshold) {
		c.moved = true
	}

	switch c.phase {
	case PhasePanning:
		c.pan = c.panOrigin.Add(delta)
	case PhaseDragging:
		moving := c.tracked
		c.store.SetNodes(func(nodes []domain.Node) []domain.Node {
			for i := range nodes {
				for _, tr := range moving {
					if nodes[i].ID == tr.id {
						nodes[i] = nodes[i].MoveTo(tr.origin.Add(delta))
					}
				}
			}
			return nodes
		})
	}
}

// PointerUp ends the pointer session. The moved flag is kept until the next
// PointerDown so the following click can be suppressed.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = PhaseIdle
	c.pressed = false
	c.tracked = nil
}

// PointerLeave ends the pointer session like PointerUp
func (c *Controller) PointerLeave() {
	c.PointerUp()
}

// Click dispatches to NodeClick or BackgroundClick
func (c *Controller) Click(t Target) {
	if t.IsBackground() {
		c.BackgroundClick()
		return
	}
	c.NodeClick(t.NodeID)
}

// NodeClick toggles selection of id, or supplies the connection target in
// connecting mode. Clicks that end a drag are ignored.
func (c *Controller) NodeClick(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.moved {
		return
	}

	if c.connecting {
		if _, ok := c.store.Node(id); !ok {
			return
		}
		c.connectLocked(id)
		c.store.SelectNodes(id)
		return
	}

	c.store.ToggleSelectNode(id)
	c.cancelIfSelectionEmptyLocked()
}

// BackgroundClick clears the selection unless it ends a pan
func (c *Controller) BackgroundClick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.moved {
		return
	}
	c.store.ClearSelection()
	c.cancelIfSelectionEmptyLocked()
}

// DoubleClick starts inline text editing of id
func (c *Controller) DoubleClick(id string) error {
	if c.readOnly {
		return ErrReadOnly
	}
	c.store.StartEditing(id)
	return nil
}

// CommitEdit writes text to the node being edited and stops editing
func (c *Controller) CommitEdit(text string) error {
	if c.readOnly {
		return ErrReadOnly
	}
	id, ok := c.store.Editing()
	if !ok {
		return nil
	}
	c.store.UpdateNode(id, domain.NodePatch{Text: &text})
	c.store.StopEditing()
	return nil
}

// CancelEdit stops editing without changing the label
func (c *Controller) CancelEdit() {
	c.store.StopEditing()
}

// EditSelectedText relabels the single selected node
func (c *Controller) EditSelectedText(text string) error {
	if c.readOnly {
		return ErrReadOnly
	}
	if strings.TrimSpace(text) == "" {
		return ErrBlankText
	}
	sel := c.store.Selected()
	if len(sel) != 1 {
		return ErrSelection
	}
	c.store.UpdateNode(sel[0], domain.NodePatch{Text: &text})
	return nil
}

// AddNode creates a node below and to the right of the centroid of the
// existing nodes. In connecting mode the new node becomes the target.
func (c *Controller) AddNode(text string) (domain.Node, error) {
	if c.readOnly {
		return domain.Node{}, ErrReadOnly
	}
	if strings.TrimSpace(text) == "" {
		return domain.Node{}, ErrBlankText
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var node domain.Node
	c.store.SetNodes(func(nodes []domain.Node) []domain.Node {
		var cx, cy float64
		if len(nodes) > 0 {
			for _, n := range nodes {
				cx += n.X
				cy += n.Y
			}
			cx /= float64(len(nodes))
			cy /= float64(len(nodes))
		}
		node = domain.NewNode(c.newID(), text, cx+NewNodeOffset, cy+NewNodeOffset)
		node.Style.BackgroundColor = NewNodeColor
		return append(nodes, node)
	})

	if c.connecting {
		c.connectLocked(node.ID)
	}
	return node, nil
}

// BeginConnection enters connecting mode with the single selected node as
// source
func (c *Controller) BeginConnection() error {
	if c.readOnly {
		return ErrReadOnly
	}
	sel := c.store.Selected()
	if len(sel) != 1 {
		return ErrSelection
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.connecting = true
	c.connectSource = sel[0]
	return nil
}

// CompleteConnection connects the source to the single selected node, if
// any, and leaves connecting mode
func (c *Controller) CompleteConnection() error {
	if c.readOnly {
		return ErrReadOnly
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connecting {
		return nil
	}
	if sel := c.store.Selected(); len(sel) == 1 {
		c.connectLocked(sel[0])
		return nil
	}
	c.exitConnectingLocked()
	return nil
}

// ToggleConnection begins connecting mode, or completes it when active
func (c *Controller) ToggleConnection() error {
	c.mu.Lock()
	active := c.connecting
	c.mu.Unlock()
	if active {
		return c.CompleteConnection()
	}
	return c.BeginConnection()
}

// CancelConnection leaves connecting mode without connecting
func (c *Controller) CancelConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exitConnectingLocked()
}

// DeleteConnection removes the connections between the two selected nodes
// in both directions
func (c *Controller) DeleteConnection() error {
	if c.readOnly {
		return ErrReadOnly
	}
	sel := c.store.Selected()
	if len(sel) != 2 {
		return ErrSelection
	}
	a, b := sel[0], sel[1]
	c.store.SetConnections(func(conns []domain.Connection) []domain.Connection {
		return slices.DeleteFunc(conns, func(conn domain.Connection) bool {
			return conn.Links(a, b) || conn.Links(b, a)
		})
	})
	return nil
}

// DeleteSelected removes the selected nodes and their connections
func (c *Controller) DeleteSelected() ([]string, error) {
	if c.readOnly {
		return nil, ErrReadOnly
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := c.store.DeleteSelectedNodes()
	c.cancelIfSelectionEmptyLocked()
	return removed, nil
}

// Recolor sets the fill of every selected node. An empty selection is a no-op.
func (c *Controller) Recolor(color string) error {
	if c.readOnly {
		return ErrReadOnly
	}
	if err := c.validate.Var(color, "required,hexcolor,len=4|len=7"); err != nil {
		return ErrInvalidColor
	}
	c.store.UpdateSelectedNodesBackgroundColor(color)
	return nil
}

// connectLocked links the connecting source to target, declining
// self-loops and duplicates, and leaves connecting mode either way
func (c *Controller) connectLocked(target string) {
	source := c.connectSource
	c.exitConnectingLocked()

	if source == target {
		c.logger.Debug("connection declined: self-loop", zap.String("node", source))
		return
	}
	if _, ok := c.store.Node(source); !ok {
		return
	}
	if _, ok := c.store.Node(target); !ok {
		return
	}

	if c.store.HasConnection(source, target) {
		c.logger.Debug("connection declined: duplicate",
			zap.String("source", source),
			zap.String("target", target))
		return
	}

	added := false
	c.store.SetConnections(func(conns []domain.Connection) []domain.Connection {
		for _, conn := range conns {
			if conn.Links(source, target) {
				return conns
			}
		}
		added = true
		return append(conns, domain.Connection{Source: source, Target: target})
	})
	if added {
		c.logger.Debug("connection added",
			zap.String("source", source),
			zap.String("target", target))
	}
}

func (c *Controller) exitConnectingLocked() {
	c.connecting = false
	c.connectSource = ""
}

func (c *Controller) cancelIfSelectionEmptyLocked() {
	if c.connecting && len(c.store.Selected()) == 0 {
		c.exitConnectingLocked()
	}
}
