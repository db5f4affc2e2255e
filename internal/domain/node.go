package domain

// Default box dimensions for nodes without an explicit style
const (
	DefaultNodeWidth  = 120.0
	DefaultNodeHeight = 40.0
)

// Style holds the visual attributes of a node
type Style struct {
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
}

// DefaultStyle returns the style applied to nodes that do not carry one
func DefaultStyle() Style {
	return Style{Width: DefaultNodeWidth, Height: DefaultNodeHeight}
}

// Node is a labeled, positioned box in the working graph
type Node struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Style Style   `json:"style"`
}

// NewNode creates a node with the default style
func NewNode(id, text string, x, y float64) Node {
	return Node{
		ID:    id,
		Text:  text,
		X:     x,
		Y:     y,
		Style: DefaultStyle(),
	}
}

// Position returns the node's coordinates
func (n Node) Position() Point {
	return Point{X: n.X, Y: n.Y}
}

// MoveTo returns a copy of the node placed at p
func (n Node) MoveTo(p Point) Node {
	n.X, n.Y = p.X, p.Y
	return n
}

// NodePatch carries the fields of a partial node update.
// Nil fields are left untouched.
type NodePatch struct {
	Text  *string
	X     *float64
	Y     *float64
	Style *Style
}

// Apply merges the patch into n and returns the result
func (p NodePatch) Apply(n Node) Node {
	if p.Text != nil {
		n.Text = *p.Text
	}
	if p.X != nil {
		n.X = *p.X
	}
	if p.Y != nil {
		n.Y = *p.Y
	}
	if p.Style != nil {
		n.Style = *p.Style
	}
	return n
}

// Moves reports whether the patch changes the node position
func (p NodePatch) Moves() bool {
	return p.X != nil || p.Y != nil
}
