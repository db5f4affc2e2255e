package domain

// DocumentStyle is the optional style block of a persisted node.
// Absent dimensions fall back to the defaults on import.
type DocumentStyle struct {
	Width           *float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height          *float64 `json:"height,omitempty" yaml:"height,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
}

// Document is the persisted tree form of a mind map.
// X and Y are optional; absent coordinates are computed from the parent layout.
type Document struct {
	ID       string         `json:"id" yaml:"id"`
	Text     string         `json:"text" yaml:"text"`
	X        *float64       `json:"x,omitempty" yaml:"x,omitempty"`
	Y        *float64       `json:"y,omitempty" yaml:"y,omitempty"`
	Style    *DocumentStyle `json:"style,omitempty" yaml:"style,omitempty"`
	Children []Document     `json:"children" yaml:"children"`
}

// NewDocument creates a childless document node
func NewDocument(id, text string) Document {
	return Document{ID: id, Text: text, Children: []Document{}}
}

// At returns a copy of d with explicit coordinates
func (d Document) At(x, y float64) Document {
	d.X, d.Y = &x, &y
	return d
}

// Count returns the number of nodes in the tree rooted at d
func (d Document) Count() int {
	n := 1
	for _, c := range d.Children {
		n += c.Count()
	}
	return n
}

// Depth returns the number of levels in the tree rooted at d
func (d Document) Depth() int {
	deepest := 0
	for _, c := range d.Children {
		if cd := c.Depth(); cd > deepest {
			deepest = cd
		}
	}
	return deepest + 1
}

// Walk visits every node of the tree in depth-first pre-order
func (d Document) Walk(fn func(node Document, depth int)) {
	d.walk(fn, 0)
}

func (d Document) walk(fn func(Document, int), depth int) {
	fn(d, depth)
	for _, c := range d.Children {
		c.walk(fn, depth+1)
	}
}

// DocumentFromNode converts a working node into a childless document node
func DocumentFromNode(n Node) Document {
	x, y := n.X, n.Y
	w, h := n.Style.Width, n.Style.Height
	return Document{
		ID:   n.ID,
		Text: n.Text,
		X:    &x,
		Y:    &y,
		Style: &DocumentStyle{
			Width:           &w,
			Height:          &h,
			BackgroundColor: n.Style.BackgroundColor,
		},
		Children: []Document{},
	}
}
