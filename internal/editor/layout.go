package editor

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mindcanvas/internal/domain"
)

// Layout constants for children without explicit coordinates
const (
	HorizontalSpacing = 150.0
	RowHeight         = 150.0
)

// Default canvas size used to place a root without coordinates
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// ExportMode selects how the flat graph is folded back into a tree
type ExportMode string

const (
	// ExportTree rebuilds the tree from the connection topology
	ExportTree ExportMode = "tree"
	// ExportFlat hangs every node under a placeholder root
	ExportFlat ExportMode = "flat"
)

// ParseExportMode converts a config value into an ExportMode
func ParseExportMode(s string) (ExportMode, error) {
	switch ExportMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExportTree:
		return ExportTree, nil
	case ExportFlat:
		return ExportFlat, nil
	default:
		return "", fmt.Errorf("unknown export mode %q", s)
	}
}

// NewID returns a fresh node id
func NewID() string {
	return uuid.NewString()
}

// Importer flattens a Document tree into a Graph
type Importer struct {
	Width  float64
	Height float64
	NewID  func() string
}

// NewImporter creates an importer for a canvas of the given size.
// Non-positive dimensions fall back to the defaults.
func NewImporter(width, height float64) *Importer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Importer{Width: width, Height: height, NewID: NewID}
}

// Import walks doc depth-first and returns the flat graph.
// Nodes appear in pre-order; each parent->child edge becomes one connection.
func (im *Importer) Import(doc domain.Document) *domain.Graph {
	g := domain.NewGraph()
	root := domain.Point{X: im.Width / 2, Y: im.Height / 2}
	im.walk(g, doc, root, nil, make(map[string]bool))
	return g
}

func (im *Importer) walk(g *domain.Graph, doc domain.Document, def domain.Point, parent *domain.Node, seen map[string]bool) {
	pos := def
	if doc.X != nil {
		pos.X = *doc.X
	}
	if doc.Y != nil {
		pos.Y = *doc.Y
	}

	id := doc.ID
	if id == "" || seen[id] {
		id = im.newID()
	}
	seen[id] = true

	node := domain.NewNode(id, doc.Text, pos.X, pos.Y)
	if st := doc.Style; st != nil {
		if st.Width != nil {
			node.Style.Width = *st.Width
		}
		if st.Height != nil {
			node.Style.Height = *st.Height
		}
		node.Style.BackgroundColor = st.BackgroundColor
	}

	g.AddNode(node)
	if parent != nil {
		g.AddConnection(domain.NewConnection(*parent, node))
	}

	k := len(doc.Children)
	if k == 0 {
		return
	}
	startX := pos.X - float64(k-1)*HorizontalSpacing/2
	for i, child := range doc.Children {
		childDef := domain.Point{X: startX + float64(i)*HorizontalSpacing, Y: pos.Y + RowHeight}
		im.walk(g, child, childDef, &node, seen)
	}
}

func (im *Importer) newID() string {
	if im.NewID != nil {
		return im.NewID()
	}
	return NewID()
}

// Placeholder root used by flat exports and to wrap multiple roots
const (
	PlaceholderRootID   = "root"
	PlaceholderRootText = "Root"
)

// Export folds the graph back into a Document using the given mode
func Export(mode ExportMode, nodes []domain.Node, conns []domain.Connection) domain.Document {
	if mode == ExportFlat {
		return ExportFlatDocument(nodes)
	}
	doc, _ := ExportTreeDocument(nodes, conns)
	return doc
}

// ExportFlatDocument returns a placeholder root at the origin whose children
// are every node in order, each without children.
func ExportFlatDocument(nodes []domain.Node) domain.Document {
	root := domain.NewDocument(PlaceholderRootID, PlaceholderRootText).At(0, 0)
	for _, n := range nodes {
		root.Children = append(root.Children, domain.DocumentFromNode(n))
	}
	return root
}

// ExportTreeDocument rebuilds a tree from the connection topology.
// Roots are nodes without an incoming connection, children follow
// connection order and each node is emitted once. Several roots are wrapped
// in a placeholder root. The second result is the number of connections the
// tree could not represent.
func ExportTreeDocument(nodes []domain.Node, conns []domain.Connection) (domain.Document, int) {
	byID := make(map[string]domain.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	outgoing := make(map[string][]string)
	incoming := make(map[string]int)
	valid := 0
	for _, c := range conns {
		if _, ok := byID[c.Source]; !ok {
			continue
		}
		if _, ok := byID[c.Target]; !ok {
			continue
		}
		outgoing[c.Source] = append(outgoing[c.Source], c.Target)
		incoming[c.Target]++
		valid++
	}

	visited := make(map[string]bool, len(nodes))
	var build func(id string) domain.Document
	build = func(id string) domain.Document {
		visited[id] = true
		d := domain.DocumentFromNode(byID[id])
		for _, target := range outgoing[id] {
			if !visited[target] {
				d.Children = append(d.Children, build(target))
			}
		}
		return d
	}

	var roots []domain.Document
	for _, n := range nodes {
		if incoming[n.ID] == 0 && !visited[n.ID] {
			roots = append(roots, build(n.ID))
		}
	}
	// nodes only reachable through a cycle
	for _, n := range nodes {
		if !visited[n.ID] {
			roots = append(roots, build(n.ID))
		}
	}

	tree := 0
	for _, r := range roots {
		tree += r.Count() - 1
	}
	dropped := valid - tree

	switch len(roots) {
	case 0:
		return domain.NewDocument(PlaceholderRootID, PlaceholderRootText).At(0, 0), dropped
	case 1:
		return roots[0], dropped
	}

	rootID := PlaceholderRootID
	if _, taken := byID[rootID]; taken {
		rootID = NewID()
	}
	wrapper := domain.NewDocument(rootID, PlaceholderRootText)
	wrapper.Children = roots
	return wrapper, dropped
}
