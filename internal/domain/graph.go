package domain

// Graph is the flat working representation of a mind map
type Graph struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		Nodes:       make([]Node, 0),
		Connections: make([]Connection, 0),
	}
}

// AddNode adds a node to the graph
func (g *Graph) AddNode(node Node) {
	g.Nodes = append(g.Nodes, node)
}

// AddConnection adds a connection to the graph
func (g *Graph) AddConnection(conn Connection) {
	g.Connections = append(g.Connections, conn)
}

// NodeByID returns the node with the given id
func (g *Graph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// HasConnection reports whether a connection from source to target exists
func (g *Graph) HasConnection(source, target string) bool {
	for _, c := range g.Connections {
		if c.Links(source, target) {
			return true
		}
	}
	return false
}
