package domain

// Connection is a directed link between two nodes.
// Points caches the endpoint coordinates: Points[0] is the source position,
// Points[1] the target position.
type Connection struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Points []Point `json:"points,omitempty"`
}

// NewConnection creates a connection with points taken from both endpoints
func NewConnection(source, target Node) Connection {
	return Connection{
		Source: source.ID,
		Target: target.ID,
		Points: []Point{source.Position(), target.Position()},
	}
}

// Involves checks if this connection touches the given node ID
func (c Connection) Involves(nodeID string) bool {
	return c.Source == nodeID || c.Target == nodeID
}

// Links reports whether c goes from source to target
func (c Connection) Links(source, target string) bool {
	return c.Source == source && c.Target == target
}

// IsSelfLoop reports whether both endpoints are the same node
func (c Connection) IsSelfLoop() bool {
	return c.Source == c.Target
}
