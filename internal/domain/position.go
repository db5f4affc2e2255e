package domain

import "math"

// Point is a position in canvas coordinates
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p translated by d
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the displacement from o to p
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Exceeds reports whether the displacement is larger than threshold on either axis
func (p Point) Exceeds(threshold float64) bool {
	return math.Abs(p.X) > threshold || math.Abs(p.Y) > threshold
}
