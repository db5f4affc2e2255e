package domain

import (
	"testing"
)

func TestPointArithmetic(t *testing.T) {
	p := Point{X: 10, Y: 20}

	if got := p.Add(Point{X: 1, Y: -1}); got != (Point{X: 11, Y: 19}) {
		t.Errorf("Add = %v", got)
	}
	if got := p.Sub(Point{X: 4, Y: 5}); got != (Point{X: 6, Y: 15}) {
		t.Errorf("Sub = %v", got)
	}
}

func TestPointExceeds(t *testing.T) {
	tests := []struct {
		name string
		d    Point
		want bool
	}{
		{"zero", Point{}, false},
		{"at threshold", Point{X: 3, Y: -3}, false},
		{"beyond on x", Point{X: 3.5}, true},
		{"beyond on negative y", Point{Y: -4}, true},
		{"diagonal inside", Point{X: 2.9, Y: 2.9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Exceeds(3); got != tt.want {
				t.Errorf("Exceeds(3) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDocumentShape(t *testing.T) {
	doc := NewDocument("root", "Root")
	child := NewDocument("c1", "Child")
	child.Children = append(child.Children, NewDocument("g1", "Grandchild"))
	doc.Children = append(doc.Children, child, NewDocument("c2", "Child 2"))

	if doc.Count() != 4 {
		t.Errorf("expected 4 nodes, got %d", doc.Count())
	}
	if doc.Depth() != 3 {
		t.Errorf("expected depth 3, got %d", doc.Depth())
	}

	var order []string
	doc.Walk(func(n Document, depth int) {
		order = append(order, n.ID)
	})
	want := []string{"root", "c1", "g1", "c2"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected pre-order %v, got %v", want, order)
		}
	}
}
