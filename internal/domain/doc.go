// Package domain defines the core types of the mindcanvas mind-map editor.
//
// This package contains the entities exchanged between the editor, the
// persistence layer and the HTTP host.
//
// # Core Types
//
// Node is a labeled, positioned box in the working (flat) graph. Its Style
// carries the box dimensions and an optional fill color.
//
// Connection is a directed link between two nodes. Its Points are derived
// from the current positions of both endpoints.
//
// Graph is the flat working representation: an ordered list of nodes and an
// ordered list of connections.
//
// Document is the persisted tree form of a mind map. It has no explicit
// connections; parent to child containment implies one.
//
// Mindmap is the stored record wrapping a Document with a title, description
// and owning project.
//
// # Design Principles
//
// - Value types, copied on the way in and out of the editor
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
package domain
