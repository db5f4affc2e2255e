// Package editor implements the headless interactive mind-map editor.
//
// An Editor owns one editing session over a single Document. It is built
// from four parts:
//
// Store holds nodes, connections, the selection and the editing pointer.
// Every read and write goes through it. Connection points are re-derived in
// the same state transition that moves a node, so no reader ever sees a
// connection whose cached points disagree with its endpoints.
//
// Controller interprets a pointer gesture stream (down, move, up, click,
// double-click) and toolbar actions into store mutations. Click and drag are
// told apart by displacement, not by event type.
//
// Importer and the Export functions convert between the persisted tree form
// and the flat working graph.
//
// Scheduler debounces content changes and periodically flushes the exported
// document to a save callback.
//
// # Concurrency
//
// Editor, Store and Scheduler are safe for concurrent use. Store listeners
// run after the store lock is released and must not block.
package editor
