// Package repository defines the data access interfaces for mindcanvas.
//
// The Repository interface covers the stored mind-map records: CRUD, listing
// by owning project, and a document-only write used by editor autosave.
// The implementation is in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation uses the pure-Go modernc.org/sqlite driver with
// WAL mode. Documents are stored as a JSON column; title, description and
// project are indexed columns. Missing records are reported as
// domain.ErrNotFound.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
