package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"mindcanvas/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullToInt64 converts sql.NullInt64 to int64, NULL being 0
func nullToInt64(ni sql.NullInt64) int64 {
	if ni.Valid {
		return ni.Int64
	}
	return 0
}

// int64ToNull stores 0 as NULL
func int64ToNull(i int64) sql.NullInt64 {
	if i == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: i, Valid: true}
}

// ============================================================================
// Time Helpers
// ============================================================================

// Timestamps are stored as fixed-width UTC text so they sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// marshalDocument encodes a document for the data column
func marshalDocument(doc domain.Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	return string(data), nil
}

// unmarshalDocument decodes the data column. An empty column yields an
// empty document.
func unmarshalDocument(s string) (domain.Document, error) {
	var doc domain.Document
	if s == "" {
		return doc, nil
	}
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return doc, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to mindmaps table:
// 1. Add field to mindmapRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update mindmapColumns constant - APPEND to end
// 4. Update toDomain() to map new field to domain.Mindmap
// 5. Add migration in sqlite.go migrate() using addColumnIfNotExists()
// 6. Update relevant tests
//
// CRITICAL: Column order must match between:
// - mindmapColumns constant
// - scanArgs() return slice

// ============================================================================
// Mindmap Row Scanner
// ============================================================================

// mindmapRow holds all columns from a mindmap query for scanning
type mindmapRow struct {
	ID          int64
	Title       string
	Description sql.NullString
	ProjectID   sql.NullInt64
	DataJSON    string
	CreatedAt   string
	UpdatedAt   string
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match mindmapColumns order exactly:
// id, title, description, project_id, data, created_at, updated_at
func (r *mindmapRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,          // 1
		&r.Title,       // 2
		&r.Description, // 3
		&r.ProjectID,   // 4
		&r.DataJSON,    // 5
		&r.CreatedAt,   // 6
		&r.UpdatedAt,   // 7
	}
}

// toDomain converts the scanned row to a domain.Mindmap
func (r *mindmapRow) toDomain() (*domain.Mindmap, error) {
	m := &domain.Mindmap{
		ID:          r.ID,
		Title:       r.Title,
		Description: nullToString(r.Description),
		ProjectID:   nullToInt64(r.ProjectID),
	}

	data, err := unmarshalDocument(r.DataJSON)
	if err != nil {
		return nil, err
	}
	m.Data = data

	if m.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if m.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return m, nil
}

// mindmapColumns returns the SELECT column list for mindmap queries
const mindmapColumns = `id, title, description, project_id, data, created_at, updated_at`
