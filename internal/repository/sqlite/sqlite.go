package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mindcanvas/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to :memory: is a separate database
	if isMemory(dbPath) {
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	pragmas := "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if !isMemory(dbPath) {
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	return dbPath + sep + pragmas
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS mindmaps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		project_id INTEGER,
		data TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_mindmaps_project ON mindmaps(project_id);
	`

	if _, err := r.db.Exec(schema); err != nil {
		return err
	}

	return r.addColumnIfNotExists("mindmaps", "description", "TEXT")
}

// addColumnIfNotExists adds a column to an existing table
func (r *Repository) addColumnIfNotExists(table, column, decl string) error {
	rows, err := r.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	if _, err := r.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl)); err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}
	return nil
}

// GetMindmap retrieves a single mindmap by ID
func (r *Repository) GetMindmap(ctx context.Context, id int64) (*domain.Mindmap, error) {
	var row mindmapRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+mindmapColumns+` FROM mindmaps WHERE id = ?`, id,
	).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mindmap %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mindmap: %w", err)
	}

	return row.toDomain()
}

// ListMindmaps returns all mindmaps, most recently updated first
func (r *Repository) ListMindmaps(ctx context.Context) ([]domain.Mindmap, error) {
	return r.queryMindmaps(ctx,
		`SELECT `+mindmapColumns+` FROM mindmaps ORDER BY updated_at DESC, id DESC`)
}

// ListMindmapsByProject returns the mindmaps owned by a project
func (r *Repository) ListMindmapsByProject(ctx context.Context, projectID int64) ([]domain.Mindmap, error) {
	return r.queryMindmaps(ctx,
		`SELECT `+mindmapColumns+` FROM mindmaps WHERE project_id = ? ORDER BY updated_at DESC, id DESC`,
		projectID)
}

func (r *Repository) queryMindmaps(ctx context.Context, query string, args ...interface{}) ([]domain.Mindmap, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mindmaps: %w", err)
	}
	defer rows.Close()

	mindmaps := make([]domain.Mindmap, 0)
	for rows.Next() {
		var row mindmapRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan mindmap: %w", err)
		}
		m, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		mindmaps = append(mindmaps, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mindmaps: %w", err)
	}

	return mindmaps, nil
}

// CreateMindmap inserts a mindmap and sets its ID and timestamps
func (r *Repository) CreateMindmap(ctx context.Context, m *domain.Mindmap) error {
	data, err := marshalDocument(m.Data)
	if err != nil {
		return err
	}

	now := r.now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO mindmaps (title, description, project_id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.Title, stringToNull(m.Description), int64ToNull(m.ProjectID), data, formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("failed to insert mindmap: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read mindmap id: %w", err)
	}

	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

// UpdateMindmap writes every mutable field of m
func (r *Repository) UpdateMindmap(ctx context.Context, m *domain.Mindmap) error {
	data, err := marshalDocument(m.Data)
	if err != nil {
		return err
	}

	now := r.now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE mindmaps
		SET title = ?, description = ?, project_id = ?, data = ?, updated_at = ?
		WHERE id = ?
	`, m.Title, stringToNull(m.Description), int64ToNull(m.ProjectID), data, formatTime(now), m.ID)
	if err != nil {
		return fmt.Errorf("failed to update mindmap: %w", err)
	}
	if err := expectOne(res, m.ID); err != nil {
		return err
	}

	m.UpdatedAt = now
	return nil
}

// SaveDocument replaces the document of a mindmap
func (r *Repository) SaveDocument(ctx context.Context, id int64, doc domain.Document) error {
	data, err := marshalDocument(doc)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE mindmaps SET data = ?, updated_at = ? WHERE id = ?`,
		data, formatTime(r.now()), id)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return expectOne(res, id)
}

// DeleteMindmap removes a mindmap
func (r *Repository) DeleteMindmap(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mindmaps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mindmap: %w", err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mindmap %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
