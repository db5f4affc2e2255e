package repository

import (
	"context"

	"mindcanvas/internal/domain"
)

// Repository defines the interface for mind-map data access
type Repository interface {
	// Read operations
	GetMindmap(ctx context.Context, id int64) (*domain.Mindmap, error)
	ListMindmaps(ctx context.Context) ([]domain.Mindmap, error)
	ListMindmapsByProject(ctx context.Context, projectID int64) ([]domain.Mindmap, error)

	// Write operations
	CreateMindmap(ctx context.Context, m *domain.Mindmap) error
	UpdateMindmap(ctx context.Context, m *domain.Mindmap) error
	DeleteMindmap(ctx context.Context, id int64) error

	// SaveDocument replaces only the document of a mindmap. It is the
	// autosave path.
	SaveDocument(ctx context.Context, id int64, doc domain.Document) error

	// Close releases resources
	Close() error
}
