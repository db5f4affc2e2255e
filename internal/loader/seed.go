// Package loader reads seed files: YAML lists of mind maps used to populate
// an empty database.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"mindcanvas/internal/codec"
	"mindcanvas/internal/domain"
)

// SeedYAML represents the seed file structure
type SeedYAML struct {
	Version  int           `yaml:"version"`
	Mindmaps []MindmapYAML `yaml:"mindmaps"`
}

// MindmapYAML is one seeded mind map. The document is either inline or
// read from File, relative to the seed file.
type MindmapYAML struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description,omitempty"`
	ProjectID   int64      `yaml:"project_id,omitempty"`
	File        string     `yaml:"file,omitempty"`
	Document    *yaml.Node `yaml:"document,omitempty"`
}

// Store is where seeded mind maps are created
type Store interface {
	List(ctx context.Context) ([]domain.Mindmap, error)
	Create(ctx context.Context, m *domain.Mindmap) error
}

// LoadSeed loads mind maps from a seed file
func LoadSeed(path string) ([]domain.Mindmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseSeed(data, filepath.Dir(path))
}

// ParseSeed parses mind maps from seed YAML bytes. File references are
// resolved against baseDir.
func ParseSeed(data []byte, baseDir string) ([]domain.Mindmap, error) {
	var y SeedYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	maps := make([]domain.Mindmap, 0, len(y.Mindmaps))
	for i, my := range y.Mindmaps {
		doc, err := documentOf(my, baseDir)
		if err != nil {
			return nil, fmt.Errorf("mindmap %d (%s): %w", i, my.Title, err)
		}

		title := strings.TrimSpace(my.Title)
		if title == "" {
			title = doc.Text
		}
		m := domain.NewMindmap(title, my.ProjectID)
		m.Description = my.Description
		m.Data = doc
		maps = append(maps, *m)
	}
	return maps, nil
}

func documentOf(my MindmapYAML, baseDir string) (domain.Document, error) {
	switch {
	case my.File != "" && my.Document != nil:
		return domain.Document{}, fmt.Errorf("both file and document given")

	case my.File != "":
		path := my.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		c, err := codec.Lookup(strings.TrimPrefix(filepath.Ext(path), "."))
		if err != nil {
			return domain.Document{}, err
		}
		f, err := os.Open(path)
		if err != nil {
			return domain.Document{}, err
		}
		defer f.Close()
		doc, err := c.Parse(f)
		if err != nil {
			return domain.Document{}, err
		}
		return *doc, nil

	case my.Document != nil:
		// Re-encode so inline documents get the codec's shorthand keys
		raw, err := yaml.Marshal(my.Document)
		if err != nil {
			return domain.Document{}, err
		}
		c, err := codec.Lookup("yaml")
		if err != nil {
			return domain.Document{}, err
		}
		doc, err := c.Parse(bytes.NewReader(raw))
		if err != nil {
			return domain.Document{}, err
		}
		return *doc, nil

	default:
		return domain.Document{}, nil
	}
}

// Apply creates the seeded mind maps when the store is empty. It returns
// the number created.
func Apply(ctx context.Context, store Store, maps []domain.Mindmap, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	existing, err := store.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		logger.Debug("database not empty, skipping seed", zap.Int("mindmaps", len(existing)))
		return 0, nil
	}

	created := 0
	for i := range maps {
		m := maps[i]
		if err := store.Create(ctx, &m); err != nil {
			return created, fmt.Errorf("seed %q: %w", m.Title, err)
		}
		created++
	}

	logger.Info("database seeded", zap.Int("mindmaps", created))
	return created, nil
}
