package codec

import (
	"fmt"
	"io"
	"strings"

	"mindcanvas/internal/domain"
)

// Importer interface for importing mind-map documents from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Document, error)
	Format() string
}

// Exporter interface for exporting mind-map documents to various formats
type Exporter interface {
	Export(doc *domain.Document, w io.Writer) error
	Format() string
	ContentType() string
}

// Codec reads and writes one document format
type Codec interface {
	Importer
	Exporter
}

// Lookup returns the codec for a format name
func Lookup(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (use json or yaml)", format)
	}
}

// Formats lists the supported format names
func Formats() []string {
	return []string{"json", "yaml"}
}

// normalize replaces nil child lists so every node encodes "children: []"
func normalize(doc *domain.Document) {
	if doc.Children == nil {
		doc.Children = []domain.Document{}
	}
	for i := range doc.Children {
		normalize(&doc.Children[i])
	}
}
