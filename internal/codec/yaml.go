package codec

import (
	"fmt"
	"io"

	"mindcanvas/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of the encoding
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlNode mirrors domain.Document with hand-friendly keys: a flat
// "color" instead of a nested style block when only the fill is set.
type yamlNode struct {
	ID       string                `yaml:"id,omitempty"`
	Text     string                `yaml:"text"`
	X        *float64              `yaml:"x,omitempty"`
	Y        *float64              `yaml:"y,omitempty"`
	Color    string                `yaml:"color,omitempty"`
	Style    *domain.DocumentStyle `yaml:"style,omitempty"`
	Children []yamlNode            `yaml:"children,omitempty"`
}

// Parse imports a document from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Document, error) {
	var yn yamlNode
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yn); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	doc := fromYAML(yn)
	return &doc, nil
}

// Export exports a document to YAML
func (c *YAMLCodec) Export(doc *domain.Document, w io.Writer) error {
	yn := toYAML(*doc)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yn); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

func fromYAML(yn yamlNode) domain.Document {
	doc := domain.Document{
		ID:       yn.ID,
		Text:     yn.Text,
		X:        yn.X,
		Y:        yn.Y,
		Style:    yn.Style,
		Children: make([]domain.Document, 0, len(yn.Children)),
	}
	if yn.Color != "" {
		if doc.Style == nil {
			doc.Style = &domain.DocumentStyle{}
		}
		if doc.Style.BackgroundColor == "" {
			doc.Style.BackgroundColor = yn.Color
		}
	}
	for _, child := range yn.Children {
		doc.Children = append(doc.Children, fromYAML(child))
	}
	return doc
}

func toYAML(doc domain.Document) yamlNode {
	yn := yamlNode{
		ID:    doc.ID,
		Text:  doc.Text,
		X:     doc.X,
		Y:     doc.Y,
		Style: doc.Style,
	}
	// collapse a color-only style into the short form
	if st := doc.Style; st != nil && st.Width == nil && st.Height == nil {
		yn.Color = st.BackgroundColor
		yn.Style = nil
	}
	for _, child := range doc.Children {
		yn.Children = append(yn.Children, toYAML(child))
	}
	return yn
}
