package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"mindcanvas/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the MIME type of the encoding
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Parse reads a document from JSON. A whole mindmap record, as served by
// the API, is accepted too; its "data" field is the document.
func (c *JSONCodec) Parse(r io.Reader) (*domain.Document, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	var probe struct {
		Text *string         `json:"text"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if probe.Text == nil && len(probe.Data) > 0 && string(probe.Data) != "null" {
		raw = probe.Data
	}

	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON document: %w", err)
	}

	normalize(&doc)
	return &doc, nil
}

// Export exports a document to JSON
func (c *JSONCodec) Export(doc *domain.Document, w io.Writer) error {
	normalize(doc)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
