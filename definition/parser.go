package definition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/goccy/go-yaml"
)

// Parser reads and writes graph description documents. JSON input is
// accepted as the YAML subset it is.
type Parser struct {
	validateSchema bool
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithSchema enables JSON-schema validation of parsed input.
func WithSchema(enabled bool) ParserOption {
	return func(p *Parser) {
		p.validateSchema = enabled
	}
}

// NewParser creates a new parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads and parses a document from a reader.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return p.ParseBytes(data)
}

// ParseBytes parses a JSON or YAML document.
func (p *Parser) ParseBytes(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}

	if p.validateSchema {
		if err := ValidateSchemaBytes(data); err != nil {
			return nil, err
		}
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	doc.normalize()
	return &doc, nil
}

// ParseFile reads and parses a document from a file.
func (p *Parser) ParseFile(filename string) (*Document, error) {
	// #nosec G304 - callers choose which description files to load
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return p.Parse(file)
}

// ParseString parses a document from a string.
func (p *Parser) ParseString(s string) (*Document, error) {
	return p.ParseBytes([]byte(s))
}

// MarshalYAML converts a document to YAML.
func (p *Parser) MarshalYAML(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// MarshalJSON converts a document to indented JSON.
func (p *Parser) MarshalJSON(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// normalize converts decoded numbers to the engine's canonical int and
// float64 forms.
func (d *Document) normalize() {
	for gi := range d.Graphs {
		g := &d.Graphs[gi]
		for ni := range g.Nodes {
			for k, v := range g.Nodes[ni].Arguments {
				g.Nodes[ni].Arguments[k] = normalizeValue(v)
			}
		}
		for vi := range g.Variables {
			g.Variables[vi].Value = normalizeValue(g.Variables[vi].Value)
		}
	}
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case int64:
		return int(val)
	case uint64:
		// Out of int range; left for the sanitizer to reject.
		if val > math.MaxInt {
			return val
		}
		return int(val)
	case int32:
		return int(val)
	case uint32:
		return int(val)
	case float32:
		return float64(val)
	case []any:
		for i := range val {
			val[i] = normalizeValue(val[i])
		}
		return val
	case map[string]any:
		for k := range val {
			val[k] = normalizeValue(val[k])
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	}
	return v
}
