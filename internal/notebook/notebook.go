// Package notebook models a generated analysis notebook: an ordered list of
// narrative and executable blocks, plus the raw form it was decoded from.
package notebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedArtifact is returned when a raw notebook cannot be decoded into
// a document with a cells list. Callers should surface it and keep running.
var ErrMalformedArtifact = errors.New("malformed notebook artifact")

// Kind tags a Block as narrative text or executable source.
type Kind string

const (
	KindNarrative  Kind = "narrative"
	KindExecutable Kind = "executable"
)

// Block is one cell of a notebook.
type Block struct {
	Kind     Kind
	CellType string
	// Lines holds the source. When the cell stored a single string,
	// Lines has exactly one element and FromString is true.
	Lines      []string
	FromString bool
}

// Text returns the block's source with its lines joined as stored.
func (b Block) Text() string {
	return strings.Join(b.Lines, "")
}

// Artifact is a parsed notebook. The zero value is an empty notebook with no
// raw form.
type Artifact struct {
	raw       string
	rawIsText bool
	doc       map[string]any
	Blocks    []Block
}

// Parse decodes a notebook from either its serialized text (string, []byte,
// json.RawMessage) or an already structured document (map[string]any or any
// JSON-encodable value). Both shapes yield the same Artifact.
func Parse(raw any) (Artifact, error) {
	var (
		art Artifact
		doc map[string]any
		err error
	)

	switch v := raw.(type) {
	case nil:
		return Artifact{}, fmt.Errorf("%w: notebook is missing", ErrMalformedArtifact)
	case string:
		art.raw, art.rawIsText = v, true
		doc, err = decodeText([]byte(v))
	case []byte:
		art.raw, art.rawIsText = string(v), true
		doc, err = decodeText(v)
	case json.RawMessage:
		doc, err = decodeRawMessage(v, &art)
	default:
		// Structured documents are normalized through JSON so that callers
		// may pass typed slices and maps, and later mutation of their value
		// cannot reach the artifact.
		b, merr := json.Marshal(v)
		if merr != nil {
			return Artifact{}, fmt.Errorf("%w: %v", ErrMalformedArtifact, merr)
		}
		doc, err = decodeText(b)
	}
	if err != nil {
		return Artifact{}, err
	}

	if err := validateDocument(doc); err != nil {
		return Artifact{}, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}

	blocks, err := blocksFromDocument(doc)
	if err != nil {
		return Artifact{}, err
	}
	art.doc = doc
	art.Blocks = blocks
	return art, nil
}

// decodeRawMessage handles the wire form of the generate response, where the
// notebook field is either a JSON string holding the serialized notebook or
// the document itself.
func decodeRawMessage(msg json.RawMessage, art *Artifact) (map[string]any, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
		}
		art.raw, art.rawIsText = s, true
		return decodeText([]byte(s))
	}
	return decodeText(trimmed)
}

func decodeText(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}
	// The raw text is exported verbatim, so it must hold exactly one document.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after notebook document", ErrMalformedArtifact)
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object, got %T", ErrMalformedArtifact, v)
	}
	return doc, nil
}

func blocksFromDocument(doc map[string]any) ([]Block, error) {
	cells, ok := doc["cells"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: cells list is missing", ErrMalformedArtifact)
	}

	blocks := make([]Block, 0, len(cells))
	for i, c := range cells {
		cell, ok := c.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: cell %d is not an object", ErrMalformedArtifact, i)
		}
		cellType, _ := cell["cell_type"].(string)
		b := Block{Kind: KindNarrative, CellType: cellType}
		if cellType == "code" {
			b.Kind = KindExecutable
		}

		switch src := cell["source"].(type) {
		case string:
			b.Lines = []string{src}
			b.FromString = true
		case []any:
			b.Lines = make([]string, 0, len(src))
			for j, line := range src {
				s, ok := line.(string)
				if !ok {
					return nil, fmt.Errorf("%w: cell %d line %d is not a string", ErrMalformedArtifact, i, j)
				}
				b.Lines = append(b.Lines, s)
			}
		default:
			return nil, fmt.Errorf("%w: cell %d has no source", ErrMalformedArtifact, i)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// IsZero reports whether the artifact was never parsed.
func (a Artifact) IsZero() bool {
	return a.doc == nil && a.Blocks == nil
}

// RawIsText reports whether the artifact was decoded from serialized text.
func (a Artifact) RawIsText() bool { return a.rawIsText }

// Raw returns the original input: the serialized text, or the structured
// document.
func (a Artifact) Raw() any {
	if a.rawIsText {
		return a.raw
	}
	return a.doc
}

// Count returns the number of blocks of kind k.
func (a Artifact) Count(k Kind) int {
	n := 0
	for _, b := range a.Blocks {
		if b.Kind == k {
			n++
		}
	}
	return n
}

// ExtractExecutableSource joins the executable blocks in order, separated by
// a blank line. Narrative blocks are never included. An artifact without
// executable blocks yields "".
func ExtractExecutableSource(a Artifact) string {
	parts := make([]string, 0, len(a.Blocks))
	for _, b := range a.Blocks {
		if b.Kind != KindExecutable {
			continue
		}
		parts = append(parts, b.Text())
	}
	return strings.Join(parts, "\n\n")
}

// SerializeForExport returns the notebook as a file body. Text input is
// returned byte-for-byte; structured input is encoded as indented JSON.
func SerializeForExport(a Artifact) (string, error) {
	if a.rawIsText {
		return a.raw, nil
	}
	if a.doc == nil {
		return "", fmt.Errorf("%w: nothing to export", ErrMalformedArtifact)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a.doc); err != nil {
		return "", fmt.Errorf("encode notebook: %w", err)
	}
	return buf.String(), nil
}

// FromBlocks builds a structured nbformat 4 document from blocks. Executable
// blocks become code cells; narrative blocks keep their CellType or default
// to markdown.
func FromBlocks(blocks []Block) (Artifact, error) {
	cells := make([]any, 0, len(blocks))
	for _, b := range blocks {
		cellType := b.CellType
		if b.Kind == KindExecutable {
			cellType = "code"
		} else if cellType == "" || cellType == "code" {
			cellType = "markdown"
		}

		var source any
		if b.FromString {
			source = b.Text()
		} else {
			lines := make([]any, len(b.Lines))
			for i, l := range b.Lines {
				lines[i] = l
			}
			source = lines
		}

		cell := map[string]any{
			"cell_type": cellType,
			"metadata":  map[string]any{},
			"source":    source,
		}
		if cellType == "code" {
			cell["execution_count"] = nil
			cell["outputs"] = []any{}
		}
		cells = append(cells, cell)
	}

	doc := map[string]any{
		"cells":          cells,
		"metadata":       map[string]any{},
		"nbformat":       json.Number("4"),
		"nbformat_minor": json.Number("5"),
	}
	return Parse(doc)
}
