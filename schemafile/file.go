// Package schemafile loads schemas from YAML documents.
//
// A document declares named records, packed types and flag sets:
//
//	package: gfx
//	types:
//	  - name: Rgb565
//	    kind: packed
//	    bits: 16
//	    fields:
//	      - {name: r, type: unorm8, bits: 5}
//	      - {name: g, type: unorm8, bits: 6}
//	      - {name: b, type: unorm8, bits: 5}
//	  - name: Vertex
//	    kind: record
//	    size: 16
//	    fields:
//	      - {name: pos, type: vec3<f32>}
//	      - {name: color, type: Rgb565}
//	      - {pad: 2}
//
// Field types are expressions, see ParseType. Types may reference each other
// in any order; references are resolved depth-first.
package schemafile

import (
	"bytes"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/schema"
)

// Declaration kinds.
const (
	KindRecord = "record"
	KindPacked = "packed"
	KindFlags  = "flags"
)

// File is the document as written.
type File struct {
	Package string     `yaml:"package,omitempty"`
	Types   []TypeDecl `yaml:"types"`
}

// TypeDecl declares one named type.
type TypeDecl struct {
	Name   string      `yaml:"name"`
	Kind   string      `yaml:"kind"`
	Size   uint32      `yaml:"size,omitempty"` // record octets, 0 for unchecked
	Bits   uint32      `yaml:"bits,omitempty"` // packed container bits
	Fields []FieldDecl `yaml:"fields,omitempty"`
	Flags  []string    `yaml:"flags,omitempty"`
}

// FieldDecl is a value field ({name, type} with bits for packed types) or
// padding ({pad}) in octets for records and bits for packed types.
type FieldDecl struct {
	Name string `yaml:"name,omitempty"`
	Type string `yaml:"type,omitempty"`
	Bits uint32 `yaml:"bits,omitempty"`
	Pad  uint32 `yaml:"pad,omitempty"`
}

func (f FieldDecl) isPadding() bool { return f.Name == "" && f.Type == "" }

// Schema is a resolved document.
type Schema struct {
	Package string
	// Types lists every declared type with dependencies before dependents.
	Types  []schema.Type
	byName map[string]schema.Type
}

// Lookup returns a declared type by name.
func (s *Schema) Lookup(name string) (schema.Type, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// Parse decodes a document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, errors.ParseFailed("decode schema document", err)
	}
	return &f, nil
}

// Load parses and resolves the document at path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ParseFailed("read "+path, err)
	}
	s, err := LoadBytes(data)
	if err != nil {
		return nil, err
	}
	Logger().Debug("schema file loaded",
		zap.String("path", path),
		zap.Int("types", len(s.Types)))
	return s, nil
}

// LoadBytes parses and resolves a document held in memory.
func LoadBytes(data []byte) (*Schema, error) {
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return f.Resolve()
}

// Marshal renders the document as YAML.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "encode schema document")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "encode schema document")
	}
	return buf.Bytes(), nil
}
