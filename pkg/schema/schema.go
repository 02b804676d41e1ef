// pkg/schema/schema.go
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
)

// Field is one canonical output column. The ordered field list defines the
// export column order and is immutable after load.
type Field struct {
	Name        string          `json:"name"`
	Type        model.FieldType `json:"type"`
	Description string          `json:"description,omitempty"`
	Synonyms    []string        `json:"synonyms,omitempty"`
}

// Schema holds the fixed canonical field set plus lookup indexes keyed by
// normalized name.
type Schema struct {
	fields   []Field
	byName   map[string]int
	synonyms map[string]string // normalized synonym -> canonical name
}

// New builds a schema from an ordered field list.
func New(fields []Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, errors.New("canonical schema cannot be empty")
	}
	s := &Schema{
		fields:   make([]Field, len(fields)),
		byName:   make(map[string]int, len(fields)),
		synonyms: make(map[string]string),
	}
	copy(s.fields, fields)
	for i, f := range s.fields {
		if f.Name == "" {
			return nil, fmt.Errorf("canonical field %d has no name", i)
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, fmt.Errorf("duplicate canonical field %q", f.Name)
		}
		s.byName[f.Name] = i
		for _, syn := range f.Synonyms {
			s.synonyms[model.NormalizeHeader(syn)] = f.Name
		}
	}
	return s, nil
}

// Load reads a schema definition file: a JSON array of field objects in
// output order.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	var fields []Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	for i := range fields {
		if fields[i].Type == "" {
			fields[i].Type = model.TypeText
		}
	}
	return New(fields)
}

// Fields returns the ordered canonical field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// FieldNames returns the canonical names in output order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// Has reports whether name is a canonical field.
func (s *Schema) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Field returns the canonical field by exact name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// TypeOf returns the expected type for a canonical field, defaulting to
// text for promoted extra columns the schema does not know about.
func (s *Schema) TypeOf(name string) model.FieldType {
	if f, ok := s.Field(name); ok {
		return f.Type
	}
	return model.TypeText
}

// SynonymTarget resolves a normalized header against the synonym table.
func (s *Schema) SynonymTarget(normalized string) (string, bool) {
	name, ok := s.synonyms[normalized]
	return name, ok
}
