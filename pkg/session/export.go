package session

import (
	"errors"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
)

// ExportMapped builds the cleaned table restricted to mapped columns,
// renamed to their targets. Canonical targets come first in schema
// order; promoted extras follow in upload order. When two sources map
// to the same target the earliest source column wins.
func (s *Session) ExportMapped() (*model.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleaned == nil {
		return nil, errors.New("no cleaned data: run Clean first")
	}
	bySource := s.sourceByTarget()
	var targets []string
	for _, name := range s.schema.FieldNames() {
		if _, ok := bySource[name]; ok {
			targets = append(targets, name)
		}
	}
	for _, col := range s.cleaned.Columns {
		target, ok := s.mapping[col]
		if !ok || s.schema.Has(target) {
			continue
		}
		if bySource[target] == col {
			targets = append(targets, target)
		}
	}
	return s.project(targets, bySource), nil
}

// ExportComplete builds a table with every canonical field. Fields with
// no mapped source are filled with the missing marker. Promoted extras
// are appended after the canonical block.
func (s *Session) ExportComplete() (*model.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleaned == nil {
		return nil, errors.New("no cleaned data: run Clean first")
	}
	bySource := s.sourceByTarget()
	targets := append([]string(nil), s.schema.FieldNames()...)
	for _, col := range s.cleaned.Columns {
		target, ok := s.mapping[col]
		if !ok || s.schema.Has(target) {
			continue
		}
		if bySource[target] == col {
			targets = append(targets, target)
		}
	}
	return s.project(targets, bySource), nil
}

// sourceByTarget inverts the mapping, keeping the earliest source column
// in upload order for each target.
func (s *Session) sourceByTarget() map[string]string {
	out := make(map[string]string, len(s.mapping))
	for _, col := range s.cleaned.Columns {
		target, ok := s.mapping[col]
		if !ok {
			continue
		}
		if _, taken := out[target]; !taken {
			out[target] = col
		}
	}
	return out
}

func (s *Session) project(targets []string, bySource map[string]string) *model.Dataset {
	out := model.NewDataset(targets)
	for i := range s.cleaned.Rows {
		row := make(model.Row, len(targets))
		for _, target := range targets {
			if src, ok := bySource[target]; ok {
				row[target] = s.cleaned.Get(i, src)
			} else {
				row[target] = model.Missing
			}
		}
		out.Append(row)
	}
	return out
}
