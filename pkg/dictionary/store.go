// pkg/dictionary/store.go
package dictionary

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the learning document. Implementations must make
// Load(Save(doc)) return an identical structure.
type Store interface {
	// Load reads the persisted document, returning an empty document when
	// nothing has been saved yet.
	Load() (*Document, error)

	// Save writes the document atomically with respect to readers.
	Save(doc *Document) error

	// Close releases store resources.
	Close() error
}

// FileStore keeps the document as a single indented JSON file, matching
// the on-disk shape produced by earlier tooling.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("dictionary file path cannot be empty")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to read learning dictionary: %w", err)
	}
	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *FileStore) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode learning dictionary: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create dictionary directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write learning dictionary: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace learning dictionary: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
