package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goliatone/go-formflow/pkg/engine"
)

// FileStore persists the draft as a JSON document on disk. Writes go through
// a temp file plus rename so a crash mid-write never corrupts the draft.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to the given path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("draft: file path is required")
	}
	return &FileStore{path: path}, nil
}

// Save writes the draft to disk.
func (s *FileStore) Save(_ context.Context, d engine.Draft) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("draft: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("draft: create directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("draft: write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("draft: replace: %w", err)
	}
	return nil
}

// Load reads the draft from disk; a missing file means no draft.
func (s *FileStore) Load(_ context.Context) (engine.Draft, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return engine.Draft{}, false, nil
	}
	if err != nil {
		return engine.Draft{}, false, fmt.Errorf("draft: read: %w", err)
	}
	var d engine.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return engine.Draft{}, false, fmt.Errorf("draft: decode: %w", err)
	}
	return d, true, nil
}

// Clear removes the draft file if present.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("draft: remove: %w", err)
	}
	return nil
}
