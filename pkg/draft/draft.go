// Package draft provides DraftStore implementations for the engine's draft
// boundary: in-memory, file-backed, and Redis-backed persistence of
// in-progress form state.
package draft

import (
	"context"
	"sync"

	"github.com/goliatone/go-formflow/pkg/engine"
)

// MemoryStore keeps the draft in process memory. Useful for tests and
// single-session hosts.
type MemoryStore struct {
	mu    sync.Mutex
	draft engine.Draft
	set   bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save stores the draft, replacing any previous one.
func (s *MemoryStore) Save(_ context.Context, d engine.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
	s.set = true
	return nil
}

// Load returns the stored draft, if any.
func (s *MemoryStore) Load(_ context.Context) (engine.Draft, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft, s.set, nil
}

// Clear discards the stored draft.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = engine.Draft{}
	s.set = false
	return nil
}
