package html

import (
	"context"
	"sync"

	"github.com/goliatone/go-formflow/pkg/engine"
)

// Snapshot is an engine.Surface for request/response hosts: it captures the
// latest mounted view so a handler can render it after feeding events into
// the engine. Focus restoration maps onto an autofocus attribute in the
// rendered page.
type Snapshot struct {
	mu sync.Mutex

	renderer *Renderer

	view        *engine.StageView
	schemaError string
	focusID     string

	announcement string
}

// NewSnapshot returns a snapshot surface rendering through the given
// renderer.
func NewSnapshot(renderer *Renderer) (*Snapshot, error) {
	if renderer == nil {
		var err error
		renderer, err = New()
		if err != nil {
			return nil, err
		}
	}
	return &Snapshot{renderer: renderer}, nil
}

// MountStage captures the view. The previous focus target is consumed by the
// next Render call.
func (s *Snapshot) MountStage(view *engine.StageView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
	s.schemaError = ""
}

// ShowSchemaError captures the blocking message.
func (s *Snapshot) ShowSchemaError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = nil
	s.schemaError = message
}

// Announce records the latest announcement; Render exposes it via an
// aria-live region equivalent (the page title change covers stage changes in
// practice, so the value is also available to hosts via Announcement).
func (s *Snapshot) Announce(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcement = message
}

// FocusedField reports no live focus; server-rendered pages lose focus on
// every response by nature.
func (s *Snapshot) FocusedField() (engine.FocusTarget, bool) {
	return engine.FocusTarget{}, false
}

// ApplyFocus records the target; the next Render marks it with autofocus.
func (s *Snapshot) ApplyFocus(target engine.FocusTarget) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focusID = target.ID
	return target.ID != ""
}

// Announcement returns the most recent stage-change announcement.
func (s *Snapshot) Announcement() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.announcement
}

// View returns the latest mounted view, or nil.
func (s *Snapshot) View() *engine.StageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Render produces the page for the captured state, consuming the pending
// focus target.
func (s *Snapshot) Render(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	view := s.view
	message := s.schemaError
	focusID := s.focusID
	s.focusID = ""
	s.mu.Unlock()

	if view == nil {
		if message == "" {
			message = "no form loaded"
		}
		return s.renderer.RenderError(ctx, message)
	}
	return s.renderer.Render(ctx, view, focusID)
}
