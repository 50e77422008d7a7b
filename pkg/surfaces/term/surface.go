// Package term renders engine stages in an interactive terminal session:
// survey prompts for field edits, a navigation menu per stage, and glamour
// markdown for plain-text blocks.
package term

import (
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/goliatone/go-formflow/pkg/engine"
)

// Surface is the terminal engine.Surface. It retains the latest mounted view
// for the session loop to display; prompts are sequential, so the "focused"
// control is the one currently being edited.
type Surface struct {
	mu sync.Mutex

	view        *engine.StageView
	schemaError string

	focused  engine.FocusTarget
	hasFocus bool

	announcements []string
	markdown      func(string) (string, error)
}

// NewSurface returns a terminal surface with an auto-styled markdown
// renderer for plain-text blocks.
func NewSurface() *Surface {
	return &Surface{markdown: newMarkdownRenderer()}
}

// newMarkdownRenderer builds a glamour renderer that adapts to the terminal
// background; rendering falls back to the raw text on error.
func newMarkdownRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return r.Render
}

// MountStage stores the latest view. Prompt-based focus survives mounts; the
// session re-reads the view between prompts.
func (s *Surface) MountStage(view *engine.StageView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
	s.schemaError = ""
}

// ShowSchemaError replaces the form with a blocking message.
func (s *Surface) ShowSchemaError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = nil
	s.schemaError = message
}

// Announce queues an accessibility announcement; the session prints queued
// announcements ahead of the next stage header.
func (s *Surface) Announce(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcements = append(s.announcements, message)
}

// FocusedField reports the control currently being edited.
func (s *Surface) FocusedField() (engine.FocusTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused, s.hasFocus
}

// ApplyFocus adopts the target as the control to resume editing at.
func (s *Surface) ApplyFocus(target engine.FocusTarget) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		return false
	}
	for _, control := range s.view.Controls {
		if control.ID == target.ID || (target.Name != "" && control.Name == target.Name) {
			s.focused = engine.FocusTarget{ID: control.ID, Name: control.Name}
			s.hasFocus = true
			return true
		}
	}
	return false
}

// CurrentView returns the latest mounted view, or nil when a schema error is
// displayed instead.
func (s *Surface) CurrentView() *engine.StageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SchemaError returns the blocking message, if any.
func (s *Surface) SchemaError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schemaError
}

func (s *Surface) setFocus(target engine.FocusTarget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focused = target
	s.hasFocus = true
}

func (s *Surface) clearFocus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasFocus = false
}

// drainAnnouncements returns and clears the queued announcements.
func (s *Surface) drainAnnouncements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.announcements
	s.announcements = nil
	return out
}

// renderMarkdown renders a plain-text block body, falling back to the raw
// text when the renderer fails.
func (s *Surface) renderMarkdown(text string) string {
	if s.markdown == nil {
		return text
	}
	rendered, err := s.markdown(text)
	if err != nil {
		return text
	}
	return rendered
}
