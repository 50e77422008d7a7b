// Package enginetest provides a scriptable in-memory surface and recording
// policies for exercising the engine without a real terminal or browser.
package enginetest

import (
	"context"
	"sync"

	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// Surface is an in-memory engine.Surface that records every mount,
// announcement, and focus application. Tests can script which control holds
// focus via SetFocused.
type Surface struct {
	mu sync.Mutex

	views         []*engine.StageView
	schemaErrors  []string
	announcements []string
	applied       []engine.FocusTarget

	focused    engine.FocusTarget
	hasFocus   bool
	keepFocus  bool
	applyFails bool
}

// NewSurface returns an empty fake surface.
func NewSurface() *Surface {
	return &Surface{}
}

// MountStage records the view. Unless KeepFocusAcrossMounts was set, the
// mount destroys focus, mirroring DOM subtree replacement.
func (s *Surface) MountStage(view *engine.StageView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append(s.views, view)
	if !s.keepFocus {
		s.hasFocus = false
	}
}

// ShowSchemaError records the blocking message.
func (s *Surface) ShowSchemaError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemaErrors = append(s.schemaErrors, message)
}

// Announce records the accessibility announcement.
func (s *Surface) Announce(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcements = append(s.announcements, message)
}

// FocusedField reports the scripted focus state.
func (s *Surface) FocusedField() (engine.FocusTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused, s.hasFocus
}

// ApplyFocus records the restoration attempt and adopts the target unless
// FailApplyFocus was set.
func (s *Surface) ApplyFocus(target engine.FocusTarget) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append(s.applied, target)
	if s.applyFails {
		return false
	}
	s.focused = target
	s.hasFocus = true
	return true
}

// SetFocused scripts the control currently holding focus.
func (s *Surface) SetFocused(target engine.FocusTarget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focused = target
	s.hasFocus = true
}

// ClearFocus scripts focus leaving the form's scope.
func (s *Surface) ClearFocus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasFocus = false
}

// KeepFocusAcrossMounts makes mounts preserve the scripted focus, modelling
// surfaces that re-render without destroying the focused control.
func (s *Surface) KeepFocusAcrossMounts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keepFocus = true
}

// FailApplyFocus makes every restoration attempt report no match.
func (s *Surface) FailApplyFocus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyFails = true
}

// LastView returns the most recently mounted view, or nil.
func (s *Surface) LastView() *engine.StageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.views) == 0 {
		return nil
	}
	return s.views[len(s.views)-1]
}

// Mounts returns the number of renders so far.
func (s *Surface) Mounts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// Announcements returns a copy of the recorded announcements.
func (s *Surface) Announcements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.announcements...)
}

// SchemaErrors returns a copy of the recorded blocking messages.
func (s *Surface) SchemaErrors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.schemaErrors...)
}

// AppliedFocus returns a copy of the recorded restoration attempts.
func (s *Surface) AppliedFocus() []engine.FocusTarget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]engine.FocusTarget(nil), s.applied...)
}

// ControlByName finds a control on the last mounted view.
func (s *Surface) ControlByName(name string) (engine.Control, bool) {
	view := s.LastView()
	if view == nil {
		return engine.Control{}, false
	}
	for _, control := range view.Controls {
		if control.Name == name {
			return control, true
		}
	}
	return engine.Control{}, false
}

// RecordingSubmitter captures submitted payloads and fails with Err when set.
type RecordingSubmitter struct {
	mu       sync.Mutex
	Err      error
	payloads []map[string]any
}

// Submit records the payload and returns the scripted error.
func (r *RecordingSubmitter) Submit(_ context.Context, payload map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return r.Err
}

// Payloads returns the recorded submissions.
func (r *RecordingSubmitter) Payloads() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]any(nil), r.payloads...)
}

// StubValidator returns scripted errors for specific stage indices. The
// engine.ValidateAll key scripts whole-schema validation.
type StubValidator struct {
	ByStage map[int]map[string][]string
}

// ValidateStage returns the scripted errors for the stage.
func (v *StubValidator) ValidateStage(_ context.Context, _ *schema.Schema, _ map[string]any, stage int) map[string][]string {
	if v.ByStage == nil {
		return nil
	}
	return v.ByStage[stage]
}
