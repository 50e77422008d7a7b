package engine

// focusTracker implements focus continuity across destructive re-renders.
// Every focus-change event anywhere bumps the version counter; the target
// captured when an input event schedules a render is only restored if the
// version is still current when the render completes. A stale version means
// focus moved elsewhere first (e.g. a debounce raced a click), in which case
// restoration falls back to the last known in-scope target if nothing in the
// form retains focus.
type focusTracker struct {
	version     uint64
	lastInScope *FocusTarget
	pending     *FocusTarget
}

// noteChange records a focus-change event. A nil target means focus left the
// form's scope; the counter still advances so in-flight captures go stale.
func (f *focusTracker) noteChange(target *FocusTarget) {
	f.version++
	if target != nil {
		stamped := *target
		stamped.Version = f.version
		f.lastInScope = &stamped
	}
}

// capture snapshots the current in-scope target as the restoration candidate
// for the render being scheduled.
func (f *focusTracker) capture() {
	if f.lastInScope != nil {
		snapshot := *f.lastInScope
		f.pending = &snapshot
	}
}

// take consumes the pending target. The second result reports whether the
// capture is still fresh; a stale capture should be skipped in favour of the
// fallback target.
func (f *focusTracker) take() (FocusTarget, bool) {
	pending := f.pending
	f.pending = nil
	if pending == nil {
		return FocusTarget{}, false
	}
	return *pending, pending.Version == f.version
}

// fallback returns the last known in-scope target.
func (f *focusTracker) fallback() (FocusTarget, bool) {
	if f.lastInScope == nil {
		return FocusTarget{}, false
	}
	return *f.lastInScope, true
}

// reset forgets everything; used when the schema is replaced.
func (f *focusTracker) reset() {
	f.lastInScope = nil
	f.pending = nil
}
