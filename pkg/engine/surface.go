package engine

// Surface is the rendered output the engine owns: a designated region a host
// implements on top of a terminal, an HTML page, or a test double. The
// engine replaces the mounted stage wholesale on every render; surfaces must
// not retain handler closures from earlier views.
type Surface interface {
	// MountStage replaces the currently displayed stage.
	MountStage(view *StageView)

	// ShowSchemaError replaces the form with a blocking message; navigation
	// and submission controls are hidden until a valid schema loads.
	ShowSchemaError(message string)

	// Announce emits an accessibility announcement. The engine calls it on
	// every stage change, never on sub-stage re-renders.
	Announce(message string)

	// FocusedField reports the control currently holding focus inside the
	// form's scope, if any.
	FocusedField() (FocusTarget, bool)

	// ApplyFocus moves focus to the control matching the target, first by ID
	// and then by name; choice groups should prefer the selected option when
	// several controls share the name. It reports whether a match was found.
	ApplyFocus(target FocusTarget) bool
}
