package engine

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// StageView is the materialized representation of one stage handed to the
// surface on every render. Handler closures carried by the controls belong
// to the render generation that produced them; once a newer render mounts,
// stale closures become no-ops, so surfaces never need to unsubscribe.
type StageView struct {
	SchemaID string
	Title    string

	Stage   int
	StageID string
	Label   string

	// IsSummary marks the synthesized review stage; Controls is empty and
	// Summary holds the aggregated groups instead.
	IsSummary bool

	Tabs     []StageTab
	Controls []Control
	Summary  []SummaryGroup

	// FieldErrors carries the currently displayed validation errors keyed by
	// field name, mirrored onto the matching controls' Errors slices.
	FieldErrors map[string][]string

	// Status is a dismissable form-level message (submission feedback).
	Status        string
	StatusIsError bool

	// Busy disables every interactive control while a submission is
	// outstanding and marks the submit affordance accordingly.
	Busy      bool
	Submitted bool

	CanPrev   bool
	CanNext   bool
	CanSubmit bool

	// FocusOrder lists focusable control IDs in tab order so surfaces can
	// wrap Tab cycling from the last control back to the first.
	FocusOrder []string

	Generation uint64
}

// StageTab is one entry of the stage indicator.
type StageTab struct {
	Index     int
	Label     string
	Current   bool
	Reached   bool
	IsSummary bool
}

// Control is a single rendered field. Plain-text blocks appear as controls
// of kind plaintext with no handlers and no entry in FocusOrder.
type Control struct {
	// ID is the stable identifier ("ff-" + field name) focus restoration
	// matches on first.
	ID   string
	Name string
	Kind schema.FieldType

	Label       string
	Title       string
	Text        string
	Placeholder string
	HelperText  string
	Required    bool

	// Controller marks fields some other field's visibility depends on;
	// their per-keystroke input events re-render immediately instead of
	// debounced.
	Controller bool

	Value      any
	Options    []OptionView
	Attributes []AttrView
	Errors     []string

	// OnInput fires per keystroke for free-text-like fields. Controller
	// fields re-render immediately; everything else coalesces into one
	// debounced render per field.
	OnInput func(ctx context.Context, value string)

	// OnChange fires on blur/commit (free text), toggle (checkbox), or
	// selection (choice). It always cancels any pending debounced render for
	// the field and re-renders immediately.
	OnChange func(ctx context.Context, value any)
}

// OptionView is one rendered choice of a select/radio group.
type OptionView struct {
	// ID identifies the individual option control ("ff-" + name + "-" + value)
	// so focus restoration can prefer the selected option of a group.
	ID       string
	Value    string
	Label    string
	Selected bool
}

// AttrView is a declared custom attribute resolved for rendering. Presence
// entries toggle the attribute without a value.
type AttrView struct {
	Name     string
	Value    string
	Presence bool
}

// SummaryGroup aggregates one data stage's visible values for review.
type SummaryGroup struct {
	Stage int
	Label string
	Items []SummaryItem
}

// SummaryItem is one formatted field value inside a summary group.
type SummaryItem struct {
	Name  string
	Label string
	Value string
}

// FocusTarget describes what should regain keyboard focus after a render,
// stamped with the focus-change counter current at capture time so stale
// targets can be detected.
type FocusTarget struct {
	ID      string
	Name    string
	Version uint64
}
