// Package engine implements the form runtime: it interprets a schema into a
// live, navigable stage view, owns all runtime state (field values,
// conditional visibility, validation display, navigation progress, focus
// continuity), and delegates validation, draft persistence, and submission
// to an injected policy.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-formflow/internal/logging"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Engine is the stateful rendering core. All event handling is serialized
// behind one mutex; the only asynchronous entry points are the per-field
// debounce timers, which re-acquire the lock before rendering.
type Engine struct {
	mu sync.Mutex

	log     *slog.Logger
	surface Surface
	policy  Policy
	eval    visibility.Evaluator

	delay           time.Duration
	yesToken        string
	noToken         string
	emptyToken      string
	requiredMessage string
	focusFirst      bool
	restoreDrafts   bool

	schema      *schema.Schema
	controllers map[string]bool
	values      map[string]any

	current  int
	furthest int

	// generation invalidates handler closures from earlier renders; a stale
	// closure is structurally discarded by becoming a no-op.
	generation uint64

	focus    focusTracker
	debounce *debouncer

	fieldErrors map[string][]string
	status      string
	statusErr   bool
	busy        bool
	submitted   bool
}

// New constructs an engine bound to a surface and a policy. A nil surface is
// engine misuse and fails immediately; nil policy members fall back to
// no-ops.
func New(surface Surface, policy Policy, opts ...Option) (*Engine, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}
	e := &Engine{
		log:             logging.NewNop(),
		surface:         surface,
		policy:          policy.withDefaults(),
		eval:            visibility.Default(),
		delay:           DefaultDebounce,
		yesToken:        "Yes",
		noToken:         "No",
		emptyToken:      "—",
		requiredMessage: "This field is required.",
		restoreDrafts:   true,
		debounce:        newDebouncer(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// LoadSchema replaces the current schema and all runtime state wholesale:
// pending debounce timers are cancelled, navigation resets to the first
// stage, and values are re-seeded from a stored draft when its schema ID
// matches. A malformed schema replaces the form with a blocking error.
func (e *Engine) LoadSchema(ctx context.Context, s *schema.Schema) error {
	if err := schema.Validate(s); err != nil {
		e.surface.ShowSchemaError(err.Error())
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.debounce.cancelAll()
	e.schema = s
	e.controllers = visibility.Controllers(s)
	e.values = make(map[string]any)
	e.current = 0
	e.furthest = 0
	e.fieldErrors = nil
	e.status = ""
	e.statusErr = false
	e.busy = false
	e.submitted = false
	e.focus.reset()

	if e.restoreDrafts {
		e.loadDraft(ctx)
	}

	e.log.Debug("schema loaded", "schema", s.ID, "stages", len(s.Stages))
	e.render(ctx, renderOpts{stageChanged: true})
	return nil
}

// DisplaySchemaError replaces the form with a blocking message. Hosts call
// it when schema acquisition itself fails (missing document, transport
// error) before anything can be parsed.
func (e *Engine) DisplaySchemaError(message string) {
	e.surface.ShowSchemaError(message)
}

// RenderStage clamps the index into range, updates navigation state, and
// re-renders. It does not gate on furthest-stage progress; gated jumps go
// through JumpTo.
func (e *Engine) RenderStage(ctx context.Context, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil {
		return ErrNoSchema
	}
	index = clamp(index, 0, len(e.schema.Stages)-1)
	changed := index != e.current
	e.current = index
	if e.furthest < e.current {
		e.furthest = e.current
	}
	if changed {
		e.fieldErrors = nil
	}
	e.render(ctx, renderOpts{stageChanged: changed})
	return nil
}

// Next validates the current stage and advances on success. Validation
// failures are displayed, not returned; forward progress is blocked until
// the user corrects them.
func (e *Engine) Next(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil {
		return ErrNoSchema
	}
	if e.busy {
		return ErrBusy
	}

	errs := e.policy.Validator.ValidateStage(ctx, e.schema, copyValues(e.values), e.current)
	if len(errs) > 0 {
		e.fieldErrors = e.withFallbackMessages(errs)
		e.render(ctx, renderOpts{keepErrors: true})
		return nil
	}

	e.fieldErrors = nil
	if e.current < len(e.schema.Stages)-1 {
		e.current++
		if e.furthest < e.current {
			e.furthest = e.current
		}
		e.render(ctx, renderOpts{stageChanged: true})
	}
	return nil
}

// Prev moves back one stage. No validation is required to go backward.
func (e *Engine) Prev(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil {
		return ErrNoSchema
	}
	if e.busy {
		return ErrBusy
	}
	if e.current > 0 {
		e.current--
		e.fieldErrors = nil
		e.render(ctx, renderOpts{stageChanged: true})
	}
	return nil
}

// JumpTo navigates via the stage indicator. Jumps are only honoured up to
// the furthest stage reached; anything beyond is ignored.
func (e *Engine) JumpTo(ctx context.Context, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil {
		return ErrNoSchema
	}
	if e.busy {
		return ErrBusy
	}
	index = clamp(index, 0, len(e.schema.Stages)-1)
	if index > e.furthest {
		e.log.Debug("jump past furthest stage ignored", "index", index, "furthest", e.furthest)
		return nil
	}
	if index == e.current {
		return nil
	}
	e.current = index
	e.fieldErrors = nil
	e.render(ctx, renderOpts{stageChanged: true})
	return nil
}

// Submit validates the whole schema and hands the visible, non-plain-text
// values to the submission policy. Validation failures navigate to the
// earliest stage containing an error; submission failures surface as a
// dismissable status message with the form left editable.
func (e *Engine) Submit(ctx context.Context) error {
	e.mu.Lock()
	if e.schema == nil {
		e.mu.Unlock()
		return ErrNoSchema
	}
	if e.busy {
		e.mu.Unlock()
		return ErrBusy
	}
	if !e.canSubmitFrom(e.current) {
		e.mu.Unlock()
		return nil
	}

	errs := e.policy.Validator.ValidateStage(ctx, e.schema, copyValues(e.values), ValidateAll)
	if len(errs) > 0 {
		e.fieldErrors = e.withFallbackMessages(errs)
		target := e.earliestErrorStage(errs)
		changed := target >= 0 && target != e.current
		if changed {
			e.current = target
			if e.furthest < e.current {
				e.furthest = e.current
			}
		}
		e.render(ctx, renderOpts{stageChanged: changed, keepErrors: true})
		e.mu.Unlock()
		return nil
	}

	payload := e.visiblePayload()
	loaded := e.schema
	e.busy = true
	e.status = ""
	e.statusErr = false
	e.render(ctx, renderOpts{keepErrors: true})
	e.mu.Unlock()

	err := e.policy.Submitter.Submit(ctx, payload)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema != loaded {
		// Schema was replaced while the submission was outstanding; the
		// reload already reset everything, including the busy flag.
		return nil
	}
	e.busy = false
	if err != nil {
		e.status = err.Error()
		e.statusErr = true
		e.log.Warn("submission failed", "err", err)
		e.render(ctx, renderOpts{keepErrors: true})
		return nil
	}

	e.submitted = true
	e.status = "Submitted."
	if clearErr := e.policy.Drafts.Clear(ctx); clearErr != nil {
		e.log.Warn("draft clear failed", "err", clearErr)
	}
	e.render(ctx, renderOpts{})
	return nil
}

// Reset discards all runtime state: values, displayed errors, navigation
// progress, pending debounce timers, and the stored draft.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil {
		return ErrNoSchema
	}
	e.debounce.cancelAll()
	e.values = make(map[string]any)
	e.fieldErrors = nil
	e.status = ""
	e.statusErr = false
	e.busy = false
	e.submitted = false
	e.current = 0
	e.furthest = 0
	e.focus.reset()
	if err := e.policy.Drafts.Clear(ctx); err != nil {
		e.log.Warn("draft clear failed", "err", err)
	}
	e.render(ctx, renderOpts{stageChanged: true})
	return nil
}

// DismissStatus clears the form-level status message.
func (e *Engine) DismissStatus(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil || e.status == "" {
		return
	}
	e.status = ""
	e.statusErr = false
	e.render(ctx, renderOpts{keepErrors: true})
}

// FocusChanged records a focus-change event. Surfaces report every change;
// a nil target means focus left the form's scope. The counter advances
// either way so in-flight restoration captures go stale.
func (e *Engine) FocusChanged(target *FocusTarget) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focus.noteChange(target)
}

// CurrentStage returns the current stage index.
func (e *Engine) CurrentStage() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// FurthestStage returns the furthest stage reached.
func (e *Engine) FurthestStage() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.furthest
}

// Values returns a copy of the current form state.
func (e *Engine) Values() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyValues(e.values)
}

// Submitted reports whether the last submission succeeded.
func (e *Engine) Submitted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitted
}

// handleInput processes a per-keystroke event from a free-text control.
// Controller fields re-render immediately because downstream visibility may
// depend on them; everything else coalesces into one debounced render.
func (e *Engine) handleInput(ctx context.Context, gen uint64, field schema.Field, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil || gen != e.generation || e.busy {
		return
	}

	e.values[field.Name] = value
	e.saveDraft(ctx)
	e.focus.capture()

	if e.controllers[field.Name] {
		e.debounce.cancel(field.Name)
		e.render(ctx, renderOpts{})
		return
	}

	loaded := e.schema
	renderCtx := context.WithoutCancel(ctx)
	e.debounce.schedule(field.Name, e.delay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.schema != loaded {
			return
		}
		e.render(renderCtx, renderOpts{})
	})
}

// handleChange processes a commit event: blur for free text, toggle for
// checkboxes, selection for choice fields. It cancels any pending debounced
// render for the field so a stale render cannot clobber the committed value,
// then re-renders immediately.
func (e *Engine) handleChange(ctx context.Context, gen uint64, field schema.Field, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil || gen != e.generation || e.busy {
		return
	}

	e.debounce.cancel(field.Name)
	e.values[field.Name] = coerceValue(field, value)
	e.saveDraft(ctx)
	e.focus.capture()
	e.render(ctx, renderOpts{})
}

type renderOpts struct {
	// stageChanged marks a navigation-level render: an accessibility
	// announcement is emitted and focus moves to the start of the new stage
	// instead of being restored.
	stageChanged bool
	// keepErrors preserves displayed validation errors; by default a render
	// clears them.
	keepErrors bool
}

// render materializes the current stage onto the surface. Caller holds the
// engine lock.
func (e *Engine) render(ctx context.Context, opts renderOpts) {
	e.generation++
	if !opts.keepErrors {
		e.fieldErrors = nil
	}
	e.pruneHidden(ctx)
	e.autoUnlockSummary()

	_, insideAtEntry := e.surface.FocusedField()

	view := e.buildView()
	e.surface.MountStage(view)

	if opts.stageChanged {
		e.surface.Announce(e.stageAnnouncement())
		if e.focusFirst && len(view.FocusOrder) > 0 {
			e.surface.ApplyFocus(FocusTarget{ID: view.FocusOrder[0]})
		}
		return
	}

	if !insideAtEntry {
		// Focus was outside the form when this render started; restoring
		// would steal it.
		e.focus.take()
		return
	}
	if _, stillInside := e.surface.FocusedField(); stillInside {
		// The surface kept focus alive across the mount on its own.
		e.focus.take()
		return
	}
	if target, fresh := e.focus.take(); fresh && e.surface.ApplyFocus(target) {
		return
	}
	// Stale capture or no match: fall back to the last known in-scope
	// target rather than the stale one.
	if fallback, ok := e.focus.fallback(); ok {
		e.surface.ApplyFocus(fallback)
	}
}

// pruneHidden removes values of fields whose showIf currently evaluates
// false, so a re-shown field starts empty rather than with a stale value.
// Runs to a fixpoint because hiding one field can hide its dependents; the
// chain is finite since the graph is validated acyclic at load.
func (e *Engine) pruneHidden(ctx context.Context) {
	changed := false
	for {
		removed := false
		for _, stage := range e.schema.Stages {
			for _, field := range stage.Fields {
				if field.Name == "" || field.ShowIf == nil {
					continue
				}
				if _, ok := e.values[field.Name]; !ok {
					continue
				}
				if !e.eval.ShouldDisplay(field, e.values) {
					delete(e.values, field.Name)
					removed = true
				}
			}
		}
		if !removed {
			break
		}
		changed = true
	}
	if changed {
		e.saveDraft(ctx)
	}
}

// autoUnlockSummary unlocks an optional summary stage that immediately
// follows the last data stage once that stage is reached, so the
// skip-summary submit affordance can appear without a summary visit.
func (e *Engine) autoUnlockSummary() {
	lastData := schema.LastDataStage(e.schema)
	summary := schema.SummaryStage(e.schema)
	if lastData < 0 || summary != lastData+1 {
		return
	}
	if !e.schema.Stages[summary].Optional {
		return
	}
	if e.furthest >= lastData && e.furthest < summary {
		e.furthest = summary
	}
}

// canSubmitFrom reports whether submission is available on the given stage:
// always from the summary stage, and from the last data stage only when
// there is no summary stage or the summary is optional.
func (e *Engine) canSubmitFrom(stage int) bool {
	if e.schema.Stages[stage].IsSummary() {
		return true
	}
	if stage != schema.LastDataStage(e.schema) {
		return false
	}
	summary := schema.SummaryStage(e.schema)
	return summary < 0 || e.schema.Stages[summary].Optional
}

// visiblePayload flattens the currently visible, non-plain-text fields into
// the {name: value} map handed to the submission policy. Hidden fields are
// never submitted.
func (e *Engine) visiblePayload() map[string]any {
	payload := make(map[string]any)
	for si, stage := range e.schema.Stages {
		if stage.IsSummary() {
			continue
		}
		for _, field := range visibility.VisibleFields(e.schema, e.values, si, e.eval) {
			if value, ok := e.values[field.Name]; ok {
				payload[field.Name] = value
			}
		}
	}
	return payload
}

// earliestErrorStage locates the first stage declaring any field named in
// the error map, or -1 when none resolve.
func (e *Engine) earliestErrorStage(errs map[string][]string) int {
	earliest := -1
	for name := range errs {
		stage := schema.StageIndexOfField(e.schema, name)
		if stage < 0 {
			continue
		}
		if earliest < 0 || stage < earliest {
			earliest = stage
		}
	}
	return earliest
}

// withFallbackMessages fills empty error slots with the field's declared
// required message, falling back to the generic one.
func (e *Engine) withFallbackMessages(errs map[string][]string) map[string][]string {
	out := make(map[string][]string, len(errs))
	for name, messages := range errs {
		kept := make([]string, 0, len(messages))
		for _, m := range messages {
			if m != "" {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			kept = []string{e.fallbackMessage(name)}
		}
		out[name] = kept
	}
	return out
}

func (e *Engine) fallbackMessage(name string) string {
	if field, ok := schema.FieldByName(e.schema, name); ok {
		if msg := field.ErrorMessages["required"]; msg != "" {
			return msg
		}
	}
	return e.requiredMessage
}

// loadDraft seeds values from a stored draft whose schema ID matches the
// loaded schema. Draft values are pruned to names the schema declares, so a
// draft written against another document can never leak state in.
func (e *Engine) loadDraft(ctx context.Context) {
	draft, ok, err := e.policy.Drafts.Load(ctx)
	if err != nil {
		e.log.Warn("draft load failed", "err", err)
		return
	}
	if !ok || draft.SchemaID != e.schema.ID {
		return
	}
	for _, field := range schema.Fields(e.schema) {
		if field.Name == "" || field.IsPlainText() {
			continue
		}
		if value, exists := draft.Values[field.Name]; exists {
			e.values[field.Name] = schema.CanonicalValue(value)
		}
	}
	e.log.Debug("draft restored", "schema", draft.SchemaID, "savedAt", draft.SavedAt)
}

// saveDraft persists the current state. Failures are logged, never fatal.
func (e *Engine) saveDraft(ctx context.Context) {
	draft := Draft{
		SchemaID: e.schema.ID,
		Values:   copyValues(e.values),
		SavedAt:  time.Now(),
	}
	if err := e.policy.Drafts.Save(ctx, draft); err != nil {
		e.log.Warn("draft save failed", "err", err)
	}
}

func (e *Engine) stageAnnouncement() string {
	stage := e.schema.Stages[e.current]
	label := stage.Label
	if label == "" {
		label = stage.ID
	}
	return fmt.Sprintf("%s, stage %d of %d", label, e.current+1, len(e.schema.Stages))
}

func coerceValue(field schema.Field, value any) any {
	if field.Type == schema.FieldTypeCheckbox {
		if b, ok := value.(bool); ok {
			return b
		}
		return value == "true"
	}
	if s, ok := value.(string); ok {
		return s
	}
	return schema.CanonicalValue(value)
}

func copyValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
