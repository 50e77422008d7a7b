package engine

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/schema"
)

const controlIDPrefix = "ff-"

// ControlID returns the stable identifier of a field's control.
func ControlID(name string) string {
	return controlIDPrefix + name
}

// OptionID returns the identifier of an individual option control inside a
// choice group.
func OptionID(name, value string) string {
	return controlIDPrefix + name + "-" + value
}

// buildView materializes the current stage. Handler closures capture the
// render generation so that handlers from a superseded render become no-ops.
// Caller holds the engine lock.
func (e *Engine) buildView() *StageView {
	stage := e.schema.Stages[e.current]
	view := &StageView{
		SchemaID:      e.schema.ID,
		Title:         e.schema.Title,
		Stage:         e.current,
		StageID:       stage.ID,
		Label:         stage.Label,
		IsSummary:     stage.IsSummary(),
		FieldErrors:   e.fieldErrors,
		Status:        e.status,
		StatusIsError: e.statusErr,
		Busy:          e.busy,
		Submitted:     e.submitted,
		Generation:    e.generation,
	}

	for i, s := range e.schema.Stages {
		label := s.Label
		if label == "" {
			label = s.ID
		}
		view.Tabs = append(view.Tabs, StageTab{
			Index:     i,
			Label:     label,
			Current:   i == e.current,
			Reached:   i <= e.furthest,
			IsSummary: s.IsSummary(),
		})
	}

	if stage.IsSummary() {
		view.Summary = e.buildSummary()
	} else {
		for _, field := range stage.Fields {
			if !e.eval.ShouldDisplay(field, e.values) {
				continue
			}
			control := e.buildControl(field)
			view.Controls = append(view.Controls, control)
			if !field.IsPlainText() {
				view.FocusOrder = append(view.FocusOrder, control.ID)
			}
		}
	}

	view.CanPrev = e.current > 0 && !e.busy
	view.CanNext = e.current < len(e.schema.Stages)-1 && !e.busy
	view.CanSubmit = e.canSubmitFrom(e.current) && !e.busy
	return view
}

func (e *Engine) buildControl(field schema.Field) Control {
	control := Control{
		ID:          ControlID(field.Name),
		Name:        field.Name,
		Kind:        field.Type,
		Label:       field.DisplayLabel(),
		Title:       field.Title,
		Text:        field.Text,
		Placeholder: field.Placeholder,
		HelperText:  field.HelperText,
		Required:    field.Required,
		Controller:  e.controllers[field.Name],
		Errors:      e.fieldErrors[field.Name],
	}

	for _, name := range field.Attributes.Names() {
		attr, _ := field.Attributes.Get(name)
		control.Attributes = append(control.Attributes, AttrView{
			Name:     name,
			Value:    attr.Value,
			Presence: attr.Kind == schema.AttrPresence,
		})
	}

	if field.IsPlainText() {
		return control
	}

	gen := e.generation
	bound := field
	control.OnChange = func(ctx context.Context, value any) {
		e.handleChange(ctx, gen, bound, value)
	}

	switch {
	case field.Type == schema.FieldTypeCheckbox:
		checked, _ := e.values[field.Name].(bool)
		control.Value = checked
	case field.IsChoice():
		selected, _ := e.values[field.Name].(string)
		control.Value = selected
		for _, opt := range field.Options {
			control.Options = append(control.Options, OptionView{
				ID:       OptionID(field.Name, opt.Value),
				Value:    opt.Value,
				Label:    opt.DisplayLabel(),
				Selected: opt.Value == selected && selected != "",
			})
		}
	default:
		text, _ := e.values[field.Name].(string)
		control.Value = text
		if field.IsFreeText() {
			control.OnInput = func(ctx context.Context, value string) {
				e.handleInput(ctx, gen, bound, value)
			}
		}
	}
	return control
}
