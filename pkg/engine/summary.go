package engine

import (
	"strconv"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// buildSummary synthesizes the review stage: per data stage, the currently
// visible non-plain-text fields and their formatted values, grouped under
// the stage's label. Caller holds the engine lock.
func (e *Engine) buildSummary() []SummaryGroup {
	groups := make([]SummaryGroup, 0, len(e.schema.Stages))
	for si, stage := range e.schema.Stages {
		if stage.IsSummary() {
			continue
		}
		fields := visibility.VisibleFields(e.schema, e.values, si, e.eval)
		if len(fields) == 0 {
			continue
		}
		group := SummaryGroup{
			Stage: si,
			Label: stage.Label,
			Items: make([]SummaryItem, 0, len(fields)),
		}
		for _, field := range fields {
			group.Items = append(group.Items, SummaryItem{
				Name:  field.Name,
				Label: field.DisplayLabel(),
				Value: e.formatValue(field, e.values[field.Name]),
			})
		}
		groups = append(groups, group)
	}
	return groups
}

// formatValue renders a stored value for review: booleans map to the
// localized yes/no tokens, choice values resolve to their option label, and
// anything empty shows the placeholder token.
func (e *Engine) formatValue(field schema.Field, value any) string {
	switch v := value.(type) {
	case nil:
		return e.emptyToken
	case bool:
		if v {
			return e.yesToken
		}
		return e.noToken
	case string:
		if v == "" {
			return e.emptyToken
		}
		if field.IsChoice() {
			return field.OptionLabel(v)
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return e.emptyToken
	}
}
