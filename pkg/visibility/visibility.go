// Package visibility evaluates conditional field display rules against the
// current form state and identifies controller fields, i.e. fields some
// other field's showIf condition references.
package visibility

import (
	"github.com/goliatone/go-formflow/pkg/schema"
)

// Evaluator decides whether a field should be visible given the current
// value map. The default evaluator applies strict-equality showIf semantics;
// hosts can inject their own to change rule semantics without touching the
// engine.
type Evaluator interface {
	ShouldDisplay(field schema.Field, values map[string]any) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field schema.Field, values map[string]any) bool

// ShouldDisplay delegates to the underlying function.
func (fn EvaluatorFunc) ShouldDisplay(field schema.Field, values map[string]any) bool {
	return fn(field, values)
}

// Default returns the strict-equality evaluator.
func Default() Evaluator {
	return EvaluatorFunc(ShouldDisplay)
}

// ShouldDisplay reports whether the field is visible: true when it has no
// showIf condition, otherwise true iff the controller's current value
// strictly equals the condition operand. There is no coercion; the string
// "true" and the boolean true are distinct values.
func ShouldDisplay(field schema.Field, values map[string]any) bool {
	if field.ShowIf == nil {
		return true
	}
	current, ok := values[field.ShowIf.Field]
	if !ok {
		return field.ShowIf.Equals == nil
	}
	return equalStrict(current, field.ShowIf.Equals)
}

// Controllers returns the set of field names referenced by some other
// field's showIf condition. Controller free-text fields re-render
// immediately on every keystroke because downstream visibility may depend
// on them.
func Controllers(s *schema.Schema) map[string]bool {
	if s == nil {
		return nil
	}
	out := make(map[string]bool)
	for _, stage := range s.Stages {
		for _, field := range stage.Fields {
			if field.ShowIf != nil && field.ShowIf.Field != "" {
				out[field.ShowIf.Field] = true
			}
		}
	}
	return out
}

// VisibleFields returns the stage's fields excluding plain-text blocks and
// fields whose condition evaluates false, using the supplied evaluator (nil
// means the default).
func VisibleFields(s *schema.Schema, values map[string]any, stage int, eval Evaluator) []schema.Field {
	if eval == nil {
		eval = Default()
	}
	fields := schema.FieldsFor(s, stage)
	out := make([]schema.Field, 0, len(fields))
	for _, field := range fields {
		if field.IsPlainText() {
			continue
		}
		if !eval.ShouldDisplay(field, values) {
			continue
		}
		out = append(out, field)
	}
	return out
}

// equalStrict compares two state values without type coercion beyond
// canonicalising numeric width, so an int decoded from YAML matches the
// float64 the JSON decoder produces for the same document.
func equalStrict(a, b any) bool {
	a = schema.CanonicalValue(a)
	b = schema.CanonicalValue(b)

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}
