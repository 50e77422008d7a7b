// Package validation supplies the default validation policy: required
// checks plus constraints derived from a field's declared attributes
// (min/max bounds, length limits, patterns). Hosts with richer rules inject
// their own engine.Validator instead.
package validation

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// RuleValidator validates visible fields only; a field hidden by its showIf
// condition never blocks navigation or submission.
type RuleValidator struct {
	eval visibility.Evaluator
}

// Option customises the validator.
type Option func(*RuleValidator)

// WithEvaluator swaps the visibility evaluator, which must match the one the
// engine uses or hidden fields could be validated.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(v *RuleValidator) {
		if eval != nil {
			v.eval = eval
		}
	}
}

// New returns a RuleValidator with the strict-equality visibility default.
func New(opts ...Option) *RuleValidator {
	v := &RuleValidator{eval: visibility.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// ValidateStage checks one stage, or the whole schema when stage is
// negative. The returned map is keyed by field name; empty means valid.
func (v *RuleValidator) ValidateStage(_ context.Context, s *schema.Schema, values map[string]any, stage int) map[string][]string {
	if s == nil {
		return nil
	}
	errs := make(map[string][]string)
	for si := range s.Stages {
		if stage >= 0 && si != stage {
			continue
		}
		for _, field := range visibility.VisibleFields(s, values, si, v.eval) {
			for _, msg := range v.checkField(field, values[field.Name]) {
				errs[field.Name] = append(errs[field.Name], msg)
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (v *RuleValidator) checkField(field schema.Field, value any) []string {
	var out []string

	if field.Required && isEmpty(field, value) {
		out = append(out, message(field, "required", "This field is required."))
		return out
	}
	if isEmpty(field, value) {
		return nil
	}

	if text, ok := value.(string); ok {
		out = append(out, v.checkText(field, text)...)
	}
	return out
}

func (v *RuleValidator) checkText(field schema.Field, text string) []string {
	var out []string

	if raw := field.Attributes.Value("minlength"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && len([]rune(text)) < limit {
			out = append(out, message(field, "minlength", fmt.Sprintf("Must be at least %d characters.", limit)))
		}
	}
	if raw := field.Attributes.Value("maxlength"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && len([]rune(text)) > limit {
			out = append(out, message(field, "maxlength", fmt.Sprintf("Must be at most %d characters.", limit)))
		}
	}
	if raw := field.Attributes.Value("pattern"); raw != "" {
		if re, err := regexp.Compile(raw); err == nil && !re.MatchString(text) {
			out = append(out, message(field, "pattern", "Does not match the expected format."))
		}
	}

	if field.Type == schema.FieldTypeNumber {
		out = append(out, checkNumber(field, text)...)
	}
	if field.Type == schema.FieldTypeEmail {
		if _, err := mail.ParseAddress(text); err != nil {
			out = append(out, message(field, "email", "Must be a valid email address."))
		}
	}
	return out
}

func checkNumber(field schema.Field, text string) []string {
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return []string{message(field, "number", "Must be a number.")}
	}

	var out []string
	if raw := field.Attributes.Value("min"); raw != "" {
		if bound, err := strconv.ParseFloat(raw, 64); err == nil && value < bound {
			out = append(out, message(field, "min", fmt.Sprintf("Must be at least %s.", raw)))
		}
	}
	if raw := field.Attributes.Value("max"); raw != "" {
		if bound, err := strconv.ParseFloat(raw, 64); err == nil && value > bound {
			out = append(out, message(field, "max", fmt.Sprintf("Must be at most %s.", raw)))
		}
	}
	return out
}

// isEmpty treats a missing value, an empty string, and an unchecked required
// checkbox as empty.
func isEmpty(field schema.Field, value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return field.Type == schema.FieldTypeCheckbox && !v
	default:
		return false
	}
}

// message resolves the author-supplied override for a rule, falling back to
// the built-in text.
func message(field schema.Field, rule, fallback string) string {
	if msg := field.ErrorMessages[rule]; msg != "" {
		return msg
	}
	return fallback
}
