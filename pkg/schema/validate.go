package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidSchema is wrapped by every validation failure so callers can
// classify schema errors without matching message text.
var ErrInvalidSchema = errors.New("schema: invalid document")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSchema, fmt.Sprintf(format, args...))
}

// Validate checks the structural invariants the engine relies on: a
// non-empty stage sequence, unique stage IDs, field names unique across the
// whole document, resolvable showIf references, and an acyclic visibility
// dependency graph. Circular showIf chains would make visibility undefined,
// so they are rejected at load time instead of flickering at runtime.
func Validate(s *Schema) error {
	if s == nil {
		return invalidf("schema is nil")
	}
	if len(s.Stages) == 0 {
		return invalidf("schema %q declares no stages", s.ID)
	}

	stageIDs := make(map[string]bool, len(s.Stages))
	fieldNames := make(map[string]bool)

	for si, stage := range s.Stages {
		if stage.ID == "" {
			return invalidf("stage %d has no id", si)
		}
		if stageIDs[stage.ID] {
			return invalidf("duplicate stage id %q", stage.ID)
		}
		stageIDs[stage.ID] = true

		if stage.IsSummary() {
			if len(stage.Fields) > 0 {
				return invalidf("summary stage %q must not declare fields", stage.ID)
			}
			continue
		}

		for fi, field := range stage.Fields {
			if err := validateField(stage, fi, field, fieldNames); err != nil {
				return err
			}
		}
	}

	if err := validateConditions(s, fieldNames); err != nil {
		return err
	}
	return nil
}

func validateField(stage Stage, index int, field Field, names map[string]bool) error {
	if field.Name == "" {
		// Plain-text blocks carry no state and may stay anonymous.
		if field.IsPlainText() {
			return nil
		}
		return invalidf("stage %q field %d has no name", stage.ID, index)
	}
	if names[field.Name] {
		return invalidf("duplicate field name %q", field.Name)
	}
	names[field.Name] = true

	if field.IsChoice() && len(field.Options) == 0 {
		return invalidf("field %q (%s) declares no options", field.Name, field.Type)
	}
	return nil
}

// validateConditions resolves showIf references and walks controller chains
// to reject cycles. Self-reference is the degenerate cycle.
func validateConditions(s *Schema, names map[string]bool) error {
	controllerOf := make(map[string]string)
	for _, stage := range s.Stages {
		for _, field := range stage.Fields {
			if field.ShowIf == nil {
				continue
			}
			ref := field.ShowIf.Field
			if ref == "" {
				return invalidf("field %q has a showIf without a field reference", field.Name)
			}
			if !names[ref] {
				return invalidf("field %q showIf references unknown field %q", field.Name, ref)
			}
			controllerOf[field.Name] = ref
		}
	}

	for name := range controllerOf {
		seen := map[string]bool{name: true}
		cur := name
		for {
			next, ok := controllerOf[cur]
			if !ok {
				break
			}
			if seen[next] {
				return invalidf("field %q is part of a circular showIf chain", next)
			}
			seen[next] = true
			cur = next
		}
	}
	return nil
}
