// Package schema defines the declarative form document consumed by the
// runtime engine: stages, fields, conditional visibility rules, and the
// pure query helpers every stateful component builds on.
package schema

// FieldType enumerates the supported field kinds.
type FieldType string

const (
	FieldTypePlainText FieldType = "plaintext"
	FieldTypeText      FieldType = "text"
	FieldTypeTextarea  FieldType = "textarea"
	FieldTypeSelect    FieldType = "select"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeDate      FieldType = "date"
	FieldTypeTime      FieldType = "time"
	FieldTypeNumber    FieldType = "number"
	FieldTypeEmail     FieldType = "email"
	FieldTypeTel       FieldType = "tel"
	FieldTypePassword  FieldType = "password"
	FieldTypeURL       FieldType = "url"
	FieldTypeHidden    FieldType = "hidden"
)

// StageTypeSummary marks a synthesized review stage. Summary stages carry no
// authored fields; the engine aggregates prior stages' visible values.
const StageTypeSummary = "summary"

// Schema is the top-level form document. Stage IDs are unique within the
// document and field names are unique across all stages, since runtime state
// is a single flat map keyed by field name.
type Schema struct {
	ID     string  `json:"id" yaml:"id"`
	Title  string  `json:"title,omitempty" yaml:"title,omitempty"`
	Stages []Stage `json:"stages" yaml:"stages"`
}

// Stage is one page of a multi-stage form.
type Stage struct {
	ID       string  `json:"id" yaml:"id"`
	Label    string  `json:"label,omitempty" yaml:"label,omitempty"`
	Type     string  `json:"type,omitempty" yaml:"type,omitempty"`
	Optional bool    `json:"optional,omitempty" yaml:"optional,omitempty"`
	Fields   []Field `json:"fields" yaml:"fields"`
}

// IsSummary reports whether the stage is a synthesized review stage.
func (s Stage) IsSummary() bool {
	return s.Type == StageTypeSummary
}

// Field models a single form input or plain-text block.
type Field struct {
	Name          string            `json:"name" yaml:"name"`
	Type          FieldType         `json:"type" yaml:"type"`
	Label         string            `json:"label,omitempty" yaml:"label,omitempty"`
	Title         string            `json:"title,omitempty" yaml:"title,omitempty"`
	Text          string            `json:"text,omitempty" yaml:"text,omitempty"`
	Placeholder   string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelperText    string            `json:"helperText,omitempty" yaml:"helperText,omitempty"`
	Required      bool              `json:"required,omitempty" yaml:"required,omitempty"`
	Options       []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	Attributes    Attributes        `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	ErrorMessages map[string]string `json:"errorMessages,omitempty" yaml:"errorMessages,omitempty"`
	ShowIf        *Condition        `json:"showIf,omitempty" yaml:"showIf,omitempty"`
}

// IsPlainText reports whether the field renders as a non-interactive
// informational block.
func (f Field) IsPlainText() bool {
	return f.Type == FieldTypePlainText
}

// IsChoice reports whether the field renders one control per option.
func (f Field) IsChoice() bool {
	return f.Type == FieldTypeSelect || f.Type == FieldTypeRadio
}

// IsFreeText reports whether the field is a free-text-like input that commits
// on blur and may emit per-keystroke input events.
func (f Field) IsFreeText() bool {
	switch f.Type {
	case FieldTypeText, FieldTypeTextarea, FieldTypeDate, FieldTypeTime,
		FieldTypeNumber, FieldTypeEmail, FieldTypeTel, FieldTypePassword,
		FieldTypeURL, FieldTypeHidden:
		return true
	}
	return false
}

// DisplayLabel resolves the human-facing label for the field, falling back to
// its name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	if f.Title != "" {
		return f.Title
	}
	return f.Name
}

// OptionLabel resolves the display label for a stored value. A bare option
// value is its own label. Returns the raw value when no option matches.
func (f Field) OptionLabel(value string) string {
	for _, opt := range f.Options {
		if opt.Value == value {
			return opt.DisplayLabel()
		}
	}
	return value
}

// Condition makes a field's visibility depend on another field's current
// value via strict equality (no coercion; the string "true" and the boolean
// true are distinct).
type Condition struct {
	Field  string `json:"field" yaml:"field"`
	Equals any    `json:"equals" yaml:"equals"`
}
