package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseStagedDocument(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"id": "signup",
		"title": "Sign up",
		"stages": [
			{
				"id": "account",
				"label": "Account",
				"fields": [
					{"name": "email", "type": "email", "label": "Email", "required": true},
					{"name": "newsletter", "type": "checkbox", "label": "Newsletter"}
				]
			},
			{
				"id": "prefs",
				"label": "Preferences",
				"fields": [
					{
						"name": "frequency",
						"type": "select",
						"options": ["daily", "weekly"],
						"showIf": {"field": "newsletter", "equals": true}
					}
				]
			}
		]
	}`)

	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if s.ID != "signup" || len(s.Stages) != 2 {
		t.Fatalf("unexpected schema shape: id=%q stages=%d", s.ID, len(s.Stages))
	}

	field, ok := FieldByName(s, "frequency")
	if !ok {
		t.Fatalf("frequency field not found")
	}
	if field.ShowIf == nil || field.ShowIf.Field != "newsletter" {
		t.Fatalf("showIf not decoded: %+v", field.ShowIf)
	}
	if eq, ok := field.ShowIf.Equals.(bool); !ok || !eq {
		t.Fatalf("expected boolean true operand, got %T %v", field.ShowIf.Equals, field.ShowIf.Equals)
	}

	wantOptions := []Option{{Value: "daily"}, {Value: "weekly"}}
	if diff := cmp.Diff(wantOptions, field.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLegacySingleStage(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"id": "feedback",
		"title": "Feedback",
		"fields": [
			{"name": "comment", "type": "textarea", "label": "Comment"}
		]
	}`)

	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(s.Stages) != 1 {
		t.Fatalf("expected one synthetic stage, got %d", len(s.Stages))
	}
	if s.Stages[0].ID != "feedback" || s.Stages[0].Label != "Feedback" {
		t.Fatalf("synthetic stage not derived from document: %+v", s.Stages[0])
	}
	if IsMultiStage(s) {
		t.Fatalf("legacy document must not be multi-stage")
	}
}

func TestParseYAMLNormalisesNumericOperands(t *testing.T) {
	t.Parallel()

	data := []byte(`
id: wizard
stages:
  - id: one
    fields:
      - name: count
        type: number
      - name: detail
        type: text
        showIf:
          field: count
          equals: 3
`)

	s, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML returned error: %v", err)
	}
	field, _ := FieldByName(s, "detail")
	if _, ok := field.ShowIf.Equals.(float64); !ok {
		t.Fatalf("expected float64 operand after normalisation, got %T", field.ShowIf.Equals)
	}
}

func TestParseRejectsInvalidDocument(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"id": "broken",
		"stages": [
			{"id": "one", "fields": [
				{"name": "detail", "type": "text", "showIf": {"field": "missing", "equals": "x"}}
			]}
		]
	}`)

	_, err := Parse(data)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestCanonicalValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want any
	}{
		{int(3), float64(3)},
		{int64(7), float64(7)},
		{float32(1.5), float64(1.5)},
		{uint(2), float64(2)},
		{"text", "text"},
		{true, true},
		{nil, nil},
	}
	for _, tc := range cases {
		if got := CanonicalValue(tc.in); got != tc.want {
			t.Fatalf("CanonicalValue(%v) = %v (%T), want %v", tc.in, got, got, tc.want)
		}
	}
}
