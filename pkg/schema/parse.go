package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// document is the wire shape of an authored schema. Legacy single-stage
// documents declare a flat fields array instead of stages; Parse normalises
// them into one synthetic stage so the rest of the system only ever sees the
// staged shape.
type document struct {
	ID     string  `json:"id" yaml:"id"`
	Title  string  `json:"title" yaml:"title"`
	Stages []Stage `json:"stages" yaml:"stages"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Parse decodes a JSON schema document, normalises legacy single-stage
// documents, and validates the result.
func Parse(data []byte) (*Schema, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse: %w", err)
	}
	return fromDocument(doc)
}

// ParseYAML decodes a YAML schema document with the same normalisation and
// validation as Parse.
func ParseYAML(data []byte) (*Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse yaml: %w", err)
	}
	return fromDocument(doc)
}

func fromDocument(doc document) (*Schema, error) {
	s := &Schema{
		ID:     doc.ID,
		Title:  doc.Title,
		Stages: doc.Stages,
	}
	if len(s.Stages) == 0 && len(doc.Fields) > 0 {
		s.Stages = []Stage{{
			ID:     doc.ID,
			Label:  doc.Title,
			Fields: doc.Fields,
		}}
	}
	normalizeEquals(s)
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// normalizeEquals canonicalises numeric condition operands so that strict
// equality behaves the same whether the document arrived as JSON (float64)
// or YAML (int).
func normalizeEquals(s *Schema) {
	for si := range s.Stages {
		for fi := range s.Stages[si].Fields {
			cond := s.Stages[si].Fields[fi].ShowIf
			if cond == nil {
				continue
			}
			cond.Equals = CanonicalValue(cond.Equals)
		}
	}
}

// CanonicalValue maps every numeric representation onto float64 so values
// taken from decoded documents and values written by input handlers compare
// with plain equality. Non-numeric values pass through unchanged.
func CanonicalValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}
