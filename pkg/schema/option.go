package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Option is a (value, display label) pair for choice fields. Authors may
// declare a bare string, in which case the value doubles as its label.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// DisplayLabel returns the label, falling back to the value.
func (o Option) DisplayLabel() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

// UnmarshalJSON accepts either a bare string or a {value, label} object.
func (o *Option) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		o.Value = raw
		o.Label = ""
		return nil
	}

	type alias Option
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("schema: option must be a string or an object: %w", err)
	}
	*o = Option(obj)
	return nil
}

// UnmarshalYAML accepts either a bare scalar or a {value, label} mapping.
func (o *Option) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		o.Value = node.Value
		o.Label = ""
		return nil
	}

	type alias Option
	var obj alias
	if err := node.Decode(&obj); err != nil {
		return fmt.Errorf("schema: option must be a scalar or a mapping: %w", err)
	}
	*o = Option(obj)
	return nil
}
