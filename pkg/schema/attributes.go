package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AttrKind distinguishes how an attribute entry is rendered. An attribute is
// in one of three states: absent from the map, present as a bare boolean flag
// (presence toggles the attribute without a value), or carrying a literal
// value applied verbatim to the control.
type AttrKind int

const (
	// AttrPresence marks a boolean attribute whose presence is the signal
	// (e.g. readonly, disabled). A false flag is dropped at decode time, so a
	// presence entry in the map always means "render the attribute".
	AttrPresence AttrKind = iota
	// AttrValue marks an attribute carrying a literal value (e.g. min="3").
	AttrValue
)

// Attr is a single declared attribute entry.
type Attr struct {
	Kind  AttrKind
	Value string
}

// Attributes is the custom attribute bag applied verbatim to a rendered
// control. Entries are tri-state: absent, presence-only, or valued.
type Attributes map[string]Attr

// Names returns the attribute names in deterministic order.
func (a Attributes) Names() []string {
	if len(a) == 0 {
		return nil
	}
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the entry for name and whether it is present.
func (a Attributes) Get(name string) (Attr, bool) {
	attr, ok := a[name]
	return attr, ok
}

// Value returns the literal value for a valued attribute, or "" when the
// attribute is absent or presence-only.
func (a Attributes) Value(name string) string {
	if attr, ok := a[name]; ok && attr.Kind == AttrValue {
		return attr.Value
	}
	return ""
}

// UnmarshalJSON decodes an authored attribute object. Booleans become
// presence entries (false means absent), numbers and strings become valued
// entries.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("schema: attributes must be an object: %w", err)
	}
	out, err := attrsFromRaw(raw)
	if err != nil {
		return err
	}
	*a = out
	return nil
}

// UnmarshalYAML decodes an authored attribute mapping with the same tri-state
// semantics as UnmarshalJSON.
func (a *Attributes) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("schema: attributes must be a mapping: %w", err)
	}
	out, err := attrsFromRaw(raw)
	if err != nil {
		return err
	}
	*a = out
	return nil
}

// MarshalJSON re-encodes the bag in its authored shape so schemas round-trip.
func (a Attributes) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(a))
	for name, attr := range a {
		if attr.Kind == AttrPresence {
			raw[name] = true
			continue
		}
		raw[name] = attr.Value
	}
	return json.Marshal(raw)
}

// MarshalYAML mirrors MarshalJSON for YAML output.
func (a Attributes) MarshalYAML() (any, error) {
	raw := make(map[string]any, len(a))
	for name, attr := range a {
		if attr.Kind == AttrPresence {
			raw[name] = true
			continue
		}
		raw[name] = attr.Value
	}
	return raw, nil
}

func attrsFromRaw(raw map[string]any) (Attributes, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(Attributes, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case bool:
			if v {
				out[name] = Attr{Kind: AttrPresence}
			}
		case string:
			out[name] = Attr{Kind: AttrValue, Value: v}
		case float64:
			out[name] = Attr{Kind: AttrValue, Value: formatNumber(v)}
		case int:
			out[name] = Attr{Kind: AttrValue, Value: strconv.Itoa(v)}
		case int64:
			out[name] = Attr{Kind: AttrValue, Value: strconv.FormatInt(v, 10)}
		case nil:
			// Explicit null means "omit"; matches the absent state.
		default:
			return nil, fmt.Errorf("schema: attribute %q has unsupported type %T", name, value)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
