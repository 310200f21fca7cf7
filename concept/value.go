package concept

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValueType is the value domain of a property concept.
type ValueType string

const (
	ValueNumeric     ValueType = "numeric"
	ValueCategorical ValueType = "categorical"
	ValueBoolean     ValueType = "boolean"
	ValueString      ValueType = "string"
)

// Valid reports whether vt is one of the known value types.
func (vt ValueType) Valid() bool {
	switch vt {
	case ValueNumeric, ValueCategorical, ValueBoolean, ValueString:
		return true
	default:
		return false
	}
}

// String returns the string representation of the value type.
func (vt ValueType) String() string {
	return string(vt)
}

// ParseValueType parses a value type name case-insensitively.
func ParseValueType(s string) (ValueType, error) {
	vt := ValueType(strings.ToLower(strings.TrimSpace(s)))
	if !vt.Valid() {
		return "", fmt.Errorf("unknown value type: %q", s)
	}
	return vt, nil
}

// UnmarshalYAML normalizes value type names to lowercase so source files
// may use either "Numeric" or "numeric".
func (vt *ValueType) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseValueType(s)
	if err != nil {
		return err
	}
	*vt = parsed
	return nil
}

// Range bounds a numeric property value, inclusive on both ends.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v falls within the range.
func (r *Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// UnmarshalYAML accepts either the mapping form {min: 0, max: 150} or the
// shorthand sequence form [0, 150].
func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var pair []float64
		if err := node.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("value_range sequence must have exactly 2 elements, got %d", len(pair))
		}
		r.Min, r.Max = pair[0], pair[1]
		return nil
	}

	type plain Range
	return node.Decode((*plain)(r))
}
