package pinflow

import "fmt"

// GraphVariable is a named, typed value scoped to one graph.
type GraphVariable struct {
	name    string
	typ     Type
	initial any
	value   any
}

// NewGraphVariable creates a variable holding initial. A nil initial value is
// kept as is; anything else is sanitized against t.
func NewGraphVariable(name string, t Type, initial any) (*GraphVariable, error) {
	if initial != nil {
		v, err := Sanitize(initial, t)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		initial = v
	}
	return &GraphVariable{name: name, typ: t, initial: initial, value: initial}, nil
}

// Name returns the variable name.
func (v *GraphVariable) Name() string { return v.name }

// Type returns the declared type.
func (v *GraphVariable) Type() Type { return v.typ }

// Default returns the initial value.
func (v *GraphVariable) Default() any { return v.initial }

// Value returns the current value.
func (v *GraphVariable) Value() any { return v.value }

// Set sanitizes value against the declared type and stores it.
func (v *GraphVariable) Set(value any) error {
	s, err := Sanitize(value, v.typ)
	if err != nil {
		return fmt.Errorf("variable %q: %w", v.name, err)
	}
	v.value = s
	return nil
}

// Reset restores the initial value.
func (v *GraphVariable) Reset() {
	v.value = v.initial
}
