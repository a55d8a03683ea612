package pinflow

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Type is the declared type of an argument pin or graph variable: a single
// primitive, a union of primitives (bitwise OR), or TypeAny.
type Type uint16

// Primitive types.
const (
	TypeInt Type = 1 << iota
	TypeFloat
	TypeString
	TypeBool
	TypeList
	TypeMap

	// TypeAny accepts every value unchanged.
	TypeAny
)

// TypeNumber is the integer-or-float union used by arithmetic pins.
const TypeNumber = TypeInt | TypeFloat

var typeNames = []struct {
	t    Type
	name string
}{
	{TypeInt, "int"},
	{TypeFloat, "float"},
	{TypeString, "str"},
	{TypeBool, "bool"},
	{TypeList, "list"},
	{TypeMap, "dict"},
}

// typeAliases is the fixed namespace of primitive names accepted for variables.
var typeAliases = map[string]Type{
	"int":    TypeInt,
	"float":  TypeFloat,
	"str":    TypeString,
	"string": TypeString,
	"bool":   TypeBool,
	"list":   TypeList,
	"dict":   TypeMap,
	"map":    TypeMap,
	"any":    TypeAny,
}

// LookupType resolves a primitive type name, or a "|"-separated union of
// them, to a Type.
func LookupType(name string) (Type, bool) {
	var t Type
	for _, part := range strings.Split(name, "|") {
		part = strings.TrimSpace(part)
		pt, ok := typeAliases[part]
		if !ok {
			return 0, false
		}
		t |= pt
	}
	if t&TypeAny != 0 {
		return TypeAny, true
	}
	return t, t != 0
}

// String renders the type the way node metadata presents it.
func (t Type) String() string {
	if t&TypeAny != 0 {
		return "any"
	}
	var parts []string
	for _, tn := range typeNames {
		if t&tn.t != 0 {
			parts = append(parts, tn.name)
		}
	}
	if len(parts) == 0 {
		return "invalid"
	}
	return strings.Join(parts, " | ")
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, ok := LookupType(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVariableType, string(text))
	}
	*t = parsed
	return nil
}

// Accepts reports whether v already satisfies t without coercion.
func (t Type) Accepts(v any) bool {
	if t&TypeAny != 0 {
		return true
	}
	kind, _ := classify(v)
	return kind != 0 && t&kind != 0
}

// Sanitize validates value against t, coercing text to numbers when t is
// numeric and does not accept text itself.
//
// Values that already satisfy t are returned in their canonical Go form:
// every integer width becomes int, float32 becomes float64, slices become
// []any and string-keyed maps become map[string]any.
func Sanitize(value any, t Type) (any, error) {
	if t&TypeAny != 0 {
		return value, nil
	}

	kind, canonical := classify(value)
	if kind != 0 && t&kind != 0 {
		return canonical, nil
	}

	if s, ok := value.(string); ok {
		switch t {
		case TypeInt:
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, mismatch(value, t, err)
			}
			return n, nil
		case TypeFloat:
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, mismatch(value, t, err)
			}
			return f, nil
		case TypeNumber:
			if strings.Contains(s, ".") {
				f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					return nil, mismatch(value, t, err)
				}
				return f, nil
			}
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, mismatch(value, t, err)
			}
			return n, nil
		}
	}

	return nil, mismatch(value, t, nil)
}

func mismatch(value any, t Type, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: value %v (%T) is not of type %s and could not be converted: %v", ErrTypeMismatch, value, value, t, cause)
	}
	return fmt.Errorf("%w: value %v (%T) is not of type %s", ErrTypeMismatch, value, value, t)
}

// classify returns the primitive kind of v and v in canonical form. A zero
// kind means v matches no primitive.
func classify(v any) (Type, any) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int:
		return TypeInt, val
	case float64:
		return TypeFloat, val
	case string:
		return TypeString, val
	case bool:
		return TypeBool, val
	case []any:
		return TypeList, val
	case map[string]any:
		return TypeMap, val
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return TypeInt, int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if rv.Uint() > math.MaxInt {
			return 0, v
		}
		return TypeInt, int(rv.Uint())
	case reflect.Float32:
		return TypeFloat, rv.Float()
	case reflect.String:
		return TypeString, rv.String()
	case reflect.Bool:
		return TypeBool, rv.Bool()
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return TypeList, out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return 0, v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return TypeMap, out
	}
	return 0, v
}
