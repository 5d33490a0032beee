package schema

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// StringType validates string values, including named string types such as block ids.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	if value == nil || reflect.TypeOf(value).Kind() != reflect.String {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		// JSON numbers arrive as float64
		if !math.IsInf(v, 0) && v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates numeric values, optionally bounded.
type FloatType struct {
	min, max       float64
	hasMin, hasMax bool
}

func (t *FloatType) Name() string {
	switch {
	case t.hasMin && t.hasMax:
		return fmt.Sprintf("float(%g..%g)", t.min, t.max)
	case t.hasMin:
		return fmt.Sprintf("float(%g..)", t.min)
	case t.hasMax:
		return fmt.Sprintf("float(..%g)", t.max)
	}
	return "float"
}

func (t *FloatType) Validate(value any) error {
	f, ok := toFloat(value)
	if !ok {
		return fmt.Errorf("expected number, got %T", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("expected finite number, got %g", f)
	}
	if t.hasMin && f < t.min {
		return fmt.Errorf("must be >= %g", t.min)
	}
	if t.hasMax && f > t.max {
		return fmt.Errorf("must be <= %g", t.max)
	}
	return nil
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	if value == nil {
		return fmt.Errorf("expected slice, got <nil>")
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// EnumType accepts one of a closed set of strings.
type EnumType struct {
	values []string
}

func (t *EnumType) Name() string {
	return "enum(" + strings.Join(t.values, "|") + ")"
}

func (t *EnumType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	for _, v := range t.values {
		if v == s {
			return nil
		}
	}
	return fmt.Errorf("%q is not one of %s", s, strings.Join(t.values, ", "))
}

// PatternType accepts strings matching a regular expression.
type PatternType struct {
	name string
	re   *regexp.Regexp
}

func (t *PatternType) Name() string { return t.name }

func (t *PatternType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if !t.re.MatchString(s) {
		return fmt.Errorf("%q does not match %s", s, t.name)
	}
	return nil
}

// OptionalType lets a field be absent or null.
type OptionalType struct {
	elem Type
}

func (t *OptionalType) Name() string { return t.elem.Name() + "?" }

func (t *OptionalType) Validate(value any) error {
	if value == nil {
		return nil
	}
	return t.elem.Validate(value)
}

// Elem returns the wrapped type.
func (t *OptionalType) Elem() Type { return t.elem }

// ObjectType validates a nested map against its own schema.
type ObjectType struct {
	fields Schema
}

func (t *ObjectType) Name() string { return "object" }

func (t *ObjectType) Validate(value any) error {
	m, ok := asMap(value)
	if !ok {
		return fmt.Errorf("expected object, got %T", value)
	}
	return Validate(t.fields, m)
}

// Fields returns the nested schema.
func (t *ObjectType) Fields() Schema { return t.fields }

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a numeric type validator.
func Float() Type { return &FloatType{} }

// Min creates a numeric validator with an inclusive lower bound.
func Min(min float64) Type { return &FloatType{min: min, hasMin: true} }

// Range creates a numeric validator with inclusive bounds.
func Range(min, max float64) Type {
	return &FloatType{min: min, max: max, hasMin: true, hasMax: true}
}

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Enum creates a validator for a closed set of strings.
func Enum(values ...string) Type {
	return &EnumType{values: values}
}

// Pattern creates a string validator backed by a regular expression.
// The name is what Name reports and what appears in error messages.
func Pattern(name, expr string) Type {
	return &PatternType{name: name, re: regexp.MustCompile(expr)}
}

// Optional wraps a type so the field may be absent or null.
func Optional(t Type) Type {
	return &OptionalType{elem: t}
}

// Object creates a validator for a nested map.
func Object(fields Schema) Type {
	return &ObjectType{fields: fields}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func asMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
