package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

///////////////////////////////////////////////////////////////////////////////
// Field Interface
///////////////////////////////////////////////////////////////////////////////

// Field describes a single named argument: how to coerce its raw value and
// its required/default behavior. Field implementations must be stateless
// with respect to individual Deserialize calls.
type Field interface {
	// Deserialize coerces a raw value into the field's Go type, returning
	// an error whose message is suitable for direct client display.
	Deserialize(value any) (any, error)
	// DataKey returns the input key to read instead of the field name,
	// or "" to use the field name.
	DataKey() string
	// Required reports whether the field must be present in the input.
	Required() bool
	// HasDefault reports whether a default fires when the field is absent.
	HasDefault() bool
	// DefaultValue returns the default, meaningful only when HasDefault.
	DefaultValue() any
}

// MultipleMarker is implemented by fields that state outright whether they
// consume repeated values for a single key, overriding type-based
// detection. Delimited implements it to opt out even though it produces a
// sequence.
type MultipleMarker interface {
	Multiple() bool
}

// FieldOpts carries the per-field settings shared by every field
// constructor.
type FieldOpts struct {
	Required bool
	Default  any    // fires only when the key is absent from the input
	DataKey  string // input key override
	Rules    string // go-playground/validator tag string, e.g. "gte=1,lte=100"
}

type baseField struct {
	opts FieldOpts
}

func (b baseField) DataKey() string   { return b.opts.DataKey }
func (b baseField) Required() bool    { return b.opts.Required }
func (b baseField) HasDefault() bool  { return b.opts.Default != nil }
func (b baseField) DefaultValue() any { return b.opts.Default }
func (b baseField) Rules() string     { return b.opts.Rules }

///////////////////////////////////////////////////////////////////////////////
// Scalar Fields
///////////////////////////////////////////////////////////////////////////////

// StringField coerces string input.
type StringField struct{ baseField }

// Str returns a string field.
func Str(opts FieldOpts) *StringField {
	return &StringField{baseField{opts}}
}

func (f *StringField) Deserialize(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return nil, fmt.Errorf("Not a valid string.")
	}
}

// IntField coerces integer input from native ints, integral floats and
// decimal strings.
type IntField struct{ baseField }

// Int returns an integer field.
func Int(opts FieldOpts) *IntField {
	return &IntField{baseField{opts}}
}

func (f *IntField) Deserialize(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return nil, fmt.Errorf("Not a valid integer.")
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("Not a valid integer.")
		}
		return n, nil
	case fmt.Stringer:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return nil, fmt.Errorf("Not a valid integer.")
		}
		return n, nil
	default:
		return nil, fmt.Errorf("Not a valid integer.")
	}
}

// FloatField coerces floating point input.
type FloatField struct{ baseField }

// Float returns a float field.
func Float(opts FieldOpts) *FloatField {
	return &FloatField{baseField{opts}}
}

func (f *FloatField) Deserialize(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("Not a valid number.")
		}
		return n, nil
	default:
		return nil, fmt.Errorf("Not a valid number.")
	}
}

// BoolField coerces boolean input, accepting the strconv.ParseBool string
// forms.
type BoolField struct{ baseField }

// Bool returns a boolean field.
func Bool(opts FieldOpts) *BoolField {
	return &BoolField{baseField{opts}}
}

func (f *BoolField) Deserialize(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("Not a valid boolean.")
		}
		return b, nil
	default:
		return nil, fmt.Errorf("Not a valid boolean.")
	}
}

// UUIDField coerces RFC 4122 UUID strings into uuid.UUID values.
type UUIDField struct{ baseField }

// UUID returns a UUID field.
func UUID(opts FieldOpts) *UUIDField {
	return &UUIDField{baseField{opts}}
}

func (f *UUIDField) Deserialize(value any) (any, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("Not a valid UUID.")
		}
		return id, nil
	default:
		return nil, fmt.Errorf("Not a valid UUID.")
	}
}

// TimeField coerces timestamp strings into time.Time values using a fixed
// layout, RFC 3339 when none is given.
type TimeField struct {
	baseField
	layout string
}

// Time returns a timestamp field for the given layout. An empty layout
// means time.RFC3339.
func Time(layout string, opts FieldOpts) *TimeField {
	if layout == "" {
		layout = time.RFC3339
	}
	return &TimeField{baseField{opts}, layout}
}

func (f *TimeField) Deserialize(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(f.layout, v)
		if err != nil {
			return nil, fmt.Errorf("Not a valid datetime.")
		}
		return t, nil
	default:
		return nil, fmt.Errorf("Not a valid datetime.")
	}
}

// RawField passes values through untouched. Useful for opaque payloads such
// as uploaded file headers.
type RawField struct{ baseField }

// Raw returns a pass-through field.
func Raw(opts FieldOpts) *RawField {
	return &RawField{baseField{opts}}
}

func (f *RawField) Deserialize(value any) (any, error) {
	return value, nil
}

///////////////////////////////////////////////////////////////////////////////
// Sequence Fields
///////////////////////////////////////////////////////////////////////////////

// ListField coerces a sequence input element-wise through an inner field.
// The parsing engine treats list fields as multi-valued, so repeated keys in
// a location collapse into one ordered slice before reaching Deserialize.
type ListField struct {
	baseField
	inner Field
}

// List returns a list field whose elements are coerced by inner.
func List(inner Field, opts FieldOpts) *ListField {
	return &ListField{baseField{opts}, inner}
}

func (f *ListField) Deserialize(value any) (any, error) {
	elems, ok := asSlice(value)
	if !ok {
		return nil, fmt.Errorf("Not a valid list.")
	}
	out := make([]any, 0, len(elems))
	for _, e := range elems {
		v, err := f.inner.Deserialize(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// TupleField coerces a fixed-length sequence, one inner field per position.
type TupleField struct {
	baseField
	inner []Field
}

// Tuple returns a fixed-length sequence field.
func Tuple(inner []Field, opts FieldOpts) *TupleField {
	return &TupleField{baseField{opts}, inner}
}

func (f *TupleField) Deserialize(value any) (any, error) {
	elems, ok := asSlice(value)
	if !ok {
		return nil, fmt.Errorf("Not a valid tuple.")
	}
	if len(elems) != len(f.inner) {
		return nil, fmt.Errorf("Length must be %d.", len(f.inner))
	}
	out := make([]any, len(elems))
	for i, e := range elems {
		v, err := f.inner[i].Deserialize(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// DelimitedField takes its input as a single delimited string
// (e.g. "a,b,c") and coerces each piece through an inner field. It is
// explicitly not multi-valued: repeated keys are not collected for it.
type DelimitedField struct {
	baseField
	inner     Field
	delimiter string
}

// Delimited returns a delimited-string list field. An empty delimiter
// means ",".
func Delimited(inner Field, delimiter string, opts FieldOpts) *DelimitedField {
	if delimiter == "" {
		delimiter = ","
	}
	return &DelimitedField{baseField{opts}, inner, delimiter}
}

// Multiple reports false so the engine reads a single scalar string for
// this field even from containers with repeated keys.
func (f *DelimitedField) Multiple() bool { return false }

func (f *DelimitedField) Deserialize(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("Not a valid delimited list.")
	}
	if s == "" {
		return []any{}, nil
	}
	parts := strings.Split(s, f.delimiter)
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		v, err := f.inner.Deserialize(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

///////////////////////////////////////////////////////////////////////////////
// Nested Field
///////////////////////////////////////////////////////////////////////////////

// NestedField coerces a nested mapping through an inner schema. The nested
// schema's own unknown policy applies.
type NestedField struct {
	baseField
	schema *Schema
}

// Nested returns a field backed by an inner schema.
func Nested(s *Schema, opts FieldOpts) *NestedField {
	return &NestedField{baseField{opts}, s}
}

func (f *NestedField) Deserialize(value any) (any, error) {
	var data Getter
	switch v := value.(type) {
	case Getter:
		data = v
	case map[string]any:
		data = Map(v)
	default:
		return nil, fmt.Errorf("Not a valid mapping.")
	}
	result, err := f.schema.Load(data, UnknownDefault)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// asSlice flattens any slice or array value into []any.
func asSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
