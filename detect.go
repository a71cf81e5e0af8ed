package reqargs

import (
	"reflect"

	"github.com/reqargs/reqargs/schema"
)

// defaultMultiFieldTypes are the field types treated as multi-valued when a
// field does not mark itself explicitly.
var defaultMultiFieldTypes = []reflect.Type{
	reflect.TypeOf((*schema.ListField)(nil)),
	reflect.TypeOf((*schema.TupleField)(nil)),
}

// MultiFieldDetector decides whether a schema field consumes repeated
// values from a single location.
//
// Resolution order: a field implementing schema.MultipleMarker decides for
// itself; otherwise the field's runtime type is checked against the
// detector's known multi-field types; otherwise the field is scalar.
// Third-party field types opt in by being listed in Config.KnownMultiFields
// without having to implement the marker.
type MultiFieldDetector struct {
	known []reflect.Type
}

// NewMultiFieldDetector returns a detector for the given field types.
// With no arguments the default set (list and tuple fields) applies.
func NewMultiFieldDetector(types ...reflect.Type) *MultiFieldDetector {
	if len(types) == 0 {
		types = defaultMultiFieldTypes
	}
	return &MultiFieldDetector{known: append([]reflect.Type(nil), types...)}
}

// IsMultiple reports whether field accepts multiple values for one key.
func (d *MultiFieldDetector) IsMultiple(field schema.Field) bool {
	if marker, ok := field.(schema.MultipleMarker); ok {
		return marker.Multiple()
	}
	t := reflect.TypeOf(field)
	for _, known := range d.known {
		if t == known || t.AssignableTo(known) {
			return true
		}
	}
	return false
}

// hasMultiple reports whether any field of sch is multi-valued; when none
// is, wrapping the raw container in a MultiSourceView is pointless.
func (d *MultiFieldDetector) hasMultiple(sch Schema) bool {
	for _, field := range sch.Fields() {
		if d.IsMultiple(field) {
			return true
		}
	}
	return false
}
