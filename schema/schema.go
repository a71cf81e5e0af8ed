// Package schema provides the declarative field and schema backend used by
// the reqargs parsing engine. A Schema describes the expected shape of one
// request location: each named field carries a coercion rule, a
// required/default setting and optional validation rules.
//
// The engine consumes schemas strictly through small interfaces, so any
// backend exposing the same Field/Load surface can be swapped in. This
// package is the bundled default.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Unknown controls how input keys that are not declared on a schema are
// treated during Load.
type Unknown int

const (
	// UnknownDefault defers to the schema's own configured policy.
	UnknownDefault Unknown = iota
	// UnknownRaise rejects undeclared keys with a validation error.
	UnknownRaise
	// UnknownExclude silently drops undeclared keys.
	UnknownExclude
	// UnknownInclude copies undeclared keys into the result untouched.
	UnknownInclude
)

func (u Unknown) String() string {
	switch u {
	case UnknownRaise:
		return "raise"
	case UnknownExclude:
		return "exclude"
	case UnknownInclude:
		return "include"
	default:
		return "default"
	}
}

// Canonical field-level messages.
const (
	MissingRequiredMessage = "Missing data for required field."
	UnknownFieldMessage    = "Unknown field."
)

// Getter is the minimal read capability Load needs from a raw data
// container. Implementations must be safe to read concurrently and must not
// be mutated by Load.
type Getter interface {
	// Lookup returns the value bound to key and whether the key is present.
	Lookup(key string) (any, bool)
	// Keys returns every key present in the container.
	Keys() []string
}

// KeyCanonicalizer is implemented by containers whose Lookup matches keys
// under a canonical form rather than literally (header containers match
// case-insensitively). Load runs declared field keys through it before
// comparing them against Keys() for unknown-key handling, so a field named
// "x-api-key" is not misreported as unknown by a container that lists the
// key as "X-Api-Key".
type KeyCanonicalizer interface {
	CanonicalKey(key string) string
}

// Map adapts a plain map to the Getter interface. A nil Map is a valid,
// empty container.
type Map map[string]any

func (m Map) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Opts carries schema-level configuration.
type Opts struct {
	// Unknown is the policy applied when the caller of Load defers
	// (passes UnknownDefault). The zero value here means UnknownRaise.
	Unknown Unknown
}

// Schema is an immutable set of named fields. Construct one with New or
// NewWithOpts and do not mutate the field map afterwards; a Schema is safe
// for concurrent use by any number of Load calls.
type Schema struct {
	fields map[string]Field
	opts   Opts
}

// New returns a Schema over the given fields with default options.
// The field map is copied.
func New(fields map[string]Field) *Schema {
	return NewWithOpts(fields, Opts{})
}

// NewWithOpts returns a Schema over the given fields. The field map is
// copied so later mutation of the argument does not leak into the schema.
func NewWithOpts(fields map[string]Field, opts Opts) *Schema {
	own := make(map[string]Field, len(fields))
	for name, f := range fields {
		own[name] = f
	}
	return &Schema{fields: own, opts: opts}
}

// Fields returns the schema's field map keyed by field name. The returned
// map is the schema's own storage and must be treated as read-only.
func (s *Schema) Fields() map[string]Field {
	return s.fields
}

// Load validates and coerces data against the schema.
//
// Fields absent from data and carrying no default are omitted from the
// result; absent required fields contribute a "Missing data for required
// field." message. unknown selects the undeclared-key policy; passing
// UnknownDefault applies the schema's own configured policy (UnknownRaise
// when unset).
//
// Load is all-or-nothing: on any field failure it returns a nil map and a
// *Error carrying every message keyed by the offending input key.
func (s *Schema) Load(data Getter, unknown Unknown) (map[string]any, error) {
	if data == nil {
		data = Map(nil)
	}
	if unknown == UnknownDefault {
		unknown = s.opts.Unknown
		if unknown == UnknownDefault {
			unknown = UnknownRaise
		}
	}

	canonical := func(key string) string { return key }
	if c, ok := data.(KeyCanonicalizer); ok {
		canonical = c.CanonicalKey
	}

	result := make(map[string]any, len(s.fields))
	failures := make(map[string][]string)
	declared := make(map[string]struct{}, len(s.fields))

	for name, field := range s.fields {
		key := name
		if dk := field.DataKey(); dk != "" {
			key = dk
		}
		declared[canonical(key)] = struct{}{}

		raw, present := data.Lookup(key)
		if !present {
			if field.Required() {
				failures[key] = append(failures[key], MissingRequiredMessage)
			} else if field.HasDefault() {
				result[name] = field.DefaultValue()
			}
			continue
		}

		value, err := field.Deserialize(raw)
		if err != nil {
			failures[key] = append(failures[key], err.Error())
			continue
		}
		if ruled, ok := field.(interface{ Rules() string }); ok {
			if msg := checkRules(value, ruled.Rules()); msg != "" {
				failures[key] = append(failures[key], msg)
				continue
			}
		}
		result[name] = value
	}

	switch unknown {
	case UnknownRaise:
		for _, key := range data.Keys() {
			if _, ok := declared[key]; !ok {
				failures[key] = append(failures[key], UnknownFieldMessage)
			}
		}
	case UnknownInclude:
		for _, key := range data.Keys() {
			if _, ok := declared[key]; !ok {
				value, _ := data.Lookup(key)
				result[key] = value
			}
		}
	}

	if len(failures) > 0 {
		return nil, &Error{Messages: failures}
	}
	return result, nil
}

// Error is the structured failure returned by Schema.Load: one list of
// human-readable messages per offending input key.
type Error struct {
	Messages map[string][]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Messages))
	for k := range e.Messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("schema validation failed:")
	for _, k := range keys {
		fmt.Fprintf(&b, " %s: %s;", k, strings.Join(e.Messages[k], " "))
	}
	return strings.TrimSuffix(b.String(), ";")
}
