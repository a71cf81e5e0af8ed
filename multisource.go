package reqargs

import (
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"reflect"
	"sort"

	"github.com/reqargs/reqargs/schema"
)

///////////////////////////////////////////////////////////////////////////////
// Multi-Value Capability
///////////////////////////////////////////////////////////////////////////////

// MultiValueGetter extends schema.Getter with repeated-key retrieval. Raw
// containers that can bind several values to one key (query strings, form
// bodies, headers, file sets) satisfy it; plain mappings do not.
type MultiValueGetter interface {
	schema.Getter
	// LookupAll returns every value bound to key in order, and whether the
	// key is present at all.
	LookupAll(key string) ([]any, bool)
}

///////////////////////////////////////////////////////////////////////////////
// Raw Container Adapters
///////////////////////////////////////////////////////////////////////////////

// Values adapts url.Values (query strings, urlencoded and multipart form
// values) to the multi-value capability. Scalar lookups follow
// url.Values.Get semantics: the first bound value wins.
type Values url.Values

func (v Values) Lookup(key string) (any, bool) {
	vals, ok := v[key]
	if !ok || len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}

func (v Values) LookupAll(key string) ([]any, bool) {
	vals, ok := v[key]
	if !ok {
		return nil, false
	}
	out := make([]any, len(vals))
	for i, s := range vals {
		out[i] = s
	}
	return out, true
}

func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Header adapts http.Header. Lookups canonicalize the key the way
// http.Header.Get does, so schemas can declare "x-api-key" or "X-Api-Key"
// interchangeably; CanonicalKey keeps unknown-key handling consistent with
// that.
type Header http.Header

func (h Header) CanonicalKey(key string) string {
	return textproto.CanonicalMIMEHeaderKey(key)
}

func (h Header) Lookup(key string) (any, bool) {
	vals := http.Header(h).Values(key)
	if len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}

func (h Header) LookupAll(key string) ([]any, bool) {
	vals := http.Header(h).Values(key)
	if len(vals) == 0 {
		return nil, false
	}
	out := make([]any, len(vals))
	for i, s := range vals {
		out[i] = s
	}
	return out, true
}

func (h Header) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StringMap adapts a single-valued string map (cookies, path parameters).
type StringMap map[string]string

func (m StringMap) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func (m StringMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Files adapts the multipart file section. Scalar lookups yield the first
// *multipart.FileHeader for a key; multi-valued fields receive all of them.
type Files map[string][]*multipart.FileHeader

func (f Files) Lookup(key string) (any, bool) {
	headers, ok := f[key]
	if !ok || len(headers) == 0 {
		return nil, false
	}
	return headers[0], true
}

func (f Files) LookupAll(key string) ([]any, bool) {
	headers, ok := f[key]
	if !ok {
		return nil, false
	}
	out := make([]any, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out, true
}

func (f Files) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

///////////////////////////////////////////////////////////////////////////////
// MultiSourceView
///////////////////////////////////////////////////////////////////////////////

// MultiSourceView is a read-only view over a raw container plus the active
// schema. Keys belonging to multi-valued fields resolve to every bound
// value as an ordered slice; all other keys resolve to the container's
// natural scalar. The view never mutates the underlying container.
type MultiSourceView struct {
	data     schema.Getter
	multiple map[string]struct{}
}

// NewMultiSourceView builds a view for sch over data, using det to decide
// which fields consume repeated values.
func NewMultiSourceView(data schema.Getter, sch Schema, det *MultiFieldDetector) *MultiSourceView {
	multiple := make(map[string]struct{})
	for name, field := range sch.Fields() {
		if !det.IsMultiple(field) {
			continue
		}
		key := name
		if dk := field.DataKey(); dk != "" {
			key = dk
		}
		multiple[key] = struct{}{}
	}
	return &MultiSourceView{data: data, multiple: multiple}
}

// Lookup resolves key against the underlying container. Absent keys stay
// absent even for multi-valued fields, so required/default semantics apply
// uniformly. A present key of a multi-valued field always resolves to a
// slice; a single bound value becomes a one-element slice.
func (v *MultiSourceView) Lookup(key string) (any, bool) {
	val, ok := v.data.Lookup(key)
	if !ok {
		return nil, false
	}
	if _, multi := v.multiple[key]; !multi {
		return val, true
	}
	if mv, ok := v.data.(MultiValueGetter); ok {
		if all, found := mv.LookupAll(key); found {
			return all, true
		}
	}
	rv := reflect.ValueOf(val)
	if rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		return val, true
	}
	return []any{val}, true
}

// Keys proxies to the underlying container.
func (v *MultiSourceView) Keys() []string {
	return v.data.Keys()
}

// CanonicalKey proxies to the underlying container's canonical form, or
// returns the key unchanged for literal-keyed containers.
func (v *MultiSourceView) CanonicalKey(key string) string {
	if c, ok := v.data.(schema.KeyCanonicalizer); ok {
		return c.CanonicalKey(key)
	}
	return key
}
