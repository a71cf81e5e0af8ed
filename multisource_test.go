package reqargs

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqargs/reqargs/schema"
)

func viewOver(data schema.Getter, fields map[string]schema.Field) *MultiSourceView {
	return NewMultiSourceView(data, schema.New(fields), NewMultiFieldDetector())
}

func TestMultiSourceView_MultiFieldCollectsAllValues(t *testing.T) {
	data := Values(url.Values{"tags": {"a", "b"}})
	view := viewOver(data, map[string]schema.Field{
		"tags": schema.List(schema.Str(schema.FieldOpts{}), schema.FieldOpts{}),
	})

	v, ok := view.Lookup("tags")

	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, v)
}

func TestMultiSourceView_MultiFieldAbsentStaysAbsent(t *testing.T) {
	view := viewOver(Values(url.Values{}), map[string]schema.Field{
		"tags": schema.List(schema.Str(schema.FieldOpts{}), schema.FieldOpts{}),
	})

	_, ok := view.Lookup("tags")

	assert.False(t, ok, "absence is reported, not an empty slice, so defaults apply")
}

func TestMultiSourceView_ScalarFieldKeepsContainerSemantics(t *testing.T) {
	data := Values(url.Values{"page": {"1", "2"}})
	view := viewOver(data, map[string]schema.Field{
		"page": schema.Int(schema.FieldOpts{}),
		"tags": schema.List(schema.Str(schema.FieldOpts{}), schema.FieldOpts{}),
	})

	v, ok := view.Lookup("page")

	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestMultiSourceView_SingleValueContainerWrapsInSlice(t *testing.T) {
	// A plain mapping has no repeated-key support; a multi field still
	// comes back as a one-element sequence.
	view := viewOver(schema.Map{"tags": "solo"}, map[string]schema.Field{
		"tags": schema.List(schema.Str(schema.FieldOpts{}), schema.FieldOpts{}),
	})

	v, ok := view.Lookup("tags")

	require.True(t, ok)
	assert.Equal(t, []any{"solo"}, v)
}

func TestMultiSourceView_ExistingSlicePassesThrough(t *testing.T) {
	view := viewOver(schema.Map{"tags": []any{"a", "b"}}, map[string]schema.Field{
		"tags": schema.List(schema.Str(schema.FieldOpts{}), schema.FieldOpts{}),
	})

	v, ok := view.Lookup("tags")

	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, v)
}

func TestMultiSourceView_DataKeyDrivesMultiDetection(t *testing.T) {
	data := Values(url.Values{"tag-list": {"a", "b"}})
	view := viewOver(data, map[string]schema.Field{
		"tags": schema.List(schema.Str(schema.FieldOpts{}), schema.FieldOpts{DataKey: "tag-list"}),
	})

	v, ok := view.Lookup("tag-list")

	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, v)
}

func TestMultiSourceView_DelimitedFieldStaysScalar(t *testing.T) {
	data := Values(url.Values{"ids": {"1,2", "3,4"}})
	view := viewOver(data, map[string]schema.Field{
		"ids": schema.Delimited(schema.Int(schema.FieldOpts{}), "", schema.FieldOpts{}),
	})

	v, ok := view.Lookup("ids")

	require.True(t, ok)
	assert.Equal(t, "1,2", v, "delimited fields read one string even from repeated keys")
}

func TestMultiSourceView_KeysProxy(t *testing.T) {
	data := Values(url.Values{"b": {"2"}, "a": {"1"}})
	view := viewOver(data, map[string]schema.Field{})

	assert.Equal(t, []string{"a", "b"}, view.Keys())
}

func TestValuesGetter(t *testing.T) {
	v := Values(url.Values{"k": {"first", "second"}})

	got, ok := v.Lookup("k")
	require.True(t, ok)
	assert.Equal(t, "first", got)

	_, ok = v.Lookup("missing")
	assert.False(t, ok)

	all, ok := v.LookupAll("k")
	require.True(t, ok)
	assert.Equal(t, []any{"first", "second"}, all)
}

func TestHeaderGetter_CanonicalKey(t *testing.T) {
	h := Header{}
	assert.Equal(t, "X-Api-Key", h.CanonicalKey("x-api-key"))
}

func TestStringMapGetter(t *testing.T) {
	m := StringMap{"id": "42"}

	got, ok := m.Lookup("id")
	require.True(t, ok)
	assert.Equal(t, "42", got)
	assert.Equal(t, []string{"id"}, m.Keys())
}
