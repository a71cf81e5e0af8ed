package schema

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CoercesAndReturnsDeclaredFields(t *testing.T) {
	s := New(map[string]Field{
		"name": Str(FieldOpts{Required: true}),
		"age":  Int(FieldOpts{}),
	})

	result, err := s.Load(Map{"name": "ada", "age": "37"}, UnknownExclude)

	require.NoError(t, err)
	assert.Equal(t, "ada", result["name"])
	assert.Equal(t, 37, result["age"])
}

func TestLoad_MissingRequiredField(t *testing.T) {
	s := New(map[string]Field{
		"name": Str(FieldOpts{Required: true}),
	})

	result, err := s.Load(Map{}, UnknownExclude)

	assert.Nil(t, result)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, []string{MissingRequiredMessage}, serr.Messages["name"])
}

func TestLoad_DefaultFiresOnlyWhenAbsent(t *testing.T) {
	s := New(map[string]Field{
		"page": Int(FieldOpts{Default: 1}),
	})

	result, err := s.Load(Map{}, UnknownExclude)
	require.NoError(t, err)
	assert.Equal(t, 1, result["page"])

	result, err = s.Load(Map{"page": "5"}, UnknownExclude)
	require.NoError(t, err)
	assert.Equal(t, 5, result["page"])
}

func TestLoad_AbsentOptionalFieldIsOmitted(t *testing.T) {
	s := New(map[string]Field{
		"q": Str(FieldOpts{}),
	})

	result, err := s.Load(Map{}, UnknownExclude)

	require.NoError(t, err)
	_, present := result["q"]
	assert.False(t, present, "absent field without default must not appear in the result")
}

func TestLoad_UnknownRaise(t *testing.T) {
	s := New(map[string]Field{
		"name": Str(FieldOpts{}),
	})

	_, err := s.Load(Map{"name": "x", "extra": "y"}, UnknownRaise)

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, []string{UnknownFieldMessage}, serr.Messages["extra"])
}

func TestLoad_UnknownExclude(t *testing.T) {
	s := New(map[string]Field{
		"name": Str(FieldOpts{}),
	})

	result, err := s.Load(Map{"name": "x", "extra": "y"}, UnknownExclude)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "x"}, result)
}

func TestLoad_UnknownInclude(t *testing.T) {
	s := New(map[string]Field{
		"name": Str(FieldOpts{}),
	})

	result, err := s.Load(Map{"name": "x", "extra": "y"}, UnknownInclude)

	require.NoError(t, err)
	assert.Equal(t, "y", result["extra"])
}

func TestLoad_DeferUsesSchemaPolicy(t *testing.T) {
	strict := New(map[string]Field{"a": Str(FieldOpts{})})
	_, err := strict.Load(Map{"a": "1", "b": "2"}, UnknownDefault)
	assert.Error(t, err, "the schema default policy is raise")

	lenient := NewWithOpts(map[string]Field{"a": Str(FieldOpts{})}, Opts{Unknown: UnknownExclude})
	result, err := lenient.Load(Map{"a": "1", "b": "2"}, UnknownDefault)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "1"}, result)
}

// upperGetter matches keys case-insensitively by upper-casing them, the way
// a header container canonicalizes.
type upperGetter map[string]any

func (g upperGetter) Lookup(key string) (any, bool) {
	v, ok := g[strings.ToUpper(key)]
	return v, ok
}

func (g upperGetter) Keys() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (g upperGetter) CanonicalKey(key string) string { return strings.ToUpper(key) }

func TestLoad_CanonicalKeysNotUnknown(t *testing.T) {
	s := New(map[string]Field{
		"token": Str(FieldOpts{Required: true}),
	})

	result, err := s.Load(upperGetter{"TOKEN": "x"}, UnknownRaise)

	require.NoError(t, err)
	assert.Equal(t, "x", result["token"])

	_, err = s.Load(upperGetter{"TOKEN": "x", "EXTRA": "y"}, UnknownRaise)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, []string{UnknownFieldMessage}, serr.Messages["EXTRA"])
}

func TestLoad_DataKey(t *testing.T) {
	s := New(map[string]Field{
		"contentType": Str(FieldOpts{DataKey: "Content-Type"}),
	})

	result, err := s.Load(Map{"Content-Type": "application/json"}, UnknownExclude)

	require.NoError(t, err)
	assert.Equal(t, "application/json", result["contentType"])
}

func TestLoad_CollectsAllFailures(t *testing.T) {
	s := New(map[string]Field{
		"age":  Int(FieldOpts{}),
		"name": Str(FieldOpts{Required: true}),
	})

	_, err := s.Load(Map{"age": "not-a-number"}, UnknownExclude)

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Len(t, serr.Messages, 2)
	assert.Equal(t, []string{"Not a valid integer."}, serr.Messages["age"])
	assert.Equal(t, []string{MissingRequiredMessage}, serr.Messages["name"])
}

func TestLoad_RulesApplyAfterCoercion(t *testing.T) {
	s := New(map[string]Field{
		"page": Int(FieldOpts{Rules: "gte=1"}),
	})

	_, err := s.Load(Map{"page": "0"}, UnknownExclude)

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, []string{"Value does not satisfy rule 'gte=1'."}, serr.Messages["page"])

	result, err := s.Load(Map{"page": "3"}, UnknownExclude)
	require.NoError(t, err)
	assert.Equal(t, 3, result["page"])
}

func TestLoad_NilDataIsEmpty(t *testing.T) {
	s := New(map[string]Field{
		"page": Int(FieldOpts{Default: 1}),
	})

	result, err := s.Load(nil, UnknownExclude)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"page": 1}, result)
}

func TestErrorMessageIsStable(t *testing.T) {
	serr := &Error{Messages: map[string][]string{
		"b": {"second"},
		"a": {"first"},
	}}
	assert.Equal(t, "schema validation failed: a: first; b: second", serr.Error())
}
