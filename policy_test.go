package reqargs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reqargs/reqargs/schema"
)

func TestDefaultUnknownByLocation(t *testing.T) {
	table := defaultUnknownByLocation()

	for _, loc := range []string{LocationJSON, LocationForm, LocationBody, LocationJSONOrForm, LocationPath} {
		assert.Equal(t, schema.UnknownRaise, table[loc], "body-like locations and path reject undeclared keys")
	}
	for _, loc := range []string{LocationQuery, LocationQuerystring, LocationHeaders, LocationCookies, LocationFiles} {
		assert.Equal(t, schema.UnknownExclude, table[loc])
	}
}

func TestResolveUnknown_Precedence(t *testing.T) {
	override := schema.UnknownInclude
	instance := schema.UnknownExclude
	table := map[string]schema.Unknown{"json": schema.UnknownRaise}

	// Call override wins over everything.
	assert.Equal(t, schema.UnknownInclude,
		resolveUnknown(&override, &instance, table, "json"))

	// An explicit defer override still wins.
	deferred := schema.UnknownDefault
	assert.Equal(t, schema.UnknownDefault,
		resolveUnknown(&deferred, &instance, table, "json"))

	// Instance default beats the table, for every location uniformly.
	assert.Equal(t, schema.UnknownExclude,
		resolveUnknown(nil, &instance, table, "json"))

	// The table applies when nothing is set above it.
	assert.Equal(t, schema.UnknownRaise,
		resolveUnknown(nil, nil, table, "json"))

	// Unlisted locations defer to the schema.
	assert.Equal(t, schema.UnknownDefault,
		resolveUnknown(nil, nil, table, "custom"))
}
