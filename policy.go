package reqargs

import "github.com/reqargs/reqargs/schema"

// defaultUnknownByLocation is the shipped per-location unknown-key policy
// table. Body-like locations and path parameters reject undeclared keys;
// locations that routinely carry unrelated data (query strings, headers,
// cookies) drop them.
func defaultUnknownByLocation() map[string]schema.Unknown {
	return map[string]schema.Unknown{
		LocationJSON:        schema.UnknownRaise,
		LocationForm:        schema.UnknownRaise,
		LocationBody:        schema.UnknownRaise,
		LocationJSONOrForm:  schema.UnknownRaise,
		LocationPath:        schema.UnknownRaise,
		LocationQuery:       schema.UnknownExclude,
		LocationQuerystring: schema.UnknownExclude,
		LocationHeaders:     schema.UnknownExclude,
		LocationCookies:     schema.UnknownExclude,
		LocationFiles:       schema.UnknownExclude,
	}
}

// resolveUnknown picks the unknown-key policy for one parse call.
//
// Precedence, highest first: the per-call override (which may explicitly
// select schema.UnknownDefault to defer to the schema), the parser-wide
// instance default (deliberately uniform across locations), the
// per-location table, and finally defer-to-schema for unlisted locations.
func resolveUnknown(override, instanceDefault *schema.Unknown, table map[string]schema.Unknown, location string) schema.Unknown {
	if override != nil {
		return *override
	}
	if instanceDefault != nil {
		return *instanceDefault
	}
	if policy, ok := table[location]; ok {
		return policy
	}
	return schema.UnknownDefault
}
