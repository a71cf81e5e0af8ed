// Package reqargs parses and validates HTTP request arguments against
// declarative schemas.
//
// A request exposes several named "locations" that arguments can be pulled
// from: the query string, a JSON (or other encoded) body, urlencoded or
// multipart form data, headers, cookies, route path parameters and file
// uploads. Given a schema describing the expected fields, a Parser loads
// the raw data for one location, reconciles repeated-key containers with
// the schema's scalar/sequence expectations, applies the configured
// unknown-field policy and hands the data to the schema backend for
// coercion and validation:
//
//	s := schema.New(map[string]schema.Field{
//		"page": schema.Int(schema.FieldOpts{Default: 1, Rules: "gte=1"}),
//		"tags": schema.List(schema.Str(schema.FieldOpts{}), schema.FieldOpts{}),
//	})
//
//	args, err := reqargs.Parse(reqargs.Use(s), req, reqargs.LocationQuery)
//
// Validation failures surface as a *ValidationError carrying per-field
// messages namespaced under the location name, a status code (422 unless
// configured otherwise) and optional headers. Bodies that match their
// declared content type but do not decode surface as a *MalformedBodyError
// (400) instead; bodies of a mismatched content type are treated as "no
// data" so required/default field semantics apply normally.
//
// Locations are extensible: register a Loader under a new name, or compose
// existing loaders with FirstOf to build fallback ("meta") locations. The
// schema backend is pluggable as well; anything satisfying the Schema
// interface can be parsed against, with the bundled schema package as the
// default.
//
// A Parser holds no per-request state. All configuration is fixed at
// construction, so a single Parser is safe for any number of concurrent
// requests; one Parse call is a pure function of its schema, request,
// location and options.
package reqargs
