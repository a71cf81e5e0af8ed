package reqargs

import (
	"fmt"
	"net/http"

	"github.com/reqargs/reqargs/schema"
)

///////////////////////////////////////////////////////////////////////////////
// Loader Interface
///////////////////////////////////////////////////////////////////////////////

// Loader pulls the raw data for one location out of a request.
//
// A loader must return NoData, not an error, when the location simply has
// nothing to offer: the body is empty, the content type does not match, or
// the request carries no such section. Errors are reserved for payloads
// that match the expected content type but cannot be decoded; those should
// be a *MalformedBodyError so callers can render a 400.
//
// A loader must not retain or mutate request state beyond re-buffering a
// consumed body back onto the request, and must not cache anything across
// requests. Loaders reading the body should stop early when
// req.Context() is done.
type Loader func(req *http.Request, sch Schema) (schema.Getter, error)

// NoData is the sentinel loaders return when their location is absent from
// the request. The engine substitutes an empty mapping, so required-field
// and default semantics apply instead of a hard failure.
var NoData schema.Getter = noData{}

type noData struct{}

func (noData) Lookup(string) (any, bool) { return nil, false }
func (noData) Keys() []string            { return nil }

// isNoData reports whether a loader produced nothing usable.
func isNoData(g schema.Getter) bool {
	if g == nil || g == NoData {
		return true
	}
	return false
}

// FirstOf composes loaders into a single fallback loader: each is invoked
// in order and the first result that is not NoData wins. Decode errors
// stop the fallback immediately. Use it to build composite ("meta")
// locations such as json_or_form.
func FirstOf(loaders ...Loader) Loader {
	return func(req *http.Request, sch Schema) (schema.Getter, error) {
		for _, loader := range loaders {
			data, err := loader(req, sch)
			if err != nil {
				return nil, err
			}
			if !isNoData(data) {
				return data, nil
			}
		}
		return NoData, nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// LocationRegistry
///////////////////////////////////////////////////////////////////////////////

// UnknownLocationError reports a parse against a location name that was
// never registered. This is a server-side configuration error, not a
// client-facing request error.
type UnknownLocationError struct {
	Location string
}

func (e *UnknownLocationError) Error() string {
	return fmt.Sprintf("reqargs: no loader registered for location %q", e.Location)
}

// LocationRegistry maps location names to loaders. Registration is
// additive and override-capable; resolve fails fast on a miss.
//
// A registry is written during parser construction and read-only
// afterwards. Do not register locations while parse calls are in flight.
type LocationRegistry struct {
	loaders map[string]Loader
}

// NewLocationRegistry returns an empty registry.
func NewLocationRegistry() *LocationRegistry {
	return &LocationRegistry{loaders: make(map[string]Loader)}
}

// Register adds or overrides the loader for name.
func (r *LocationRegistry) Register(name string, loader Loader) {
	r.loaders[name] = loader
}

// Get returns the loader registered under name, or an
// *UnknownLocationError when absent.
func (r *LocationRegistry) Get(name string) (Loader, error) {
	loader, ok := r.loaders[name]
	if !ok {
		return nil, &UnknownLocationError{Location: name}
	}
	return loader, nil
}

// clone returns an independent copy so per-parser overrides never touch
// the shared defaults.
func (r *LocationRegistry) clone() *LocationRegistry {
	out := NewLocationRegistry()
	for name, loader := range r.loaders {
		out.loaders[name] = loader
	}
	return out
}

// builtinLocations is the shipped loader set, built once at init.
var builtinLocations = newBuiltinLocationRegistry()

// defaultLocationRegistry returns an independent copy of the built-in set
// for one parser to own.
func defaultLocationRegistry() *LocationRegistry {
	return builtinLocations.clone()
}

func newBuiltinLocationRegistry() *LocationRegistry {
	r := NewLocationRegistry()
	r.Register(LocationQuery, LoadQuery)
	r.Register(LocationQuerystring, LoadQuery)
	r.Register(LocationJSON, LoadJSON)
	r.Register(LocationForm, LoadForm)
	r.Register(LocationBody, LoadBody)
	r.Register(LocationJSONOrForm, FirstOf(LoadJSON, LoadForm))
	r.Register(LocationHeaders, LoadHeaders)
	r.Register(LocationCookies, LoadCookies)
	r.Register(LocationPath, LoadPath)
	r.Register(LocationFiles, LoadFiles)
	return r
}
