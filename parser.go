package reqargs

import (
	"net/http"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/reqargs/reqargs/schema"
)

///////////////////////////////////////////////////////////////////////////////
// Schema Seam
///////////////////////////////////////////////////////////////////////////////

// Schema is the narrow surface the engine needs from a schema backend. The
// bundled schema package satisfies it; any backend exposing per-field
// metadata and an all-or-nothing Load may be used instead.
type Schema interface {
	// Fields returns the declared fields keyed by field name. The result
	// is treated as read-only.
	Fields() map[string]schema.Field
	// Load validates and coerces data, honoring the given unknown-key
	// policy (schema.UnknownDefault defers to the backend's own policy).
	// Failures must be reported as a *schema.Error.
	Load(data schema.Getter, unknown schema.Unknown) (map[string]any, error)
}

// SchemaFactory produces a schema from the request being parsed, enabling
// context-sensitive schemas (per-user field filtering, partial-update
// modes). It is invoked once per Parse call.
type SchemaFactory func(req *http.Request) Schema

// Target selects the schema for a parse call: either a fixed Schema or a
// per-request factory. Build one with Use or FromRequest.
type Target struct {
	schema  Schema
	factory SchemaFactory
}

// Use targets a concrete schema instance.
func Use(s Schema) Target { return Target{schema: s} }

// FromRequest targets a schema produced per request by factory.
func FromRequest(factory SchemaFactory) Target { return Target{factory: factory} }

func (t Target) resolve(req *http.Request) (Schema, error) {
	switch {
	case t.schema != nil:
		return t.schema, nil
	case t.factory != nil:
		s := t.factory(req)
		if s == nil {
			return nil, ErrNilSchemaFromFactory
		}
		return s, nil
	default:
		return nil, ErrEmptyTarget
	}
}

///////////////////////////////////////////////////////////////////////////////
// PreLoadHook
///////////////////////////////////////////////////////////////////////////////

// PreLoadHook transforms a location's raw data after loading and before
// validation, e.g. trimming whitespace on form values. The hook must not
// mutate data in place; it returns the structure to validate, which may be
// a freshly built one or data unchanged.
type PreLoadHook func(data schema.Getter, sch Schema, req *http.Request, location string) (schema.Getter, error)

///////////////////////////////////////////////////////////////////////////////
// Parser
///////////////////////////////////////////////////////////////////////////////

// Config assembles a Parser. Every entry is optional; the zero value
// yields a parser with the built-in locations, the default unknown-policy
// table, list/tuple multi-field detection and a logging error handler.
type Config struct {
	// Locations adds to or overrides the built-in location set.
	Locations map[string]Loader
	// Unknown, when set, applies to every location uniformly and makes
	// the per-location table irrelevant for this parser.
	Unknown *schema.Unknown
	// UnknownByLocation overrides individual entries of the default
	// per-location policy table.
	UnknownByLocation map[string]schema.Unknown
	// KnownMultiFields replaces the default multi-valued field type set.
	KnownMultiFields []reflect.Type
	// ErrorHandler replaces the default validation error handler.
	ErrorHandler ErrorHandler
	// PreLoad is applied to every location's raw data before validation.
	PreLoad PreLoadHook
	// ValidationStatus overrides the status attached to validation
	// failures (default 422).
	ValidationStatus int
	// Logger receives default-handler log output. Defaults to the
	// logrus standard logger.
	Logger *logrus.Logger
}

// Parser is the parsing engine. Construct with New; a Parser is immutable
// afterwards and safe for concurrent use across requests.
type Parser struct {
	registry          *LocationRegistry
	detector          *MultiFieldDetector
	unknown           *schema.Unknown
	unknownByLocation map[string]schema.Unknown
	errorHandler      ErrorHandler
	preLoad           PreLoadHook
	validationStatus  int
	logger            *logrus.Logger
}

// New builds a Parser from cfg. Maps in cfg are copied; mutating them
// afterwards does not affect the parser.
func New(cfg Config) *Parser {
	registry := defaultLocationRegistry()
	for name, loader := range cfg.Locations {
		registry.Register(name, loader)
	}

	table := defaultUnknownByLocation()
	for location, policy := range cfg.UnknownByLocation {
		table[location] = policy
	}

	status := cfg.ValidationStatus
	if status == 0 {
		status = DefaultValidationStatus
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Parser{
		registry:          registry,
		detector:          NewMultiFieldDetector(cfg.KnownMultiFields...),
		unknown:           cfg.Unknown,
		unknownByLocation: table,
		errorHandler:      cfg.ErrorHandler,
		preLoad:           cfg.PreLoad,
		validationStatus:  status,
		logger:            logger,
	}
}

///////////////////////////////////////////////////////////////////////////////
// Parse Options
///////////////////////////////////////////////////////////////////////////////

type parseSettings struct {
	unknown *schema.Unknown
	status  int
	headers http.Header
}

// ParseOption adjusts a single Parse call.
type ParseOption func(*parseSettings)

// WithUnknown overrides the unknown-key policy for this call. Passing
// schema.UnknownDefault explicitly defers to the schema's own policy,
// bypassing both the instance default and the location table.
func WithUnknown(policy schema.Unknown) ParseOption {
	return func(s *parseSettings) { s.unknown = &policy }
}

// WithErrorStatus overrides the status attached to a validation failure
// for this call.
func WithErrorStatus(status int) ParseOption {
	return func(s *parseSettings) { s.status = status }
}

// WithErrorHeaders attaches response headers to a validation failure for
// this call.
func WithErrorHeaders(headers http.Header) ParseOption {
	return func(s *parseSettings) { s.headers = headers }
}

///////////////////////////////////////////////////////////////////////////////
// Parse
///////////////////////////////////////////////////////////////////////////////

// Parse extracts, coerces and validates the arguments of one request
// location.
//
// The result maps field names to validated values. Fields absent from the
// location without a declared default are omitted, never filled with a
// placeholder. Calls for different locations on the same request are
// independent; callers compose multiple locations by parsing each and
// merging the results.
//
// Failure modes: *ValidationError (via the error handler) for schema
// failures, *MalformedBodyError for undecodable payloads,
// *UnknownLocationError for unregistered location names, and
// ErrHandlerReturnedNil when a custom handler violates its contract.
func (p *Parser) Parse(target Target, req *http.Request, location string, opts ...ParseOption) (map[string]any, error) {
	settings := parseSettings{status: p.validationStatus}
	for _, opt := range opts {
		opt(&settings)
	}

	sch, err := target.resolve(req)
	if err != nil {
		return nil, err
	}

	loader, err := p.registry.Get(location)
	if err != nil {
		return nil, err
	}

	data, err := loader(req, sch)
	if err != nil {
		// Loader errors (malformed payloads, canceled reads) are not
		// validation failures; they bypass the error handler.
		return nil, err
	}
	if isNoData(data) {
		data = schema.Map(nil)
	}

	if p.preLoad != nil {
		data, err = p.preLoad(data, sch, req, location)
		if err != nil {
			return nil, err
		}
		if isNoData(data) {
			data = schema.Map(nil)
		}
	}

	if _, ok := data.(MultiValueGetter); ok && p.detector.hasMultiple(sch) {
		data = NewMultiSourceView(data, sch, p.detector)
	}

	unknown := resolveUnknown(settings.unknown, p.unknown, p.unknownByLocation, location)

	result, err := sch.Load(data, unknown)
	if err == nil {
		return result, nil
	}

	serr, ok := err.(*schema.Error)
	if !ok {
		// Backend failures that are not structured validation errors
		// indicate a broken schema implementation; surface them as-is.
		return nil, err
	}
	return nil, p.dispatchError(newValidationError(location, serr, settings.status, settings.headers), req, sch)
}

// dispatchError runs the validation error through the configured handler,
// enforcing the must-fail contract.
func (p *Parser) dispatchError(verr *ValidationError, req *http.Request, sch Schema) error {
	if p.errorHandler == nil {
		p.logger.WithFields(logrus.Fields{
			"status":   verr.Status,
			"messages": verr.Messages,
		}).Error("request validation failed")
		return verr
	}
	if err := p.errorHandler(verr, req, sch); err != nil {
		return err
	}
	return ErrHandlerReturnedNil
}

///////////////////////////////////////////////////////////////////////////////
// Package-Level Default Parser
///////////////////////////////////////////////////////////////////////////////

var defaultParser = New(Config{})

// Parse parses using the package-level default parser.
func Parse(target Target, req *http.Request, location string, opts ...ParseOption) (map[string]any, error) {
	return defaultParser.Parse(target, req, location, opts...)
}

// RegisterLocation registers a loader on the package-level default parser.
// Call it during program setup only, before requests are being served.
func RegisterLocation(name string, loader Loader) {
	defaultParser.registry.Register(name, loader)
}
