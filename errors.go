package reqargs

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/reqargs/reqargs/schema"
)

var (
	// ErrHandlerReturnedNil reports an error-handler contract violation:
	// a registered handler returned nil instead of a non-nil error.
	// Continuing would hand application code unvalidated data, so the
	// engine fails with this instead.
	ErrHandlerReturnedNil = errors.New("reqargs: error handler returned nil, handlers must return a non-nil error")

	// ErrEmptyTarget reports a Parse call with a zero-value Target.
	ErrEmptyTarget = errors.New("reqargs: parse target must carry a schema or a schema factory")

	// ErrNilSchemaFromFactory reports a schema factory that produced nil.
	ErrNilSchemaFromFactory = errors.New("reqargs: schema factory returned a nil schema")
)

///////////////////////////////////////////////////////////////////////////////
// ValidationError
///////////////////////////////////////////////////////////////////////////////

// ValidationError is the terminal, client-facing result of a failed schema
// validation. Field messages are namespaced one level under the location
// that produced them:
//
//	{"query": {"page": ["Not a valid integer."]}}
//
// It carries the response status (422 unless configured) and any headers
// the caller attached for the response. A ValidationError is never retried.
type ValidationError struct {
	Messages map[string]map[string][]string
	Status   int
	Headers  http.Header
}

func (e *ValidationError) Error() string {
	locations := make([]string, 0, len(e.Messages))
	for loc := range e.Messages {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	var b strings.Builder
	fmt.Fprintf(&b, "reqargs: validation failed (%d)", e.Status)
	for _, loc := range locations {
		fields := e.Messages[loc]
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "; %s.%s: %s", loc, k, strings.Join(fields[k], " "))
		}
	}
	return b.String()
}

// newValidationError namespaces a schema failure under its location.
func newValidationError(location string, serr *schema.Error, status int, headers http.Header) *ValidationError {
	return &ValidationError{
		Messages: map[string]map[string][]string{location: serr.Messages},
		Status:   status,
		Headers:  headers,
	}
}

///////////////////////////////////////////////////////////////////////////////
// MalformedBodyError
///////////////////////////////////////////////////////////////////////////////

// MalformedBodyError reports a request body that matched its declared
// content type but could not be decoded (invalid JSON syntax, broken
// urlencoding, and so on). It precedes schema involvement entirely and is
// distinct from a ValidationError: the right response is a 400, not a 422.
type MalformedBodyError struct {
	Location    string
	ContentType string
	Status      int
	Err         error
}

func (e *MalformedBodyError) Error() string {
	return fmt.Sprintf("reqargs: malformed %s payload for location %q: %v", e.ContentType, e.Location, e.Err)
}

func (e *MalformedBodyError) Unwrap() error { return e.Err }

func newMalformedBodyError(location, contentType string, err error) *MalformedBodyError {
	return &MalformedBodyError{
		Location:    location,
		ContentType: contentType,
		Status:      DefaultMalformedStatus,
		Err:         err,
	}
}

///////////////////////////////////////////////////////////////////////////////
// Error Handler
///////////////////////////////////////////////////////////////////////////////

// ErrorHandler is invoked whenever a parse call produces a ValidationError.
// The handler owns translating or wrapping the error; it MUST return a
// non-nil error. Returning nil is a contract violation the engine escalates
// to ErrHandlerReturnedNil, because a handler that swallows the failure
// would let application code run on unvalidated data.
//
// The default handler logs the failure and returns err unchanged for the
// framework integration layer to render.
type ErrorHandler func(err *ValidationError, req *http.Request, sch Schema) error
