package reqargs

import "net/http"

// constants for built-in location names
const (
	LocationQuery       = "query"
	LocationQuerystring = "querystring" // alias of query
	LocationJSON        = "json"
	LocationForm        = "form"
	LocationBody        = "body" // content-negotiated json/yaml/toml/msgpack
	LocationJSONOrForm  = "json_or_form"
	LocationHeaders     = "headers"
	LocationCookies     = "cookies"
	LocationPath        = "path"
	LocationFiles       = "files"
)

// Mime Type constants for content types and encodings.
const (
	ContentTypeApplicationJSON    = "application/json"
	ContentTypeApplicationYAML    = "application/yaml"
	ContentTypeTextYAML           = "text/yaml"
	ContentTypeApplicationTOML    = "application/toml"
	ContentTypeApplicationMsgpack = "application/msgpack"
	ContentTypeXMsgpack           = "application/x-msgpack"
	ContentTypeForm               = "application/x-www-form-urlencoded"
	ContentTypeMultipart          = "multipart/form-data"
	ContentTypeDelimiter          = ";"
)

// Default status codes attached to client-facing parse failures.
const (
	DefaultValidationStatus = http.StatusUnprocessableEntity
	DefaultMalformedStatus  = http.StatusBadRequest
)

// defaultMultipartMemory bounds the in-memory portion of multipart parsing,
// matching the net/http default.
const defaultMultipartMemory = 32 << 20
