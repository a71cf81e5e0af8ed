package reqargs

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/BurntSushi/toml"
	gojson "github.com/goccy/go-json"
	"github.com/reqargs/reqargs/schema"
	"github.com/tidwall/gjson"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// Request Helpers
///////////////////////////////////////////////////////////////////////////////

// mediaType extracts the bare mime type from the request's Content-Type,
// lowercased, without parameters.
func mediaType(req *http.Request) string {
	ct := req.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mt, _, _ = strings.Cut(ct, ContentTypeDelimiter)
		mt = strings.ToLower(strings.TrimSpace(mt))
	}
	return mt
}

// isJSONType reports whether a mime type carries JSON: application/json or
// any application/*+json suffix type.
func isJSONType(mt string) bool {
	if mt == ContentTypeApplicationJSON {
		return true
	}
	return strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json")
}

func isYAMLType(mt string) bool {
	return mt == ContentTypeApplicationYAML || mt == ContentTypeTextYAML ||
		(strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+yaml"))
}

func isMsgpackType(mt string) bool {
	return mt == ContentTypeApplicationMsgpack || mt == ContentTypeXMsgpack
}

// readBody drains the request body and re-buffers it onto the request, so
// independent per-location parse calls over the same request each see the
// full body. The buffering lives on the request itself; nothing is shared
// across requests.
func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	// A canceled request surfaces here, at the only suspension point;
	// propagate instead of validating a truncated body.
	if cerr := req.Context().Err(); cerr != nil {
		return nil, cerr
	}
	return body, nil
}

///////////////////////////////////////////////////////////////////////////////
// Simple Locations
///////////////////////////////////////////////////////////////////////////////

// LoadQuery loads the request's query string as a multi-valued container.
func LoadQuery(req *http.Request, _ Schema) (schema.Getter, error) {
	return Values(req.URL.Query()), nil
}

// LoadHeaders loads the request headers as a multi-valued container with
// canonicalized key lookup.
func LoadHeaders(req *http.Request, _ Schema) (schema.Getter, error) {
	return Header(req.Header), nil
}

// LoadCookies loads the request cookies. Cookies are single-valued; when a
// name repeats, the last one wins.
func LoadCookies(req *http.Request, _ Schema) (schema.Getter, error) {
	cookies := req.Cookies()
	if len(cookies) == 0 {
		return NoData, nil
	}
	m := make(map[string]string, len(cookies))
	for _, c := range cookies {
		m[c.Name] = c.Value
	}
	return StringMap(m), nil
}

// LoadPath loads route parameters captured by a Go 1.22+ http.ServeMux
// pattern, e.g. "/users/{id}". Requests that were not routed through a
// pattern yield NoData. Framework adapters override this location with
// their own router's parameter source.
func LoadPath(req *http.Request, _ Schema) (schema.Getter, error) {
	names := patternParamNames(req.Pattern)
	if len(names) == 0 {
		return NoData, nil
	}
	m := make(map[string]string, len(names))
	for _, name := range names {
		m[name] = req.PathValue(name)
	}
	return StringMap(m), nil
}

// patternParamNames extracts the wildcard names from a ServeMux pattern
// ("[METHOD ][HOST]/path/{name}/{rest...}").
func patternParamNames(pattern string) []string {
	if pattern == "" {
		return nil
	}
	// Strip the optional method prefix.
	if method, rest, ok := strings.Cut(pattern, " "); ok && !strings.Contains(method, "/") {
		pattern = rest
	}
	var names []string
	for _, seg := range strings.Split(pattern, "/") {
		if len(seg) < 2 || seg[0] != '{' || seg[len(seg)-1] != '}' {
			continue
		}
		name := seg[1 : len(seg)-1]
		name = strings.TrimSuffix(name, "...")
		if name == "" || name == "$" {
			continue
		}
		names = append(names, name)
	}
	return names
}

///////////////////////////////////////////////////////////////////////////////
// Form and Files
///////////////////////////////////////////////////////////////////////////////

// LoadForm loads urlencoded or multipart form values as a multi-valued
// container. Requests carrying neither content type yield NoData; a body
// that claims to be urlencoded but does not parse is a malformed payload.
func LoadForm(req *http.Request, _ Schema) (schema.Getter, error) {
	switch mt := mediaType(req); {
	case mt == ContentTypeForm:
		body, err := readBody(req)
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return NoData, nil
		}
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, newMalformedBodyError(LocationForm, mt, err)
		}
		return Values(values), nil
	case strings.HasPrefix(mt, ContentTypeMultipart):
		if err := req.ParseMultipartForm(defaultMultipartMemory); err != nil {
			return nil, newMalformedBodyError(LocationForm, mt, err)
		}
		if len(req.MultipartForm.Value) == 0 {
			return NoData, nil
		}
		return Values(req.MultipartForm.Value), nil
	default:
		return NoData, nil
	}
}

// LoadFiles loads the uploaded file headers of a multipart request. Each
// key resolves to *multipart.FileHeader values; pair it with schema.Raw
// fields (schema.List of Raw for repeated uploads).
func LoadFiles(req *http.Request, _ Schema) (schema.Getter, error) {
	mt := mediaType(req)
	if !strings.HasPrefix(mt, ContentTypeMultipart) {
		return NoData, nil
	}
	if err := req.ParseMultipartForm(defaultMultipartMemory); err != nil {
		return nil, newMalformedBodyError(LocationFiles, mt, err)
	}
	if len(req.MultipartForm.File) == 0 {
		return NoData, nil
	}
	return Files(req.MultipartForm.File), nil
}

///////////////////////////////////////////////////////////////////////////////
// Body Locations
///////////////////////////////////////////////////////////////////////////////

// LoadJSON loads a JSON object body. A non-JSON content type or an empty
// body yields NoData; JSON-typed bytes that are not a syntactically valid
// object are a malformed payload.
func LoadJSON(req *http.Request, _ Schema) (schema.Getter, error) {
	mt := mediaType(req)
	if !isJSONType(mt) {
		return NoData, nil
	}
	body, err := readBody(req)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return NoData, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, newMalformedBodyError(LocationJSON, mt, fmt.Errorf("invalid JSON syntax"))
	}
	var m map[string]any
	if err := gojson.Unmarshal(body, &m); err != nil {
		return nil, newMalformedBodyError(LocationJSON, mt, fmt.Errorf("expected a JSON object: %w", err))
	}
	return schema.Map(m), nil
}

// LoadBody negotiates the body decoder by content type: JSON, YAML, TOML
// or MessagePack. Unrecognized content types yield NoData so a composite
// location can fall through.
func LoadBody(req *http.Request, sch Schema) (schema.Getter, error) {
	mt := mediaType(req)
	switch {
	case isJSONType(mt):
		return LoadJSON(req, sch)
	case isYAMLType(mt):
		return loadDecodedBody(req, mt, func(body []byte, m *map[string]any) error {
			return yaml.Unmarshal(body, m)
		})
	case mt == ContentTypeApplicationTOML:
		return loadDecodedBody(req, mt, func(body []byte, m *map[string]any) error {
			return toml.Unmarshal(body, m)
		})
	case isMsgpackType(mt):
		return loadDecodedBody(req, mt, func(body []byte, m *map[string]any) error {
			return msgpack.Unmarshal(body, m)
		})
	default:
		return NoData, nil
	}
}

func loadDecodedBody(req *http.Request, mt string, decode func([]byte, *map[string]any) error) (schema.Getter, error) {
	body, err := readBody(req)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return NoData, nil
	}
	var m map[string]any
	if err := decode(body, &m); err != nil {
		return nil, newMalformedBodyError(LocationBody, mt, err)
	}
	return schema.Map(m), nil
}
