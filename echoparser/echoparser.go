// Package echoparser integrates reqargs with echo. It carries route
// parameters from the echo context into the core parser's path location
// and bridges parse failures to echo's HTTP error model.
package echoparser

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reqargs/reqargs"
	"github.com/reqargs/reqargs/schema"
)

type paramsKey struct{}

// Parser wraps a core parser with echo-aware location handling.
type Parser struct {
	core *reqargs.Parser
}

// New builds an echo parser. Unless cfg supplies its own "path" loader,
// the location is backed by the echo route parameters of the context
// passed to Parse.
func New(cfg reqargs.Config) *Parser {
	if _, ok := cfg.Locations[reqargs.LocationPath]; !ok {
		locations := make(map[string]reqargs.Loader, len(cfg.Locations)+1)
		for name, loader := range cfg.Locations {
			locations[name] = loader
		}
		locations[reqargs.LocationPath] = loadEchoPath
		cfg.Locations = locations
	}
	return &Parser{core: reqargs.New(cfg)}
}

// Core exposes the wrapped parser for direct *http.Request use.
func (p *Parser) Core() *reqargs.Parser { return p.core }

// Parse parses one location of the request carried by c.
func (p *Parser) Parse(target reqargs.Target, c echo.Context, location string, opts ...reqargs.ParseOption) (map[string]any, error) {
	req := c.Request()
	if names := c.ParamNames(); len(names) > 0 {
		params := make(map[string]any, len(names))
		for i, name := range names {
			params[name] = c.ParamValues()[i]
		}
		req = req.WithContext(context.WithValue(req.Context(), paramsKey{}, params))
	}
	return p.core.Parse(target, req, location, opts...)
}

// loadEchoPath reads the echo route parameters stashed on the request
// context by Parse.
func loadEchoPath(req *http.Request, _ reqargs.Schema) (schema.Getter, error) {
	params, ok := req.Context().Value(paramsKey{}).(map[string]any)
	if !ok || len(params) == 0 {
		return reqargs.NoData, nil
	}
	return schema.Map(params), nil
}

// HTTPError converts a parse failure into an *echo.HTTPError carrying the
// proper status and message body, for returning straight from a handler.
func HTTPError(err error) *echo.HTTPError {
	var verr *reqargs.ValidationError
	if errors.As(err, &verr) {
		herr := echo.NewHTTPError(verr.Status, map[string]any{"errors": verr.Messages})
		return herr.SetInternal(err)
	}
	var merr *reqargs.MalformedBodyError
	if errors.As(err, &merr) {
		herr := echo.NewHTTPError(merr.Status, map[string]any{
			"errors": map[string][]string{merr.Location: {"Malformed request body."}},
		})
		return herr.SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}
