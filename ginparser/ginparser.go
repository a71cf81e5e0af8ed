// Package ginparser integrates reqargs with gin. It carries route
// parameters from the gin context into the core parser's path location and
// renders parse failures as gin JSON responses.
package ginparser

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reqargs/reqargs"
	"github.com/reqargs/reqargs/schema"
)

type paramsKey struct{}

// Parser wraps a core parser with gin-aware location handling.
type Parser struct {
	core *reqargs.Parser
}

// New builds a gin parser. Unless cfg supplies its own "path" loader, the
// location is backed by the gin route parameters of the context passed to
// Parse.
func New(cfg reqargs.Config) *Parser {
	if _, ok := cfg.Locations[reqargs.LocationPath]; !ok {
		locations := make(map[string]reqargs.Loader, len(cfg.Locations)+1)
		for name, loader := range cfg.Locations {
			locations[name] = loader
		}
		locations[reqargs.LocationPath] = loadGinPath
		cfg.Locations = locations
	}
	return &Parser{core: reqargs.New(cfg)}
}

// Core exposes the wrapped parser for direct *http.Request use.
func (p *Parser) Core() *reqargs.Parser { return p.core }

// Parse parses one location of the request carried by c.
func (p *Parser) Parse(target reqargs.Target, c *gin.Context, location string, opts ...reqargs.ParseOption) (map[string]any, error) {
	req := c.Request
	if len(c.Params) > 0 {
		req = req.WithContext(context.WithValue(req.Context(), paramsKey{}, c.Params))
	}
	return p.core.Parse(target, req, location, opts...)
}

// loadGinPath reads the gin route parameters stashed on the request
// context by Parse.
func loadGinPath(req *http.Request, _ reqargs.Schema) (schema.Getter, error) {
	params, ok := req.Context().Value(paramsKey{}).(gin.Params)
	if !ok || len(params) == 0 {
		return reqargs.NoData, nil
	}
	m := make(map[string]any, len(params))
	for _, p := range params {
		m[p.Key] = p.Value
	}
	return schema.Map(m), nil
}

// Abort renders a parse failure and aborts the gin handler chain. It
// understands the reqargs error types and falls back to a bare 500 for
// anything else (configuration errors are not client problems). The
// return value is the status written.
func Abort(c *gin.Context, err error) int {
	var verr *reqargs.ValidationError
	if errors.As(err, &verr) {
		for key, vals := range verr.Headers {
			for _, v := range vals {
				c.Header(key, v)
			}
		}
		c.AbortWithStatusJSON(verr.Status, gin.H{"errors": verr.Messages})
		return verr.Status
	}
	var merr *reqargs.MalformedBodyError
	if errors.As(err, &merr) {
		c.AbortWithStatusJSON(merr.Status, gin.H{
			"errors": gin.H{merr.Location: []string{"Malformed request body."}},
		})
		return merr.Status
	}
	c.AbortWithStatus(http.StatusInternalServerError)
	return http.StatusInternalServerError
}
