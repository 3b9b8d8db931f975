package api

import (
	"net/http"
	"reflect"
)

// endpoint is a typed route as mounted on the mux, together with the
// metadata the OpenAPI document is generated from.
type endpoint struct {
	method  string
	pattern string
	status  int
	doc     operationDoc

	reqType  reflect.Type
	respType reflect.Type

	handler http.Handler
}

// operationDoc is the hand-written part of an OpenAPI operation.
type operationDoc struct {
	id         string
	summary    string
	desc       string
	tags       []string
	errors     []int
	deprecated bool
}

func (e *endpoint) muxPattern() string { return e.method + " " + e.pattern }

// successStatus is the explicit status, or 204 for a Void response and 200
// for anything else.
func (e *endpoint) successStatus() int {
	switch {
	case e.status != 0:
		return e.status
	case e.respType == reflect.TypeFor[Void]():
		return http.StatusNoContent
	default:
		return http.StatusOK
	}
}

// RouteOption configures a route at registration time.
type RouteOption func(*endpoint)

// WithStatus sets the status written on success.
func WithStatus(code int) RouteOption {
	return func(e *endpoint) { e.status = code }
}

// WithSummary sets the OpenAPI summary.
func WithSummary(s string) RouteOption {
	return func(e *endpoint) { e.doc.summary = s }
}

// WithDescription sets the OpenAPI description.
func WithDescription(d string) RouteOption {
	return func(e *endpoint) { e.doc.desc = d }
}

// WithTags adds OpenAPI tags.
func WithTags(tags ...string) RouteOption {
	return func(e *endpoint) { e.doc.tags = append(e.doc.tags, tags...) }
}

// WithDeprecated marks the operation deprecated.
func WithDeprecated() RouteOption {
	return func(e *endpoint) { e.doc.deprecated = true }
}

// WithErrors documents error statuses the handler itself can return. The
// 400 written by the gateway is documented automatically.
func WithErrors(codes ...int) RouteOption {
	return func(e *endpoint) { e.doc.errors = append(e.doc.errors, codes...) }
}

// WithOperationID overrides the generated operationId.
func WithOperationID(id string) RouteOption {
	return func(e *endpoint) { e.doc.id = id }
}
