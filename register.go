package api

import (
	"net/http"
	"reflect"
)

// Registrar is what the registration functions mount routes on. *Router and
// *Group implement it.
type Registrar interface {
	mount(e endpoint)
	validator() *Gateway
	errorWriter() ErrorHandler
	scoped() []Middleware
}

func register[Req, Resp any](reg Registrar, method, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	e := endpoint{
		method:   method,
		pattern:  pattern,
		reqType:  reflect.TypeFor[Req](),
		respType: reflect.TypeFor[Resp](),
	}
	for _, opt := range opts {
		opt(&e)
	}
	e.status = e.successStatus()

	e.handler = Chain(reg.scoped()...)(&pipeline[Req, Resp]{
		handle:  h,
		status:  e.status,
		gw:      reg.validator(),
		onError: reg.errorWriter(),
	})

	reg.mount(e)
}

// Get registers a GET handler.
func Get[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodGet, pattern, h, opts...)
}

// Post registers a POST handler.
func Post[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPost, pattern, h, opts...)
}

// Put registers a PUT handler.
func Put[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPut, pattern, h, opts...)
}

// Patch registers a PATCH handler.
func Patch[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPatch, pattern, h, opts...)
}

// Delete registers a DELETE handler.
func Delete[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodDelete, pattern, h, opts...)
}
