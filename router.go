package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"
)

// Router dispatches requests with an http.ServeMux. Typed routes run
// behind the router's Gateway; plain handlers mounted with Handle do not.
type Router struct {
	mux        *http.ServeMux
	middleware []Middleware
	endpoints  []endpoint

	title   string
	version string
	desc    string
	servers []Server

	gw           *Gateway
	errorHandler ErrorHandler
	shutdown     time.Duration

	mu sync.Mutex
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithTitle sets the OpenAPI title.
func WithTitle(title string) RouterOption {
	return func(r *Router) { r.title = title }
}

// WithVersion sets the OpenAPI document version.
func WithVersion(version string) RouterOption {
	return func(r *Router) { r.version = version }
}

// WithAPIDescription sets the OpenAPI description.
func WithAPIDescription(desc string) RouterOption {
	return func(r *Router) { r.desc = desc }
}

// WithServers sets the OpenAPI servers array.
func WithServers(servers ...Server) RouterOption {
	return func(r *Router) { r.servers = servers }
}

// WithGateway installs the schema validation gateway every typed route runs
// through. Without it the router uses a pass-through gateway.
func WithGateway(g *Gateway) RouterOption {
	return func(r *Router) { r.gw = g }
}

// ErrorHandler writes the response for a failed typed request, including
// gateway rejections.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// WithErrorHandler replaces the default problem+json error writer.
func WithErrorHandler(h ErrorHandler) RouterOption {
	return func(r *Router) { r.errorHandler = h }
}

// WithShutdownTimeout bounds how long ListenAndServe waits for in-flight
// requests after its context is cancelled. The default is 30s.
func WithShutdownTimeout(d time.Duration) RouterOption {
	return func(r *Router) { r.shutdown = d }
}

// New returns a Router configured by opts.
func New(opts ...RouterOption) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		shutdown: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.gw == nil {
		r.gw, _ = NewGateway(nil)
	}
	return r
}

// Gateway returns the router's validation gateway.
func (r *Router) Gateway() *Gateway { return r.gw }

// Use appends router-wide middleware. The first middleware added is the
// outermost.
func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

// Handle mounts a plain http.Handler. It bypasses the gateway and is left
// out of the OpenAPI document.
func (r *Router) Handle(pattern string, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mux.Handle(pattern, h)
}

// Routes returns the keys of the mounted typed routes, in mount order.
func (r *Router) Routes() []RouteKey {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]RouteKey, len(r.endpoints))
	for i, e := range r.endpoints {
		keys[i] = NewRouteKey(e.method, e.pattern)
	}
	return keys
}

// UnmountedSchemas returns the gateway entries no typed route resolves to.
// Such an entry never validates anything, which usually means its key was
// registered with a typo or a placeholder syntax the normalizer does not
// understand.
func (r *Router) UnmountedSchemas() []RouteKey {
	mounted := make(map[RouteKey]bool)
	for _, k := range r.Routes() {
		mounted[r.gw.Key(k.Method, k.Pattern)] = true
	}

	var orphans []RouteKey
	for _, k := range r.gw.Routes() {
		if !mounted[k] {
			orphans = append(orphans, k)
		}
	}
	return orphans
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	Chain(r.middleware...)(r.mux).ServeHTTP(w, req)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. A server stopped that way returns nil.
func (r *Router) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.shutdown)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// mount registers a typed endpoint with the mux and keeps it for the
// OpenAPI document. Router middleware is applied in ServeHTTP; only group
// middleware is already part of e.handler.
func (r *Router) mount(e endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mux.Handle(e.muxPattern(), e.handler)
	r.endpoints = append(r.endpoints, e)
}

func (r *Router) validator() *Gateway       { return r.gw }
func (r *Router) errorWriter() ErrorHandler { return r.errorHandler }
func (r *Router) scoped() []Middleware      { return nil }

func (r *Router) snapshot() []endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.endpoints)
}
