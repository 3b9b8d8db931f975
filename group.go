package api

import "slices"

// Group mounts routes under a shared prefix. Its routes share the router's
// gateway, so schema keys name the full path ("/v1/patrols/{id}"); Key
// builds them.
type Group struct {
	router     *Router
	prefix     string
	middleware []Middleware
	tags       []string
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupTags adds OpenAPI tags to every route of the group.
func WithGroupTags(tags ...string) GroupOption {
	return func(g *Group) {
		g.tags = append(g.tags, tags...)
	}
}

// WithGroupMiddleware wraps every route of the group. Group middleware runs
// after the router's and before the gateway.
func WithGroupMiddleware(mw ...Middleware) GroupOption {
	return func(g *Group) {
		g.middleware = append(g.middleware, mw...)
	}
}

// Group returns a route group mounted at prefix.
func (r *Router) Group(prefix string, opts ...GroupOption) *Group {
	g := &Group{router: r, prefix: prefix}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Group returns a nested group. It inherits the parent's prefix, tags and
// middleware.
func (g *Group) Group(prefix string, opts ...GroupOption) *Group {
	child := &Group{
		router:     g.router,
		prefix:     g.prefix + prefix,
		middleware: slices.Clone(g.middleware),
		tags:       slices.Clone(g.tags),
	}
	for _, opt := range opts {
		opt(child)
	}
	return child
}

// Key returns the schema registry key of a route mounted on g.
func (g *Group) Key(method, pattern string) RouteKey {
	return NewRouteKey(method, g.prefix+pattern)
}

func (g *Group) mount(e endpoint) {
	e.pattern = g.prefix + e.pattern
	e.doc.tags = append(slices.Clone(g.tags), e.doc.tags...)
	g.router.mount(e)
}

func (g *Group) validator() *Gateway       { return g.router.gw }
func (g *Group) errorWriter() ErrorHandler { return g.router.errorHandler }
func (g *Group) scoped() []Middleware      { return g.middleware }
