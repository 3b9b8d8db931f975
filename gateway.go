package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// RouteKey identifies a validated endpoint by method and path template.
type RouteKey struct {
	Method  string
	Pattern string
}

// NewRouteKey returns a RouteKey with the method upper-cased. The pattern is
// stored as given; the gateway normalizes it when the registry is snapshotted.
func NewRouteKey(method, pattern string) RouteKey {
	return RouteKey{Method: strings.ToUpper(method), Pattern: pattern}
}

// String renders the key in ServeMux form ("GET /items/{id}").
func (k RouteKey) String() string { return k.Method + " " + k.Pattern }

// Schema validates a decoded value. It returns the normalized value (for
// example with query strings coerced to numbers) or the issues found, in the
// order the fields were checked.
type Schema interface {
	Validate(v any) (any, []Issue)
}

// SchemaFunc adapts an ordinary function to the Schema interface.
type SchemaFunc func(v any) (any, []Issue)

// Validate calls f(v).
func (f SchemaFunc) Validate(v any) (any, []Issue) { return f(v) }

// RouteSchemas holds the validators attached to one route. A nil validator
// leaves that part of the exchange unconstrained.
type RouteSchemas struct {
	Params   Schema
	Query    Schema
	Body     Schema
	Response Schema
}

// SchemaRegistry collects RouteSchemas during startup. It is not safe for
// concurrent use; build it once, then hand it to NewGateway.
type SchemaRegistry struct {
	entries map[RouteKey]RouteSchemas
	keys    []RouteKey
}

// NewSchemaRegistry returns an empty registry.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{entries: make(map[RouteKey]RouteSchemas)}
}

// Register adds the schemas for a route. Registering the same key twice
// fails with ErrDuplicateRoute.
func (s *SchemaRegistry) Register(key RouteKey, entry RouteSchemas) error {
	key.Method = strings.ToUpper(key.Method)
	if _, ok := s.entries[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, key)
	}
	s.entries[key] = entry
	s.keys = append(s.keys, key)
	return nil
}

// MustRegister is like Register but panics on error. Intended for static
// route tables assembled in main.
func (s *SchemaRegistry) MustRegister(key RouteKey, entry RouteSchemas) {
	if err := s.Register(key, entry); err != nil {
		panic(err)
	}
}

// Routes returns the registered keys in registration order.
func (s *SchemaRegistry) Routes() []RouteKey {
	return slices.Clone(s.keys)
}

// Lookup returns the schemas registered under key.
func (s *SchemaRegistry) Lookup(key RouteKey) (RouteSchemas, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Inbound is the raw request data handed to the gateway by the router.
type Inbound struct {
	Method  string
	Pattern string // router path template, e.g. "/resources/{id}"
	Params  map[string]string
	Query   url.Values
	Body    []byte
}

// Validated is what the gateway forwards to the handler. For routes without
// a schema entry it carries the inbound values unchanged.
type Validated struct {
	Key     RouteKey
	Matched bool
	Params  map[string]any
	Query   map[string]any
	Body    []byte
}

// Gateway enforces route schemas in both directions: invalid input never
// reaches a handler and invalid output never reaches the client. Its route
// table is fixed at construction and read without locking.
type Gateway struct {
	routes    map[RouteKey]RouteSchemas
	normalize PathNormalizer
	onReject  func(RouteKey, *ValidationError)
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithPathNormalizer replaces NormalizePath as the template normalizer.
func WithPathNormalizer(n PathNormalizer) GatewayOption {
	return func(g *Gateway) {
		g.normalize = n
	}
}

// WithRejectionHook registers a callback invoked for every validation
// failure, e.g. to count rejections per route.
func WithRejectionHook(fn func(RouteKey, *ValidationError)) GatewayOption {
	return func(g *Gateway) {
		g.onReject = fn
	}
}

// NewGateway snapshots reg into an immutable route table. Later changes to
// reg are not observed. A nil registry yields a pass-through gateway.
func NewGateway(reg *SchemaRegistry, opts ...GatewayOption) (*Gateway, error) {
	g := &Gateway{
		routes:    make(map[RouteKey]RouteSchemas),
		normalize: NormalizePath,
	}
	for _, opt := range opts {
		opt(g)
	}

	if reg == nil {
		return g, nil
	}

	for _, raw := range reg.keys {
		key := g.Key(raw.Method, raw.Pattern)
		if _, ok := g.routes[key]; ok {
			return nil, fmt.Errorf("%w: %s (registered as %s)", ErrDuplicateRoute, key, raw)
		}
		g.routes[key] = reg.entries[raw]
	}
	return g, nil
}

// Routes returns the normalized keys the gateway validates, sorted.
func (g *Gateway) Routes() []RouteKey {
	keys := make([]RouteKey, 0, len(g.routes))
	for k := range g.routes {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b RouteKey) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys
}

// Key builds the lookup key for a method and router template.
func (g *Gateway) Key(method, pattern string) RouteKey {
	return RouteKey{Method: strings.ToUpper(method), Pattern: g.normalize(pattern)}
}

// Intercept validates an inbound request. Routes without an entry pass
// through untouched. Otherwise body, query and params are each validated;
// if any fails, the first failure in that order is returned and the request
// must not be forwarded.
func (g *Gateway) Intercept(in Inbound) (*Validated, error) {
	key := g.Key(in.Method, in.Pattern)
	v := &Validated{
		Key:    key,
		Params: paramsToMap(in.Params),
		Query:  queryToMap(in.Query),
		Body:   in.Body,
	}

	entry, ok := g.routes[key]
	if !ok {
		return v, nil
	}
	v.Matched = true

	var failures []*ValidationError

	if entry.Body != nil && len(bytes.TrimSpace(in.Body)) > 0 {
		body, err := validateBody(entry.Body, in.Body)
		if err != nil {
			failures = append(failures, err)
		} else {
			v.Body = body
		}
	}

	if entry.Query != nil && len(v.Query) > 0 {
		out, issues := entry.Query.Validate(v.Query)
		if len(issues) > 0 {
			failures = append(failures, &ValidationError{Source: SourceQuery, Details: issues})
		} else if m, ok := out.(map[string]any); ok {
			v.Query = m
		}
	}

	if entry.Params != nil && len(v.Params) > 0 {
		out, issues := entry.Params.Validate(v.Params)
		if len(issues) > 0 {
			failures = append(failures, &ValidationError{Source: SourceParams, Details: issues})
		} else if m, ok := out.(map[string]any); ok {
			v.Params = m
		}
	}

	if len(failures) > 0 {
		g.reject(key, failures[0])
		return nil, failures[0]
	}
	return v, nil
}

// WrapResponse checks a handler result against the route's response schema
// before it is written. On failure the body must be discarded and the
// returned *ValidationError sent instead.
func (g *Gateway) WrapResponse(key RouteKey, body any) (any, error) {
	entry, ok := g.routes[key]
	if !ok || entry.Response == nil {
		return body, nil
	}

	doc, err := toDocument(body)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}

	if _, issues := entry.Response.Validate(doc); len(issues) > 0 {
		verr := &ValidationError{Source: SourceResponse, Details: issues}
		g.reject(key, verr)
		return nil, verr
	}
	return body, nil
}

func (g *Gateway) reject(key RouteKey, err *ValidationError) {
	if g.onReject != nil {
		g.onReject(key, err)
	}
}

func validateBody(s Schema, raw []byte) ([]byte, *ValidationError) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ValidationError{
			Source:  SourceBody,
			Details: []Issue{{Path: "", Message: "malformed JSON: " + err.Error()}},
		}
	}

	out, issues := s.Validate(doc)
	if len(issues) > 0 {
		return nil, &ValidationError{Source: SourceBody, Details: issues}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, &ValidationError{
			Source:  SourceBody,
			Details: []Issue{{Path: "", Message: err.Error()}},
		}
	}
	return b, nil
}

// toDocument round-trips v through JSON so schemas see exactly what the
// client would receive.
func toDocument(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func paramsToMap(params map[string]string) map[string]any {
	m := make(map[string]any, len(params))
	for k, v := range params {
		m[k] = v
	}
	return m
}

// queryToMap flattens single-valued keys to strings and keeps repeated keys
// as lists.
func queryToMap(q url.Values) map[string]any {
	m := make(map[string]any, len(q))
	for k, vals := range q {
		switch len(vals) {
		case 0:
			continue
		case 1:
			m[k] = vals[0]
		default:
			list := make([]any, len(vals))
			for i, s := range vals {
				list[i] = s
			}
			m[k] = list
		}
	}
	return m
}
