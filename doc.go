// Package api is a typed HTTP router with a schema validation gateway in
// front of every handler. Invalid requests are rejected before a handler
// runs, and invalid responses never reach the client.
//
// Handlers never see the http primitives:
//
//	type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)
//
// Schemas are registered per route, usually derived from the handler types,
// then snapshotted into a Gateway:
//
//	reg := api.NewSchemaRegistry()
//	reg.MustRegister(api.NewRouteKey("POST", "/patrols"), api.MustSchemasFor[CreateReq, Patrol]())
//	gw, err := api.NewGateway(reg, api.WithRejectionHook(metrics.ObserveRejection))
//
//	r := api.New(api.WithTitle("Police Patrol API"), api.WithGateway(gw))
//	api.Post(r, "/patrols", create, api.WithStatus(http.StatusCreated))
//
// Registry keys may use Express (":id") or ServeMux ("{id}") placeholders.
// A route without a registry entry passes through unvalidated.
//
// The gateway checks the body, then the query, then the path parameters,
// and answers the first failure with a 400 problem document listing each
// offending field:
//
//	{"type":"about:blank","title":"Validation Failed","status":400,
//	 "detail":"1 body validation issue(s)",
//	 "details":[{"path":"name","message":"name is required"}]}
//
// Middleware uses the standard func(http.Handler) http.Handler signature.
// The OpenAPI 3.1 document is generated from the registered routes and
// served with ServeSpec, ServeSpecYAML and ServeDocs.
package api
