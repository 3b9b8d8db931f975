package api

import "context"

// Void is used as a type parameter when a request has no parameters/body
// or a response has no body (results in 204 No Content).
type Void struct{}

// Handler is the typed handler signature. Handlers receive a request that
// has already passed the gateway and never see the http primitives.
type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)
