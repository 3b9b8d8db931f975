// Package health serves the liveness endpoint shared by both services.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cityservices/api"
	"github.com/cityservices/api/internal/store"
)

// Path is the health endpoint.
const Path = "/health"

// StatusOK is the only status a healthy service reports.
const StatusOK = "ok"

// Response is the body of GET /health.
type Response struct {
	Status    string    `json:"status" enum:"ok" required:"true"`
	Service   string    `json:"service" minLength:"1" required:"true"`
	Version   string    `json:"version" required:"true"`
	Timestamp time.Time `json:"timestamp" required:"true"`
}

// Checker answers health probes. A nil pinger always reports healthy.
type Checker struct {
	service string
	version string
	pinger  store.Pinger
	now     func() time.Time
}

// NewChecker returns a Checker for the named service.
func NewChecker(service, version string, pinger store.Pinger) *Checker {
	return &Checker{
		service: service,
		version: version,
		pinger:  pinger,
		now:     time.Now,
	}
}

// WithClock replaces time.Now. It returns c for chaining.
func (c *Checker) WithClock(now func() time.Time) *Checker {
	c.now = now
	return c
}

// Check pings the backing store and reports the service status.
func (c *Checker) Check(ctx context.Context, _ *api.Void) (*Response, error) {
	if c.pinger != nil {
		if err := c.pinger.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "health check failed", "service", c.service, "error", err)
			return nil, api.Error(http.StatusServiceUnavailable, "database unavailable")
		}
	}
	return &Response{
		Status:    StatusOK,
		Service:   c.service,
		Version:   c.version,
		Timestamp: c.now().UTC(),
	}, nil
}

// RegisterSchemas adds the response schema of the health route to reg.
func RegisterSchemas(reg *api.SchemaRegistry) error {
	schemas, err := api.SchemasFor[api.Void, Response]()
	if err != nil {
		return err
	}
	return reg.Register(api.NewRouteKey(http.MethodGet, Path), schemas)
}

// Mount registers the health handler on r.
func Mount(r api.Registrar, c *Checker) {
	api.Get(r, Path, c.Check,
		api.WithTags("health"),
		api.WithSummary("Service health"),
		api.WithOperationID("getHealth"),
		api.WithErrors(http.StatusServiceUnavailable))
}
