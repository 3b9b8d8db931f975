package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const maxRequestIDLen = 128

type requestIDKey struct{}

// RequestIDConfig configures the RequestID middleware. Zero fields take
// their defaults.
type RequestIDConfig struct {
	Header    string        // default "X-Request-ID"
	Generator func() string // default uuid.NewString
}

func (c RequestIDConfig) withDefaults() RequestIDConfig {
	if c.Header == "" {
		c.Header = "X-Request-ID"
	}
	if c.Generator == nil {
		c.Generator = uuid.NewString
	}
	return c
}

// RequestID tags every exchange with an ID. A client supplied ID is kept
// when it is short printable ASCII; anything else is replaced. The ID is
// echoed in the response header and stored in the request context.
func RequestID(cfg ...RequestIDConfig) Middleware {
	var c RequestIDConfig
	if len(cfg) > 0 {
		c = cfg[0]
	}
	c = c.withDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(c.Header)
			if !acceptableRequestID(id) {
				id = c.Generator()
			}
			w.Header().Set(c.Header, id)
			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
		})
	}
}

func acceptableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := range len(id) {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom extracts the request ID from ctx, if any. Handlers use it to
// correlate their own log lines.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// GetRequestID is RequestIDFrom for a request.
func GetRequestID(r *http.Request) string {
	return RequestIDFrom(r.Context())
}
