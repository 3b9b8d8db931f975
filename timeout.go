package api

import (
	"context"
	"net/http"
	"time"
)

// Timeout returns middleware that bounds the request context to d. Store
// calls observe the deadline; an expired deadline surfaces as a 503
// problem response.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
