package api

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Middleware is the standard func(http.Handler) http.Handler signature.
type Middleware func(next http.Handler) http.Handler

// Chain composes mw into one Middleware. mw[0] is the outermost.
func Chain(mw ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := len(mw) - 1; i >= 0; i-- {
			h = mw[i](h)
		}
		return h
	}
}

// Recovery turns a panic into a 500 problem document. The problem's
// instance carries the request ID, when there is one, so a client report
// can be matched to the logged stack. The ID is only seen when RequestID
// runs outside Recovery.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				id := GetRequestID(r)
				slog.ErrorContext(r.Context(), "panic recovered",
					"panic", rec,
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", id,
				)

				problem := &ProblemDetail{
					Type:   "about:blank",
					Title:  http.StatusText(http.StatusInternalServerError),
					Status: http.StatusInternalServerError,
				}
				if id != "" {
					problem.Instance = "urn:request:" + id
				}
				writeErrorResponse(w, problem)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
