package api

import "net/http"

// BodyLimit returns middleware that caps the request body at maxBytes.
// Typed routes answer an oversized body with 413 before the gateway runs.
// A non-positive limit disables the check.
func BodyLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
