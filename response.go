package api

import (
	"encoding/json"
	"net/http"
)

// HeaderSetter is implemented by response types that add headers of their
// own, such as ETag or Location.
type HeaderSetter interface {
	SetHeaders(h http.Header)
}

const (
	contentTypeJSON    = "application/json"
	contentTypeProblem = "application/problem+json"
)

// encodeResponse writes a response that has passed the gateway. A response
// implementing StatusCoder overrides the route's success status.
func encodeResponse(w http.ResponseWriter, resp any, status int) {
	if hs, ok := resp.(HeaderSetter); ok {
		hs.SetHeaders(w.Header())
	}
	if sc, ok := resp.(StatusCoder); ok {
		status = sc.StatusCode()
	}
	writeJSON(w, status, contentTypeJSON, resp)
}

// writeErrorResponse writes err as an RFC 9457 problem document.
func writeErrorResponse(w http.ResponseWriter, err error) {
	problem := toProblem(err)
	writeJSON(w, problem.Status, contentTypeProblem, problem)
}

// WriteError writes err the way typed routes do. Plain handlers mounted
// with Router.Handle use it to answer in the same format.
func WriteError(w http.ResponseWriter, err error) {
	writeErrorResponse(w, err)
}

func writeJSON(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson,gosec // the status is already sent
	json.NewEncoder(w).Encode(v)
}
