package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"gopkg.in/yaml.v3"
)

type specFormat int

const (
	specJSON specFormat = iota
	specYAML
)

func (f specFormat) contentType() string {
	if f == specYAML {
		return "application/yaml"
	}
	return "application/json"
}

// ServeSpec serves the OpenAPI document as JSON at pattern.
func (r *Router) ServeSpec(pattern string) { r.serveSpec(pattern, specJSON) }

// ServeSpecYAML serves the OpenAPI document as YAML at pattern.
func (r *Router) ServeSpecYAML(pattern string) { r.serveSpec(pattern, specYAML) }

// serveSpec renders the document on the first request and serves the same
// bytes afterwards. Routes mounted after that request are not documented.
func (r *Router) serveSpec(pattern string, f specFormat) {
	render := sync.OnceValues(func() ([]byte, error) {
		var buf bytes.Buffer
		err := r.renderSpec(&buf, f)
		return buf.Bytes(), err
	})

	r.Handle("GET "+pattern, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		doc, err := render()
		if err != nil {
			writeErrorResponse(w, err)
			return
		}
		w.Header().Set("Content-Type", f.contentType())
		_, _ = w.Write(doc)
	}))
}

// WriteSpec writes the OpenAPI document as indented JSON.
func (r *Router) WriteSpec(w io.Writer) error { return r.renderSpec(w, specJSON) }

// WriteSpecYAML writes the OpenAPI document as YAML.
func (r *Router) WriteSpecYAML(w io.Writer) error { return r.renderSpec(w, specYAML) }

func (r *Router) renderSpec(w io.Writer, f specFormat) error {
	spec := r.Spec()

	if f == specYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(spec); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(spec)
}
