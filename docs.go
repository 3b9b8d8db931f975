package api

import (
	"html/template"
	"net/http"
)

// DocsOption configures the docs UI.
type DocsOption func(*docsConfig)

type docsConfig struct {
	Title   string
	SpecURL string
	Assets  string
}

// WithDocsTitle sets the page title for the docs UI.
func WithDocsTitle(title string) DocsOption {
	return func(c *docsConfig) {
		c.Title = title
	}
}

// WithDocsSpecURL points the docs UI at a spec other than /api-spec.json.
func WithDocsSpecURL(url string) DocsOption {
	return func(c *docsConfig) {
		c.SpecURL = url
	}
}

// docsAssets is where the Swagger UI bundle is loaded from.
const docsAssets = "https://unpkg.com/swagger-ui-dist@5"

// docsCSP lets the page load the Swagger UI bundle and talk back to this
// origin only.
const docsCSP = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"style-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"img-src 'self' data:; " +
	"font-src 'self'; " +
	"object-src 'self'; " +
	"connect-src 'self'"

// ServeDocs serves a Swagger UI page at the given path, rendering the
// router's OpenAPI spec.
func (r *Router) ServeDocs(path string, opts ...DocsOption) {
	cfg := &docsConfig{
		Title:   r.title,
		SpecURL: "/api-spec.json",
		Assets:  docsAssets,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Title == "" {
		cfg.Title = "API Documentation"
	}

	tmpl := template.Must(template.New("docs").Parse(docsHTML))

	r.Handle("GET "+path, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Security-Policy", docsCSP)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		//nolint:errcheck,gosec // best-effort template render
		tmpl.Execute(w, cfg)
	}))
}

const docsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="{{.Assets}}/swagger-ui.css">
  <style>
    body { margin: 0; background: #fafafa; }
    .swagger-ui .topbar { background-color: #1f2937; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="{{.Assets}}/swagger-ui-bundle.js"></script>
  <script src="{{.Assets}}/swagger-ui-standalone-preset.js"></script>
  <script>
    window.onload = function () {
      window.ui = SwaggerUIBundle({
        url: "{{.SpecURL}}",
        dom_id: "#swagger-ui",
        deepLinking: true,
        presets: [SwaggerUIBundle.presets.apis, SwaggerUIStandalonePreset],
        layout: "StandaloneLayout",
        docExpansion: "list",
        tagsSorter: "alpha",
        operationsSorter: "alpha",
        displayRequestDuration: true,
        filter: true,
        tryItOutEnabled: true
      });
    };
  </script>
</body>
</html>`
