package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cityservices/api"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	restricted := api.CORSConfig{
		AllowOrigins:  []string{"https://dispatch.example.com"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        600,
	}

	tests := map[string]struct {
		cfg           []api.CORSConfig
		method        string
		origin        string
		preflight     bool
		wantStatus    int
		wantHeader    map[string]string
		wantNoHeaders []string
	}{
		"request without origin passes through": {
			method:        http.MethodGet,
			wantStatus:    http.StatusOK,
			wantNoHeaders: []string{"Access-Control-Allow-Origin", "Vary"},
		},
		"default config allows any origin": {
			method:     http.MethodGet,
			origin:     "https://app.example.com",
			wantStatus: http.StatusOK,
			wantHeader: map[string]string{
				"Access-Control-Allow-Origin":   "*",
				"Access-Control-Expose-Headers": "X-Request-ID",
				"Vary":                          "Origin",
			},
		},
		"preflight is answered with 204": {
			method:     http.MethodOptions,
			origin:     "https://app.example.com",
			preflight:  true,
			wantStatus: http.StatusNoContent,
			wantHeader: map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Methods": "GET, POST, PUT, PATCH, DELETE, OPTIONS",
				"Access-Control-Allow-Headers": "Content-Type, Authorization, X-Request-ID",
			},
		},
		"listed origin is echoed": {
			cfg:        []api.CORSConfig{restricted},
			method:     http.MethodOptions,
			origin:     "https://dispatch.example.com",
			preflight:  true,
			wantStatus: http.StatusNoContent,
			wantHeader: map[string]string{
				"Access-Control-Allow-Origin":  "https://dispatch.example.com",
				"Access-Control-Allow-Methods": "GET, POST",
				"Access-Control-Max-Age":       "600",
			},
		},
		"unlisted origin gets no grant": {
			cfg:           []api.CORSConfig{restricted},
			method:        http.MethodGet,
			origin:        "https://evil.example.com",
			wantStatus:    http.StatusOK,
			wantHeader:    map[string]string{"Vary": "Origin"},
			wantNoHeaders: []string{"Access-Control-Allow-Origin"},
		},
		"credentials echo the origin instead of a wildcard": {
			cfg: []api.CORSConfig{{
				AllowOrigins:     []string{"*"},
				AllowCredentials: true,
			}},
			method:     http.MethodGet,
			origin:     "https://app.example.com",
			wantStatus: http.StatusOK,
			wantHeader: map[string]string{
				"Access-Control-Allow-Origin":      "https://app.example.com",
				"Access-Control-Allow-Credentials": "true",
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			handler := api.CORS(tc.cfg...)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tc.method, "/resources", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			for k, v := range tc.wantHeader {
				assert.Equal(t, v, rec.Header().Get(k), k)
			}
			for _, k := range tc.wantNoHeaders {
				assert.Empty(t, rec.Header().Get(k), k)
			}
		})
	}
}
