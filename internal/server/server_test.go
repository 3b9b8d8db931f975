package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityservices/api"
	"github.com/cityservices/api/internal/config"
	"github.com/cityservices/api/internal/resource"
	"github.com/cityservices/api/internal/server"
)

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()

	cfg, err := config.FromEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}, config.Defaults{ServiceName: "sample-service", Port: 3000, Database: "sample_service"})
	require.NoError(t, err)
	return cfg
}

func testDomain() (server.Domain, *int) {
	svc := resource.NewService(resource.NewMemoryRepository())
	seeded := new(int)
	return server.Domain{
		Title:           "Sample Service API",
		Description:     "Resources",
		RegisterSchemas: resource.RegisterSchemas,
		Mount:           func(r api.Registrar) { resource.Mount(r, svc) },
		Seed: func(ctx context.Context, n int) error {
			*seeded = n
			return svc.Seed(ctx, n)
		},
	}, seeded
}

func testRouter(t *testing.T, logs io.Writer) *api.Router {
	t.Helper()

	cfg := testConfig(t, nil)
	d, _ := testDomain()
	r, err := server.NewRouter(cfg, d, slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})), nil)
	require.NoError(t, err)
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, rd))
	return rec
}

func TestNewRouter_endpoints(t *testing.T) {
	t.Parallel()

	r := testRouter(t, io.Discard)

	tests := map[string]struct {
		method      string
		target      string
		body        string
		status      int
		contentType string
		contains    string
	}{
		"health": {
			method: http.MethodGet, target: "/health",
			status: http.StatusOK, contentType: "application/json", contains: `"service":"sample-service"`,
		},
		"json spec": {
			method: http.MethodGet, target: server.SpecPath,
			status: http.StatusOK, contentType: "application/json", contains: `"/resources/{id}"`,
		},
		"yaml spec": {
			method: http.MethodGet, target: server.SpecYAMLPath,
			status: http.StatusOK, contains: "operationId: listResources",
		},
		"docs": {
			method: http.MethodGet, target: server.DocsPath,
			status: http.StatusOK, contentType: "text/html; charset=utf-8", contains: "Sample Service API",
		},
		"create": {
			method: http.MethodPost, target: "/resources", body: `{"name":"gateway"}`,
			status: http.StatusCreated, contentType: "application/json", contains: `"status":"pending"`,
		},
		"rejected create": {
			method: http.MethodPost, target: "/resources", body: `{"name":1}`,
			status: http.StatusBadRequest, contentType: "application/problem+json", contains: `"path":"name"`,
		},
		"unknown route": {
			method: http.MethodGet, target: "/nope",
			status: http.StatusNotFound,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := serve(r, tc.method, tc.target, tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			if tc.contentType != "" {
				assert.Equal(t, tc.contentType, rec.Header().Get("Content-Type"))
			}
			if tc.contains != "" {
				assert.Contains(t, rec.Body.String(), tc.contains)
			}
		})
	}
}

func TestNewRouter_metrics(t *testing.T) {
	t.Parallel()

	r := testRouter(t, io.Discard)

	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "").Code)
	require.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/resources?bogus=1", "").Code)

	rec := serve(r, http.MethodGet, server.MetricsPath, "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := rec.Body.String()
	assert.Contains(t, out, `sample_service_http_requests_total{method="GET",route="GET /health",status="200"} 1`)
	assert.Contains(t, out, `sample_service_validation_failures_total{route="GET /resources",source="query"} 1`)
}

func TestNewRouter_logs_rejections(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	r := testRouter(t, &logs)

	require.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/resources", `{}`).Code)

	var found bool
	for line := range strings.SplitSeq(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] != "validation failed" {
			continue
		}
		found = true
		assert.Equal(t, "DEBUG", entry["level"])
		assert.Equal(t, "POST /resources", entry["route"])
		assert.Equal(t, "body", entry["source"])
	}
	assert.True(t, found, "no rejection logged")
}

func TestNewRouter_CheckSpec(t *testing.T) {
	t.Parallel()

	_, err := testRouter(t, io.Discard).CheckSpec()
	require.NoError(t, err)
}

func TestNewRouter_schema_error(t *testing.T) {
	t.Parallel()

	d, _ := testDomain()
	d.RegisterSchemas = func(reg *api.SchemaRegistry) error {
		return reg.Register(api.NewRouteKey(http.MethodGet, "/health"), api.RouteSchemas{})
	}

	_, err := server.NewRouter(testConfig(t, nil), d, slog.New(slog.DiscardHandler), nil)
	require.ErrorIs(t, err, api.ErrDuplicateRoute)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		env    string
		prefix string
	}{
		"development is text": {env: "development", prefix: "time="},
		"production is json":  {env: "production", prefix: "{"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			cfg := testConfig(t, map[string]string{"APP_ENV": tc.env, "LOG_LEVEL": "warn"})
			logger := server.NewLogger(cfg.App, &buf)

			logger.Info("dropped")
			logger.Warn("kept")

			out := buf.String()
			assert.True(t, strings.HasPrefix(out, tc.prefix), out)
			assert.NotContains(t, out, "dropped")
			assert.Contains(t, out, "kept")
			assert.Contains(t, out, "sample-service")
		})
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		env    map[string]string
		seeded int
	}{
		"development seeds": {env: map[string]string{"SEED_COUNT": "7"}, seeded: 7},
		"production skips":  {env: map[string]string{"APP_ENV": "production", "SEED_COUNT": "7"}, seeded: 0},
		"zero count skips":  {env: map[string]string{"SEED_COUNT": "0"}, seeded: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig(t, tc.env)
			cfg.App.Port = 0
			d, seeded := testDomain()
			logger := slog.New(slog.DiscardHandler)

			r, err := server.NewRouter(cfg, d, logger, nil)
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			require.NoError(t, server.Run(ctx, cfg, d, r, logger))
			assert.Equal(t, tc.seeded, *seeded)
		})
	}
}

func TestNewRouter_panic_names_request(t *testing.T) {
	t.Parallel()

	d, _ := testDomain()
	mount := d.Mount
	d.Mount = func(r api.Registrar) {
		mount(r)
		api.Get(r, "/boom", func(context.Context, *api.Void) (*api.Void, error) {
			panic("boom")
		})
	}
	r, err := server.NewRouter(testConfig(t, nil), d, slog.New(slog.DiscardHandler), nil)
	require.NoError(t, err)

	rec := serve(r, http.MethodGet, "/boom", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	id := rec.Header().Get("X-Request-Id")
	require.NotEmpty(t, id)

	var problem api.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "urn:request:"+id, problem.Instance)
}
