package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityservices/api"
	"github.com/cityservices/api/apitest"
)

func TestRecovery(t *testing.T) {
	t.Parallel()

	r := api.New()
	r.Use(api.Recovery())

	api.Get(r, "/panic", func(_ context.Context, _ *api.Void) (*api.Void, error) {
		panic("boom")
	})

	resp := apitest.Get[api.Void](t, apitest.NewClient(t, r), "/panic")

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, "application/problem+json", resp.Headers.Get("Content-Type"))
	require.NotNil(t, resp.Problem)
	assert.Equal(t, http.StatusInternalServerError, resp.Problem.Status)
	assert.NotContains(t, resp.Problem.Detail, "boom")
}

func TestRecovery_repanics_abort_handler(t *testing.T) {
	t.Parallel()

	handler := api.Recovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRouter_Use_order(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) api.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := api.New()
	r.Use(mark("first"), mark("second"))
	r.Use(mark("third"))
	api.Get(r, "/", func(_ context.Context, _ *api.Void) (*api.Void, error) {
		order = append(order, "handler")
		return &api.Void{}, nil
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"first", "second", "third", "handler"}, order)
}

func TestRecovery_instance_names_request(t *testing.T) {
	t.Parallel()

	r := api.New()
	r.Use(
		api.RequestID(api.RequestIDConfig{Generator: func() string { return "req-9" }}),
		api.Recovery(),
	)
	api.Get(r, "/panic", func(_ context.Context, _ *api.Void) (*api.Void, error) {
		panic("boom")
	})

	resp := apitest.Get[api.Void](t, apitest.NewClient(t, r), "/panic")

	require.NotNil(t, resp.Problem)
	assert.Equal(t, "urn:request:req-9", resp.Problem.Instance)
	assert.Equal(t, "req-9", resp.Headers.Get("X-Request-ID"))
}

func TestChain(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) api.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := api.Chain(mark("outer"), mark("inner"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)

	order = nil
	api.Chain()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"handler"}, order)
}
