package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cityservices/api"
)

func TestRateLimit(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg         api.RateLimitConfig
		numReqs     int
		wantOK      int
		wantLimited int
	}{
		"requests within burst succeed": {
			cfg:     api.RateLimitConfig{Rate: 1, Burst: 10},
			numReqs: 5,
			wantOK:  5,
		},
		"requests beyond burst are limited": {
			cfg:         api.RateLimitConfig{Rate: 1, Burst: 3},
			numReqs:     5,
			wantOK:      3,
			wantLimited: 2,
		},
		"burst defaults to the rate": {
			cfg:         api.RateLimitConfig{Rate: 2},
			numReqs:     4,
			wantOK:      2,
			wantLimited: 2,
		},
		"zero rate disables limiting": {
			cfg:     api.RateLimitConfig{},
			numReqs: 50,
			wantOK:  50,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			handler := api.RateLimit(tc.cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			var ok, limited int
			for range tc.numReqs {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
				switch rec.Code {
				case http.StatusOK:
					ok++
				case http.StatusTooManyRequests:
					limited++
					assert.Equal(t, "1", rec.Header().Get("Retry-After"))
					assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
				}
			}

			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantLimited, limited)
		})
	}
}

func TestRateLimit_keys_are_independent(t *testing.T) {
	t.Parallel()

	handler := api.RateLimit(api.RateLimitConfig{
		Rate:    1,
		Burst:   1,
		KeyFunc: func(r *http.Request) string { return r.Header.Get("X-Client") },
		OnLimit: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) },
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Client", client)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusTeapot, send("a"))
	assert.Equal(t, http.StatusOK, send("b"))
}
