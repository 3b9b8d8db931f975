package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cityservices/api"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   string
		want string
	}{
		"root":                  {in: "/", want: "/"},
		"empty":                 {in: "", want: "/"},
		"static":                {in: "/resources", want: "/resources"},
		"trailing slash":        {in: "/resources/", want: "/resources"},
		"express param":         {in: "/resources/:id", want: "/resources/{id}"},
		"express optional":      {in: "/resources/:id?", want: "/resources/{id}"},
		"openapi param":         {in: "/resources/{id}", want: "/resources/{id}"},
		"servemux wildcard":     {in: "/files/{path...}", want: "/files/{path}"},
		"servemux anchor":       {in: "/resources/{$}", want: "/resources"},
		"anchor only":           {in: "/{$}", want: "/"},
		"several params":        {in: "/cases/:caseId/patrols/:id", want: "/cases/{caseId}/patrols/{id}"},
		"lone colon is literal": {in: "/a/:", want: "/a/:"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, api.NormalizePath(tc.in))
		})
	}
}

func TestExactPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/resources/:id", api.ExactPath("/resources/:id"))
}

func TestTemplateParams(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   string
		want []string
	}{
		"none":     {in: "/resources", want: nil},
		"one":      {in: "/resources/{id}", want: []string{"id"}},
		"wildcard": {in: "/files/{path...}", want: []string{"path"}},
		"anchor":   {in: "/{$}", want: nil},
		"two":      {in: "/cases/{caseId}/patrols/{id}", want: []string{"caseId", "id"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, api.TemplateParams(tc.in))
		})
	}
}

func TestRouteKey(t *testing.T) {
	t.Parallel()

	k := api.NewRouteKey("patch", "/resources/:id")
	assert.Equal(t, "PATCH", k.Method)
	assert.Equal(t, "/resources/:id", k.Pattern)
	assert.Equal(t, "PATCH /resources/:id", k.String())
}
