package api_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityservices/api"
)

func ptr[T any](v T) *T { return &v }

func TestTypeToSchema(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		typ    reflect.Type
		expect api.JSONSchema
	}{
		"string": {
			typ:    reflect.TypeFor[string](),
			expect: api.JSONSchema{Type: "string"},
		},
		"int": {
			typ:    reflect.TypeFor[int](),
			expect: api.JSONSchema{Type: "integer"},
		},
		"uint16": {
			typ:    reflect.TypeFor[uint16](),
			expect: api.JSONSchema{Type: "integer"},
		},
		"float64": {
			typ:    reflect.TypeFor[float64](),
			expect: api.JSONSchema{Type: "number"},
		},
		"bool": {
			typ:    reflect.TypeFor[bool](),
			expect: api.JSONSchema{Type: "boolean"},
		},
		"time.Time": {
			typ:    reflect.TypeFor[time.Time](),
			expect: api.JSONSchema{Type: "string", Format: "date-time"},
		},
		"pointer to time.Time": {
			typ:    reflect.TypeFor[*time.Time](),
			expect: api.JSONSchema{Type: "string", Format: "date-time"},
		},
		"time.Duration": {
			typ:    reflect.TypeFor[time.Duration](),
			expect: api.JSONSchema{Type: "string", Format: "duration"},
		},
		"Void": {
			typ:    reflect.TypeFor[api.Void](),
			expect: api.JSONSchema{},
		},
		"[]byte": {
			typ:    reflect.TypeFor[[]byte](),
			expect: api.JSONSchema{Type: "string", Format: "byte"},
		},
		"[]string": {
			typ: reflect.TypeFor[[]string](),
			expect: api.JSONSchema{
				Type:  "array",
				Items: &api.JSONSchema{Type: "string"},
			},
		},
		"map[string]int": {
			typ: reflect.TypeFor[map[string]int](),
			expect: api.JSONSchema{
				Type:                 "object",
				AdditionalProperties: &api.JSONSchema{Type: "integer"},
			},
		},
		"map with non-string keys": {
			typ:    reflect.TypeFor[map[int]string](),
			expect: api.JSONSchema{Type: "object"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, api.TypeToSchema(tc.typ))
		})
	}
}

func TestStructToSchema(t *testing.T) {
	t.Parallel()

	type Item struct {
		ID       string   `json:"id" format:"uuid" required:"true"`
		Name     string   `json:"name" minLength:"1" maxLength:"64" required:"true" doc:"Display name"`
		Status   string   `json:"status,omitempty" enum:"active,inactive"`
		Tags     []string `json:"tags,omitempty" enum:"a,b" maxItems:"3"`
		Score    float64  `json:"score" minimum:"0" maximum:"10"`
		Code     string   `json:"code" pattern:"^[A-Z]{3}$"`
		Bad      int      `json:"bad" minimum:"nope"`
		Page     int      `query:"page"`
		Skipped  string   `json:"-"`
		NoTag    string
		internal string //nolint:unused // verifies unexported fields are skipped
	}

	s := api.StructToSchema(reflect.TypeFor[Item]())

	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"id", "name"}, s.Required)
	assert.ElementsMatch(t,
		[]string{"id", "name", "status", "tags", "score", "code", "bad", "NoTag"},
		keys(s.Properties))

	assert.Equal(t, "uuid", s.Properties["id"].Format)
	assert.Equal(t, "Display name", s.Properties["name"].Description)
	assert.Equal(t, ptr(1), s.Properties["name"].MinLength)
	assert.Equal(t, ptr(64), s.Properties["name"].MaxLength)
	assert.Equal(t, []string{"active", "inactive"}, s.Properties["status"].Enum)
	assert.Equal(t, []string{"a", "b"}, s.Properties["tags"].Items.Enum)
	assert.Equal(t, ptr(3), s.Properties["tags"].MaxItems)
	assert.Equal(t, ptr(0.0), s.Properties["score"].Minimum)
	assert.Equal(t, ptr(10.0), s.Properties["score"].Maximum)
	assert.Equal(t, "^[A-Z]{3}$", s.Properties["code"].Pattern)
	assert.Nil(t, s.Properties["bad"].Minimum)
}

func TestParamsToSchema(t *testing.T) {
	t.Parallel()

	type Req struct {
		ID     string `path:"id" format:"uuid"`
		Page   int    `query:"page" minimum:"0"`
		Name   string `query:"name" required:"true"`
		Ignore string `json:"ignore"`
	}

	tests := map[string]struct {
		in           string
		wantOK       bool
		wantProps    []string
		wantRequired []string
	}{
		"path params are always required": {
			in:           "path",
			wantOK:       true,
			wantProps:    []string{"id"},
			wantRequired: []string{"id"},
		},
		"query params honour the required tag": {
			in:           "query",
			wantOK:       true,
			wantProps:    []string{"page", "name"},
			wantRequired: []string{"name"},
		},
		"absent location yields no schema": {
			in:     "header",
			wantOK: false,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s, ok := api.ParamsToSchema(reflect.TypeFor[Req](), tc.in)
			require.Equal(t, tc.wantOK, ok)
			if !ok {
				return
			}
			assert.ElementsMatch(t, tc.wantProps, keys(s.Properties))
			assert.Equal(t, tc.wantRequired, s.Required)
			assert.Equal(t, false, s.AdditionalProperties)
		})
	}
}

func TestJSONFieldName(t *testing.T) {
	t.Parallel()

	type S struct {
		Plain    string
		Named    string `json:"named"`
		OmitOnly string `json:",omitempty"`
		WithOpts string `json:"with_opts,omitempty"`
		Dash     string `json:"-"`
	}

	tests := map[string]struct {
		field string
		want  string
	}{
		"no tag uses field name":        {field: "Plain", want: "Plain"},
		"tag name":                      {field: "Named", want: "named"},
		"options only keeps field name": {field: "OmitOnly", want: "OmitOnly"},
		"options are stripped":          {field: "WithOpts", want: "with_opts"},
		"dash skips":                    {field: "Dash", want: "-"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f, ok := reflect.TypeFor[S]().FieldByName(tc.field)
			require.True(t, ok)
			assert.Equal(t, tc.want, api.JSONFieldName(f))
		})
	}
}

func TestHasParamTags_and_HasBodyField(t *testing.T) {
	t.Parallel()

	type Params struct {
		ID string `path:"id"`
	}
	type WithBody struct {
		ID   string `path:"id"`
		Body struct{ Name string }
	}
	type Plain struct {
		Name string `json:"name"`
	}

	assert.True(t, api.HasParamTags(reflect.TypeFor[Params]()))
	assert.True(t, api.HasParamTags(reflect.TypeFor[*WithBody]()))
	assert.False(t, api.HasParamTags(reflect.TypeFor[Plain]()))
	assert.False(t, api.HasParamTags(reflect.TypeFor[string]()))

	assert.True(t, api.HasBodyField(reflect.TypeFor[WithBody]()))
	assert.False(t, api.HasBodyField(reflect.TypeFor[Params]()))
	assert.False(t, api.HasBodyField(reflect.TypeFor[int]()))
}

func TestSchemasFor(t *testing.T) {
	t.Parallel()

	type Item struct {
		ID string `json:"id" required:"true"`
	}
	type GetReq struct {
		ID string `path:"id"`
	}
	type ListReq struct {
		Page int `query:"page"`
	}
	type CreateReq struct {
		Body Item
	}
	type BareBody struct {
		Name string `json:"name" required:"true"`
	}

	tests := map[string]struct {
		derive  func() (api.RouteSchemas, error)
		present [4]bool // params, query, body, response
	}{
		"path params and response": {
			derive:  func() (api.RouteSchemas, error) { return api.SchemasFor[GetReq, Item]() },
			present: [4]bool{true, false, false, true},
		},
		"query only": {
			derive:  func() (api.RouteSchemas, error) { return api.SchemasFor[ListReq, api.Void]() },
			present: [4]bool{false, true, false, false},
		},
		"body field": {
			derive:  func() (api.RouteSchemas, error) { return api.SchemasFor[CreateReq, Item]() },
			present: [4]bool{false, false, true, true},
		},
		"whole struct is the body": {
			derive:  func() (api.RouteSchemas, error) { return api.SchemasFor[BareBody, api.Void]() },
			present: [4]bool{false, false, true, false},
		},
		"void on both sides": {
			derive:  func() (api.RouteSchemas, error) { return api.SchemasFor[api.Void, api.Void]() },
			present: [4]bool{false, false, false, false},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rs, err := tc.derive()
			require.NoError(t, err)

			got := [4]bool{rs.Params != nil, rs.Query != nil, rs.Body != nil, rs.Response != nil}
			assert.Equal(t, tc.present, got)
		})
	}
}

func TestSchemasFor_query(t *testing.T) {
	t.Parallel()

	type ListReq struct {
		Page int    `query:"page" minimum:"0"`
		Name string `query:"name"`
	}

	tests := map[string]struct {
		opts       []api.SchemaOption
		input      map[string]any
		wantIssues int
		wantValue  map[string]any
	}{
		"numeric strings are coerced": {
			input:     map[string]any{"page": "2", "name": "alpha"},
			wantValue: map[string]any{"page": int64(2), "name": "alpha"},
		},
		"non-numeric page fails": {
			input:      map[string]any{"page": "abc"},
			wantIssues: 1,
		},
		"negative page fails the minimum": {
			input:      map[string]any{"page": "-1"},
			wantIssues: 1,
		},
		"unknown key is rejected": {
			input:      map[string]any{"bogus": "1"},
			wantIssues: 1,
		},
		"lenient query accepts unknown keys": {
			opts:      []api.SchemaOption{api.LenientQuery()},
			input:     map[string]any{"bogus": "1"},
			wantValue: map[string]any{"bogus": "1"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rs, err := api.SchemasFor[ListReq, api.Void](tc.opts...)
			require.NoError(t, err)
			require.NotNil(t, rs.Query)

			out, issues := rs.Query.Validate(tc.input)
			assert.Len(t, issues, tc.wantIssues)
			if tc.wantIssues == 0 {
				assert.Equal(t, tc.wantValue, out)
			}
		})
	}
}

func TestMustSchemasFor(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		rs := api.MustSchemasFor[api.Void, struct {
			OK bool `json:"ok"`
		}]()
		assert.NotNil(t, rs.Response)
	})
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
