package api

import (
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// OpenAPISpec is the top-level OpenAPI 3.1 document.
type OpenAPISpec struct {
	OpenAPI    string              `json:"openapi" yaml:"openapi"`
	Info       OpenAPIInfo         `json:"info" yaml:"info"`
	Servers    []Server            `json:"servers,omitempty" yaml:"servers,omitempty"`
	Paths      map[string]PathItem `json:"paths" yaml:"paths"`
	Components *Components         `json:"components,omitempty" yaml:"components,omitempty"`
}

// OpenAPIInfo holds API metadata.
type OpenAPIInfo struct {
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Server is an OpenAPI server entry.
type Server struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Components holds reusable schemas.
type Components struct {
	Schemas map[string]JSONSchema `json:"schemas,omitempty" yaml:"schemas,omitempty"`
}

// PathItem maps HTTP methods to operations.
type PathItem map[string]Operation

// Operation describes a single API operation on a path.
type Operation struct {
	Summary     string        `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	OperationID string        `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Parameters  []Parameter   `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBody  `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   OperationResp `json:"responses" yaml:"responses"`
	Deprecated  bool          `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// Parameter describes a single operation parameter.
type Parameter struct {
	Name        string     `json:"name" yaml:"name"`
	In          string     `json:"in" yaml:"in"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool       `json:"required,omitempty" yaml:"required,omitempty"`
	Schema      JSONSchema `json:"schema" yaml:"schema"`
}

// RequestBody describes the request body.
type RequestBody struct {
	Required bool                `json:"required" yaml:"required"`
	Content  map[string]MediaObj `json:"content" yaml:"content"`
}

// MediaObj is a media type object with an optional schema.
type MediaObj struct {
	Schema *JSONSchema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// OperationResp maps HTTP status codes to response objects.
type OperationResp map[string]ResponseObj

// ResponseObj describes a single response.
type ResponseObj struct {
	Description string              `json:"description" yaml:"description"`
	Content     map[string]MediaObj `json:"content,omitempty" yaml:"content,omitempty"`
}

const problemSchemaName = "ProblemDetail"

// Spec generates the OpenAPI 3.1 document from registered typed routes.
func (r *Router) Spec() OpenAPISpec {
	endpoints := r.snapshot()

	version := r.version
	if version == "" {
		version = "0.0.0"
	}

	spec := OpenAPISpec{
		OpenAPI: "3.1.0",
		Info: OpenAPIInfo{
			Title:       r.title,
			Version:     version,
			Description: r.desc,
		},
		Servers: r.servers,
		Paths:   make(map[string]PathItem),
	}

	usesProblem := false
	for i := range endpoints {
		e := &endpoints[i]
		path := toOpenAPIPath(e.pattern)

		op := buildOperation(e)
		if len(op.Responses) > 1 {
			usesProblem = true
		}

		if spec.Paths[path] == nil {
			spec.Paths[path] = make(PathItem)
		}
		spec.Paths[path][strings.ToLower(e.method)] = op
	}

	if usesProblem {
		spec.Components = &Components{
			Schemas: map[string]JSONSchema{
				problemSchemaName: problemSchema(),
			},
		}
	}

	return spec
}

// buildOperation documents a mounted endpoint. Routes that take input or
// return a body can be rejected by the gateway, so they document 400.
func buildOperation(e *endpoint) Operation {
	op := Operation{
		Summary:     e.doc.summary,
		Description: e.doc.desc,
		Tags:        e.doc.tags,
		OperationID: e.doc.id,
		Deprecated:  e.doc.deprecated,
		Responses:   make(OperationResp),
	}
	if op.OperationID == "" {
		op.OperationID = generateOperationID(e.method, e.pattern)
	}

	errs := slices.Clone(e.doc.errors)
	if e.reqType != nil && e.reqType != reflect.TypeFor[Void]() {
		op.Parameters = extractParameters(e.reqType)
		op.RequestBody = extractRequestBody(e.reqType, e.method)
		errs = append(errs, http.StatusBadRequest)
	}

	status := e.successStatus()

	if e.respType == nil || e.respType == reflect.TypeFor[Void]() {
		op.Responses[strconv.Itoa(status)] = ResponseObj{Description: "No content"}
	} else {
		respSchema := typeToSchema(e.respType)
		op.Responses[strconv.Itoa(status)] = ResponseObj{
			Description: "Successful response",
			Content: map[string]MediaObj{
				"application/json": {Schema: &respSchema},
			},
		}
		errs = append(errs, http.StatusBadRequest)
	}

	for _, code := range errs {
		key := strconv.Itoa(code)
		if _, ok := op.Responses[key]; ok {
			continue
		}
		op.Responses[key] = ResponseObj{
			Description: http.StatusText(code),
			Content: map[string]MediaObj{
				"application/problem+json": {Schema: &JSONSchema{Ref: "#/components/schemas/" + problemSchemaName}},
			},
		}
	}

	return op
}

// problemSchema documents the error body every route can return.
func problemSchema() JSONSchema {
	s := typeToSchema(reflect.TypeFor[ProblemDetail]())
	s.Required = []string{"status"}
	return s
}

// extractParameters builds OpenAPI parameters from param-tagged fields.
func extractParameters(t reflect.Type) []Parameter {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var params []Parameter
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		for _, in := range paramTags {
			name := f.Tag.Get(in)
			if name == "" {
				continue
			}

			schema := typeToSchema(f.Type)
			applyConstraintTags(&schema, f)
			desc := schema.Description
			schema.Description = ""

			params = append(params, Parameter{
				Name:        name,
				In:          in,
				Description: desc,
				Required:    in == "path" || f.Tag.Get("required") == "true",
				Schema:      schema,
			})
		}
	}

	return params
}

// extractRequestBody builds an OpenAPI RequestBody if the request type has a body.
func extractRequestBody(t reflect.Type, method string) *RequestBody {
	if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
		return nil
	}

	schema, ok := bodySchema(t)
	if !ok {
		return nil
	}
	return &RequestBody{
		Required: true,
		Content: map[string]MediaObj{
			"application/json": {Schema: &schema},
		},
	}
}

// toOpenAPIPath converts a ServeMux pattern like "/items/{id}" to an
// OpenAPI path. Wildcard suffixes and the "{$}" anchor are dropped.
func toOpenAPIPath(pattern string) string {
	p := strings.ReplaceAll(pattern, "...}", "}")
	p = strings.TrimSuffix(p, "{$}")
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// generateOperationID derives a camelCase operationId from method and path,
// e.g. "GET /resources/{id}" → "getResourcesById".
func generateOperationID(method, pattern string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))

	for seg := range strings.SplitSeq(toOpenAPIPath(pattern), "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") {
			b.WriteString("By")
			seg = strings.Trim(seg, "{}")
		}
		for part := range strings.FieldsFuncSeq(seg, func(r rune) bool {
			return r == '-' || r == '_' || r == '.'
		}) {
			rs := []rune(part)
			rs[0] = unicode.ToUpper(rs[0])
			b.WriteString(string(rs))
		}
	}
	return b.String()
}
