package api

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// JSONSchema represents a JSON Schema object (subset for OpenAPI 3.1). The
// same value documents a route in the generated spec and, once compiled,
// validates it at runtime.
type JSONSchema struct {
	Type        string                `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string                `json:"format,omitempty" yaml:"format,omitempty"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Properties  map[string]JSONSchema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items       *JSONSchema           `json:"items,omitempty" yaml:"items,omitempty"`
	Required    []string              `json:"required,omitempty" yaml:"required,omitempty"`
	Enum        []string              `json:"enum,omitempty" yaml:"enum,omitempty"`
	Ref         string                `json:"$ref,omitempty" yaml:"$ref,omitempty"`

	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Minimum   *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	MinItems  *int     `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems  *int     `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`

	// AdditionalProperties is false (closed object), a *JSONSchema (map
	// values), or nil (unconstrained).
	AdditionalProperties any `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
}

// paramTags are the struct tags used for binding request parameters.
var paramTags = []string{"path", "query"}

// typeToSchema converts a reflect.Type to a JSONSchema.
func typeToSchema(t reflect.Type) JSONSchema {
	if t.Kind() == reflect.Pointer {
		return typeToSchema(t.Elem())
	}

	switch t {
	case reflect.TypeFor[time.Time]():
		return JSONSchema{Type: "string", Format: "date-time"}
	case reflect.TypeFor[time.Duration]():
		return JSONSchema{Type: "string", Format: "duration"}
	case reflect.TypeFor[Void]():
		return JSONSchema{}
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String:
		return JSONSchema{Type: "string"}
	case reflect.Bool:
		return JSONSchema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return JSONSchema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return JSONSchema{Type: "number"}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return JSONSchema{Type: "string", Format: "byte"}
		}
		items := typeToSchema(t.Elem())
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Array:
		items := typeToSchema(t.Elem())
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return JSONSchema{Type: "object"}
		}
		valSchema := typeToSchema(t.Elem())
		return JSONSchema{Type: "object", AdditionalProperties: &valSchema}
	case reflect.Struct:
		return structToSchema(t)
	default:
		return JSONSchema{}
	}
}

// structToSchema converts a struct type to an object schema. Parameter
// fields are skipped; they belong to the params and query schemas.
func structToSchema(t reflect.Type) JSONSchema {
	schema := JSONSchema{
		Type:       "object",
		Properties: make(map[string]JSONSchema),
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || isParamField(f) {
			continue
		}

		name := jsonFieldName(f)
		if name == "-" {
			continue
		}

		prop := typeToSchema(f.Type)
		applyConstraintTags(&prop, f)
		schema.Properties[name] = prop

		if f.Tag.Get("required") == "true" {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}

// paramsToSchema builds a closed object schema from the fields bound from
// the given parameter location. Path parameters are always required.
func paramsToSchema(t reflect.Type, in string) (JSONSchema, bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return JSONSchema{}, false
	}

	schema := JSONSchema{
		Type:                 "object",
		Properties:           make(map[string]JSONSchema),
		AdditionalProperties: false,
	}

	for i := range t.NumField() {
		f := t.Field(i)
		name := f.Tag.Get(in)
		if !f.IsExported() || name == "" {
			continue
		}

		prop := typeToSchema(f.Type)
		applyConstraintTags(&prop, f)
		schema.Properties[name] = prop

		if in == "path" || f.Tag.Get("required") == "true" {
			schema.Required = append(schema.Required, name)
		}
	}

	if len(schema.Properties) == 0 {
		return JSONSchema{}, false
	}
	return schema, true
}

// bodySchema returns the schema of the request body: the Body field when the
// type has one, otherwise the whole struct if it carries no parameter tags.
func bodySchema(t reflect.Type) (JSONSchema, bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == reflect.TypeFor[Void]() {
		return JSONSchema{}, false
	}

	if f, ok := t.FieldByName("Body"); ok {
		return typeToSchema(f.Type), true
	}
	if !hasParamTags(t) {
		return structToSchema(t), true
	}
	return JSONSchema{}, false
}

// applyConstraintTags copies validation keywords from struct tags onto a
// property schema. Malformed numeric tags are ignored.
func applyConstraintTags(s *JSONSchema, f reflect.StructField) {
	if doc := f.Tag.Get("doc"); doc != "" {
		s.Description = doc
	}
	if format := f.Tag.Get("format"); format != "" {
		s.Format = format
	}
	if pattern := f.Tag.Get("pattern"); pattern != "" {
		s.Pattern = pattern
	}
	if enum := f.Tag.Get("enum"); enum != "" {
		target := s
		if s.Type == "array" && s.Items != nil {
			target = s.Items
		}
		target.Enum = strings.Split(enum, ",")
	}

	s.MinLength = intTag(f, "minLength")
	s.MaxLength = intTag(f, "maxLength")
	s.MinItems = intTag(f, "minItems")
	s.MaxItems = intTag(f, "maxItems")
	s.Minimum = floatTag(f, "minimum")
	s.Maximum = floatTag(f, "maximum")
}

func intTag(f reflect.StructField, name string) *int {
	tag := f.Tag.Get(name)
	if tag == "" {
		return nil
	}
	n, err := strconv.Atoi(tag)
	if err != nil {
		return nil
	}
	return &n
}

func floatTag(f reflect.StructField, name string) *float64 {
	tag := f.Tag.Get(name)
	if tag == "" {
		return nil
	}
	n, err := strconv.ParseFloat(tag, 64)
	if err != nil {
		return nil
	}
	return &n
}

// jsonFieldName returns the JSON field name for a struct field.
func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}

// isParamField reports whether a struct field has parameter binding tags.
func isParamField(f reflect.StructField) bool {
	for _, tag := range paramTags {
		if f.Tag.Get(tag) != "" {
			return true
		}
	}
	return false
}

// hasParamTags reports whether the struct type has any parameter fields.
func hasParamTags(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if f.IsExported() && isParamField(f) {
			return true
		}
	}
	return false
}

// SchemaOption configures schema derivation and compilation.
type SchemaOption func(*schemaConfig)

type schemaConfig struct {
	coerce       bool
	lenientQuery bool
}

// Coerce makes a compiled schema convert string scalars to the declared
// property type (integer, number, boolean, array) before validating.
// Use it for values that arrive as text: path and query parameters.
func Coerce() SchemaOption {
	return func(c *schemaConfig) {
		c.coerce = true
	}
}

// LenientQuery lets a derived query schema accept keys it does not declare.
func LenientQuery() SchemaOption {
	return func(c *schemaConfig) {
		c.lenientQuery = true
	}
}

// SchemasFor derives the route schemas of a typed handler from its request
// and response types. Path and query fields (tagged "path" / "query") become
// closed, coercing object schemas; the Body field (or the whole request, if
// it has no parameter fields) becomes the body schema; Resp becomes the
// response schema. Void on either side yields no schema for that side.
func SchemasFor[Req, Resp any](opts ...SchemaOption) (RouteSchemas, error) {
	var cfg schemaConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		rs  RouteSchemas
		err error
	)

	reqT := reflect.TypeFor[Req]()
	if reqT != reflect.TypeFor[Void]() {
		if ps, ok := paramsToSchema(reqT, "path"); ok {
			if rs.Params, err = CompileSchema(ps, Coerce()); err != nil {
				return RouteSchemas{}, fmt.Errorf("params schema: %w", err)
			}
		}
		if qs, ok := paramsToSchema(reqT, "query"); ok {
			if cfg.lenientQuery {
				qs.AdditionalProperties = nil
			}
			if rs.Query, err = CompileSchema(qs, Coerce()); err != nil {
				return RouteSchemas{}, fmt.Errorf("query schema: %w", err)
			}
		}
		if bs, ok := bodySchema(reqT); ok {
			if rs.Body, err = CompileSchema(bs); err != nil {
				return RouteSchemas{}, fmt.Errorf("body schema: %w", err)
			}
		}
	}

	respT := reflect.TypeFor[Resp]()
	if respT != reflect.TypeFor[Void]() {
		if rs.Response, err = CompileSchema(typeToSchema(respT)); err != nil {
			return RouteSchemas{}, fmt.Errorf("response schema: %w", err)
		}
	}

	return rs, nil
}

// MustSchemasFor is like SchemasFor but panics on error.
func MustSchemasFor[Req, Resp any](opts ...SchemaOption) RouteSchemas {
	rs, err := SchemasFor[Req, Resp](opts...)
	if err != nil {
		panic(err)
	}
	return rs
}
