package api

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SelfValidator is implemented by request types that check invariants a
// schema cannot express (cross-field rules). It runs after the gateway has
// accepted the request and the request has been bound.
type SelfValidator interface {
	Validate() error
}

// jsonSchema is a Schema backed by a compiled JSON Schema document.
type jsonSchema struct {
	def    JSONSchema
	schema *gojsonschema.Schema
	coerce bool
}

// CompileSchema compiles def into a Schema. With Coerce, string scalars are
// converted to the declared property type before validation.
func CompileSchema(def JSONSchema, opts ...SchemaOption) (Schema, error) {
	var cfg schemaConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &jsonSchema{def: def, schema: compiled, coerce: cfg.coerce}, nil
}

// MustCompileSchema is like CompileSchema but panics on error.
func MustCompileSchema(def JSONSchema, opts ...SchemaOption) Schema {
	s, err := CompileSchema(def, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate implements Schema.
func (s *jsonSchema) Validate(v any) (any, []Issue) {
	if s.coerce {
		v = coerce(s.def, v)
	}

	result, err := s.schema.Validate(gojsonschema.NewGoLoader(v))
	if err != nil {
		return nil, []Issue{{Path: "", Message: err.Error()}}
	}
	if result.Valid() {
		return v, nil
	}

	errs := result.Errors()
	issues := make([]Issue, 0, len(errs))
	for _, e := range errs {
		issues = append(issues, toIssue(e))
	}
	return nil, issues
}

// toIssue converts a gojsonschema error into an Issue whose path names the
// offending field, including the property a "required" or "additional
// property" error is about.
func toIssue(e gojsonschema.ResultError) Issue {
	path := e.Field()
	if path == "(root)" {
		path = ""
	}

	//exhaustive:ignore
	switch e.Type() {
	case "required", "additional_property_not_allowed":
		prop, _ := e.Details()["property"].(string)
		if prop != "" && path != prop && !strings.HasSuffix(path, "."+prop) {
			if path == "" {
				path = prop
			} else {
				path += "." + prop
			}
		}
	}

	return Issue{Path: path, Message: e.Description()}
}

// coerce converts strings in v to the scalar types declared by def. Values
// that do not parse are left as strings so the schema reports them.
func coerce(def JSONSchema, v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if prop, ok := def.Properties[k]; ok {
				out[k] = coerce(prop, item)
				continue
			}
			out[k] = item
		}
		return out
	case []any:
		if def.Type != "array" || def.Items == nil {
			return val
		}
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = coerce(*def.Items, item)
		}
		return out
	case string:
		return coerceString(def, val)
	default:
		return v
	}
}

func coerceString(def JSONSchema, s string) any {
	//exhaustive:ignore
	switch def.Type {
	case "integer":
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n
		}
	case "number":
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	case "array":
		if def.Items != nil {
			return []any{coerceString(*def.Items, s)}
		}
		return []any{s}
	}
	return s
}
