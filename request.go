package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"time"
)

// inboundFrom collects the parts of r the gateway validates. The pattern is
// the one ServeMux matched, so it is always the registered template.
func inboundFrom(r *http.Request) (Inbound, error) {
	_, pattern := splitPattern(r.Pattern)

	in := Inbound{
		Method:  r.Method,
		Pattern: pattern,
		Query:   r.URL.Query(),
	}

	if names := templateParams(pattern); len(names) > 0 {
		in.Params = make(map[string]string, len(names))
		for _, name := range names {
			in.Params[name] = r.PathValue(name)
		}
	}

	if r.Body != nil && r.Body != http.NoBody {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return Inbound{}, fmt.Errorf("%w: %w", ErrBindBody, err)
		}
		in.Body = b
	}

	return in, nil
}

// decodeRequest creates a new Req value and populates it from validated
// request data: parameters from the coerced maps, the body from its JSON.
func decodeRequest[Req any](v *Validated) (*Req, error) {
	req := new(Req)
	t := reflect.TypeFor[Req]()

	if t == reflect.TypeFor[Void]() {
		return req, nil
	}
	if t.Kind() != reflect.Struct {
		if err := decodeBody(v.Body, req); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBindBody, err)
		}
		return req, nil
	}

	if err := bindParams(req, v); err != nil {
		return nil, err
	}

	switch {
	case hasBodyField(t):
		bodyPtr := reflect.ValueOf(req).Elem().FieldByName("Body").Addr().Interface()
		if err := decodeBody(v.Body, bodyPtr); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBindBody, err)
		}
	case !hasParamTags(t):
		if err := decodeBody(v.Body, req); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBindBody, err)
		}
	}

	return req, nil
}

// bindParams binds path and query values to tagged struct fields. Query
// fields fall back to their "default" tag when absent.
func bindParams(target any, v *Validated) error {
	rv := reflect.ValueOf(target).Elem()
	t := rv.Type()

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Name == "Body" {
			continue
		}
		field := rv.Field(i)

		if name := f.Tag.Get("path"); name != "" {
			if val, ok := v.Params[name]; ok {
				if err := setField(field, val); err != nil {
					return fmt.Errorf("%w: %s: %w", ErrBindPath, name, err)
				}
			}
		}

		if name := f.Tag.Get("query"); name != "" {
			val, ok := v.Query[name]
			if !ok {
				if def := f.Tag.Get("default"); def != "" {
					val, ok = def, true
				}
			}
			if ok {
				if err := setField(field, val); err != nil {
					return fmt.Errorf("%w: %s: %w", ErrBindQuery, name, err)
				}
			}
		}
	}

	return nil
}

// setField assigns a validated value (string, number, bool or list) to a
// struct field.
func setField(field reflect.Value, val any) error {
	if list, ok := val.([]any); ok {
		if field.Kind() != reflect.Slice {
			if len(list) == 0 {
				return nil
			}
			return setField(field, list[0])
		}
		out := reflect.MakeSlice(field.Type(), len(list), len(list))
		for i, item := range list {
			if err := setField(out.Index(i), item); err != nil {
				return err
			}
		}
		field.Set(out)
		return nil
	}

	s, err := scalarString(val)
	if err != nil {
		return err
	}

	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() != reflect.Uint8 {
		out := reflect.MakeSlice(field.Type(), 1, 1)
		if err := setFieldValue(out.Index(0), s); err != nil {
			return err
		}
		field.Set(out)
		return nil
	}
	return setFieldValue(field, s)
}

func scalarString(val any) (string, error) {
	switch x := val.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported value %T", val)
	}
}

// setFieldValue sets a reflect.Value from a string, supporting common types.
func setFieldValue(field reflect.Value, value string) error {
	if value == "" {
		return nil
	}

	if field.Kind() == reflect.Pointer {
		ptr := reflect.New(field.Type().Elem())
		if err := setFieldValue(ptr.Elem(), value); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	}

	switch field.Type() {
	case reflect.TypeFor[time.Duration]():
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	case reflect.TypeFor[time.Time]():
		ts, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(ts))
		return nil
	}

	//exhaustive:ignore
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported type: %s", field.Type())
	}
	return nil
}

// decodeBody decodes a JSON body into target. An empty body leaves target
// at its zero value.
func decodeBody(body []byte, target any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, target)
}

// hasBodyField reports whether the given type has an exported "Body" field.
func hasBodyField(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	f, ok := t.FieldByName("Body")
	return ok && f.IsExported()
}
