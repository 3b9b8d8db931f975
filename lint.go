package api

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/erraggy/oastools/parser"
	"github.com/erraggy/oastools/validator"
)

// ErrInvalidSpec is returned by CheckSpec when the generated document does
// not conform to OpenAPI 3.1.
var ErrInvalidSpec = errors.New("invalid OpenAPI document")

// CheckSpec renders the router's OpenAPI document and validates it. Warnings
// are returned alongside a nil error; any error-level finding fails.
func (r *Router) CheckSpec() (warnings []string, err error) {
	var buf bytes.Buffer
	if err := r.WriteSpec(&buf); err != nil {
		return nil, fmt.Errorf("render spec: %w", err)
	}

	parsed, err := parser.ParseWithOptions(parser.WithBytes(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("parse spec: %w", err)
	}

	v := validator.New()
	v.IncludeWarnings = true
	result, err := v.ValidateParsed(*parsed)
	if err != nil {
		return nil, fmt.Errorf("validate spec: %w", err)
	}

	for _, w := range result.Warnings {
		warnings = append(warnings, w.String())
	}
	if result.Valid {
		return warnings, nil
	}

	msgs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		msgs = append(msgs, e.String())
	}
	return warnings, fmt.Errorf("%w: %d error(s): %s", ErrInvalidSpec, result.ErrorCount, strings.Join(msgs, "; "))
}
