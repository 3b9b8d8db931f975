package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for request binding and route registration.
var (
	ErrBindPath       = errors.New("bind path")
	ErrBindQuery      = errors.New("bind query")
	ErrBindBody       = errors.New("bind body")
	ErrDuplicateRoute = errors.New("duplicate route")
)

// StatusCoder is implemented by errors or responses that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// Issue is a single field-level validation failure.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Source names the part of an exchange a ValidationError was raised for.
type Source string

// Validated parts, in the order the gateway checks them.
const (
	SourceBody     Source = "body"
	SourceQuery    Source = "query"
	SourceParams   Source = "params"
	SourceResponse Source = "response"
)

// ValidationError reports a payload that did not satisfy its route schema.
// It is always client-facing (400) and carries every issue found.
type ValidationError struct {
	Source  Source
	Details []Issue
}

// Error summarizes the issues.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Details))
	for i, d := range e.Details {
		if d.Path == "" {
			parts[i] = d.Message
			continue
		}
		parts[i] = d.Path + ": " + d.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Source, strings.Join(parts, "; "))
}

// StatusCode returns http.StatusBadRequest.
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Problem converts the error into its wire representation.
func (e *ValidationError) Problem() *ProblemDetail {
	return &ProblemDetail{
		Type:    "about:blank",
		Title:   "Validation Failed",
		Status:  http.StatusBadRequest,
		Detail:  fmt.Sprintf("%d %s validation issue(s)", len(e.Details), e.Source),
		Details: e.Details,
	}
}

// ProblemDetail is an RFC 9457 problem details response. Validation
// failures populate Details.
//
//nolint:errname // RFC 9457 standard name
type ProblemDetail struct {
	Type     string  `json:"type,omitempty"`
	Title    string  `json:"title,omitempty"`
	Status   int     `json:"status"`
	Detail   string  `json:"detail,omitempty"`
	Instance string  `json:"instance,omitempty"`
	Details  []Issue `json:"details,omitempty"`
}

// Error returns the detail message (or title if detail is empty).
func (p *ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// StatusCode returns the HTTP status code.
func (p *ProblemDetail) StatusCode() int { return p.Status }

// HTTPError is an error with an HTTP status code.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error returns the error message.
func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement StatusCoder.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// toProblem converts any error into the problem document written to the client.
// Errors without a status are reported as 500 without leaking their text.
func toProblem(err error) *ProblemDetail {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Problem()
	}

	var pd *ProblemDetail
	if errors.As(err, &pd) {
		return pd
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(http.StatusServiceUnavailable),
			Status: http.StatusServiceUnavailable,
			Detail: "request timed out",
		}
	}

	status := ErrorStatus(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		var sc StatusCoder
		if !errors.As(err, &sc) {
			detail = ""
		}
	}

	return &ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}
