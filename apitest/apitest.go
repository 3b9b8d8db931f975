// Package apitest drives a gateway-fronted router over real HTTP and decodes
// what comes back: a typed body on success, a problem document otherwise.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cityservices/api"
)

// Client sends requests to an httptest.Server closed at test cleanup.
type Client struct {
	Server *httptest.Server
}

// NewClient starts a server for h, usually an *api.Router.
func NewClient(t testing.TB, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Response is one decoded exchange. Body is set for 2xx and 3xx answers
// that carry JSON; Problem is set for 4xx and 5xx answers.
type Response[T any] struct {
	Status  int
	Headers http.Header
	Body    *T
	Problem *api.ProblemDetail
}

// IssuePaths lists the paths of the problem's validation issues in order.
// It is empty for successful responses.
func (r *Response[T]) IssuePaths() []string {
	if r.Problem == nil {
		return nil
	}
	paths := make([]string, 0, len(r.Problem.Details))
	for _, d := range r.Problem.Details {
		paths = append(paths, d.Path)
	}
	return paths
}

func Get[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodGet, path, nil)
}

func Delete[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodDelete, path, nil)
}

// Post marshals body to JSON and posts it.
func Post[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodPost, path, mustJSON(t, body))
}

// Put marshals body to JSON and puts it.
func Put[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return Do[Resp](t, c, http.MethodPut, path, mustJSON(t, body))
}

// Do sends body as is. Tests use it for payloads a Go type cannot
// produce, like malformed JSON or a field of the wrong type.
func Do[Resp any](t testing.TB, c *Client, method, path string, body []byte) *Response[Resp] {
	t.Helper()

	status, header, raw := c.send(t, method, path, body)
	out := &Response[Resp]{Status: status, Headers: header}
	if len(raw) == 0 {
		return out
	}

	if status >= http.StatusBadRequest {
		var p api.ProblemDetail
		if json.Unmarshal(raw, &p) == nil {
			out.Problem = &p
		}
		return out
	}

	var v Resp
	if json.Unmarshal(raw, &v) == nil {
		out.Body = &v
	}
	return out
}

func (c *Client) send(t testing.TB, method, path string, body []byte) (int, http.Header, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, rd)
	if err != nil {
		t.Fatalf("apitest: %s %s: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("apitest: %s %s: %v", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read fully below

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("apitest: %s %s: read body: %v", method, path, err)
	}
	return resp.StatusCode, resp.Header, raw
}

func mustJSON(t testing.TB, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("apitest: encode body: %v", err)
	}
	return b
}
