package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityservices/api"
)

func TestCheckSpec(t *testing.T) {
	t.Parallel()

	r := api.New(api.WithTitle("Notes"), api.WithVersion("1.0.0"))
	api.Get(r, "/notes/{id}", func(_ context.Context, req *regNoteRef) (*regNote, error) {
		return &regNote{ID: req.ID}, nil
	}, api.WithOperationID("getNote"), api.WithErrors(http.StatusNotFound))
	api.Post(r, "/notes/{id}", func(_ context.Context, req *regNoteWrite) (*regNote, error) {
		return &regNote{ID: req.ID, Text: req.Body.Text}, nil
	}, api.WithOperationID("createNote"), api.WithStatus(http.StatusCreated))

	warnings, err := r.CheckSpec()
	require.NoError(t, err)
	for _, w := range warnings {
		assert.NotEmpty(t, w)
	}
}
