package resource_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityservices/api"
	"github.com/cityservices/api/internal/resource"
)

func TestService_Create_defaults(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := resource.NewService(resource.NewMemoryRepository(),
		resource.WithClock(func() time.Time { return now }),
		resource.WithIDGenerator(func() string { return "8f9c1c55-6a53-4d35-9b0e-0d3c2b3e5f10" }),
	)

	tags := []string{"alpha"}
	r, err := s.Create(context.Background(), &resource.CreateRequest{Body: resource.CreateInput{
		Name: "Gateway",
		Tags: tags,
	}})
	require.NoError(t, err)

	assert.Equal(t, "8f9c1c55-6a53-4d35-9b0e-0d3c2b3e5f10", r.ID)
	assert.Equal(t, resource.StatusPending, r.Status)
	assert.Equal(t, now, r.CreatedAt)

	tags[0] = "mutated"
	got, err := s.Get(context.Background(), &resource.IDRequest{ID: r.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, got.Tags)
}

func TestService_Update(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := resource.NewService(resource.NewMemoryRepository())
	r, err := s.Create(ctx, &resource.CreateRequest{Body: resource.CreateInput{
		Name:        "Gateway",
		Description: "first",
		Tags:        []string{"a", "b"},
	}})
	require.NoError(t, err)

	status := resource.StatusActive
	emptyTags := []string{}
	got, err := s.Update(ctx, &resource.UpdateRequest{ID: r.ID, Body: resource.UpdateInput{
		Status: &status,
		Tags:   &emptyTags,
	}})
	require.NoError(t, err)

	assert.Equal(t, "Gateway", got.Name)
	assert.Equal(t, "first", got.Description)
	assert.Equal(t, resource.StatusActive, got.Status)
	assert.Empty(t, got.Tags)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	_, err = s.Update(ctx, &resource.UpdateRequest{ID: "00000000-0000-4000-8000-000000000000"})
	assert.Equal(t, http.StatusNotFound, api.ErrorStatus(err))
}

func TestService_List(t *testing.T) {
	t.Parallel()

	s := resource.NewService(resource.NewMemoryRepository())
	require.NoError(t, s.Seed(context.Background(), 12))

	tests := map[string]struct {
		req   resource.ListRequest
		items int
		total int
		first string
	}{
		"newest first":   {req: resource.ListRequest{PageSize: 5}, items: 5, total: 12, first: "Sample Resource 12"},
		"last page":      {req: resource.ListRequest{Page: 3, PageSize: 5}, items: 2, total: 12, first: "Sample Resource 2"},
		"name filter":    {req: resource.ListRequest{Name: "resource 1"}, items: 4, total: 4, first: "Sample Resource 12"},
		"nothing at all": {req: resource.ListRequest{Name: "zzz"}, items: 0, total: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			resp, err := s.List(context.Background(), &tc.req)
			require.NoError(t, err)
			assert.Len(t, resp.Items, tc.items)
			assert.Equal(t, tc.total, resp.Total)
			if tc.first != "" {
				assert.Equal(t, tc.first, resp.Items[0].Name)
			}
		})
	}
}
