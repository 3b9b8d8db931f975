package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/cityservices/api"
	"github.com/cityservices/api/internal/store"
)

// Repository persists resources.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Resource, int, error)
	Get(ctx context.Context, id string) (Resource, error)
	Create(ctx context.Context, r Resource) error
	Update(ctx context.Context, r Resource) error
	Delete(ctx context.Context, id string) error
}

// Service implements the resource handlers.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// NewService returns a Service backed by repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns a page of resources, newest first.
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	page := store.NewPage(req.Page, req.PageSize)

	items, total, err := s.repo.List(ctx, Filter{Name: req.Name, Page: page})
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	if items == nil {
		items = []Resource{}
	}

	return &ListResponse{
		Items:    items,
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
	}, nil
}

// Get returns one resource.
func (s *Service) Get(ctx context.Context, req *IDRequest) (*Resource, error) {
	r, err := s.repo.Get(ctx, req.ID)
	if err != nil {
		return nil, notFound(err, req.ID)
	}
	return &r, nil
}

// Create stores a new resource. Status defaults to pending.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Resource, error) {
	now := s.now().UTC()
	in := req.Body

	r := Resource{
		ID:          s.newID(),
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Tags:        slices.Clone(in.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if r.Status == "" {
		r.Status = StatusPending
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	slog.DebugContext(ctx, "resource created", "id", r.ID, "request_id", api.RequestIDFrom(ctx))
	return &r, nil
}

// Update applies the supplied fields to an existing resource.
func (s *Service) Update(ctx context.Context, req *UpdateRequest) (*Resource, error) {
	r, err := s.repo.Get(ctx, req.ID)
	if err != nil {
		return nil, notFound(err, req.ID)
	}

	in := req.Body
	if in.Name != nil {
		r.Name = *in.Name
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.Status != nil {
		r.Status = *in.Status
	}
	if in.Tags != nil {
		r.Tags = slices.Clone(*in.Tags)
	}
	r.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, notFound(err, req.ID)
	}
	return &r, nil
}

// Delete removes a resource.
func (s *Service) Delete(ctx context.Context, req *IDRequest) (*api.Void, error) {
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		return nil, notFound(err, req.ID)
	}
	return &api.Void{}, nil
}

var seedTags = [][]string{{"sample"}, {"sample", "demo"}, nil, {"demo"}}

// Seed inserts n sample resources. Used in development.
func (s *Service) Seed(ctx context.Context, n int) error {
	statuses := []Status{StatusActive, StatusInactive, StatusPending}
	base := s.now().UTC()

	for i := range n {
		ts := base.Add(-time.Duration(n-i) * time.Minute)
		r := Resource{
			ID:          s.newID(),
			Name:        fmt.Sprintf("Sample Resource %d", i+1),
			Description: fmt.Sprintf("Seeded resource number %d", i+1),
			Status:      statuses[i%len(statuses)],
			Tags:        slices.Clone(seedTags[i%len(seedTags)]),
			CreatedAt:   ts,
			UpdatedAt:   ts,
		}
		if err := s.repo.Create(ctx, r); err != nil {
			return fmt.Errorf("seed resource %d: %w", i+1, err)
		}
	}
	return nil
}

func notFound(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return api.Errorf(http.StatusNotFound, "resource %s not found", id)
	}
	return err
}
