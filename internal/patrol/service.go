package patrol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cityservices/api"
	"github.com/cityservices/api/internal/store"
)

// Repository persists patrols.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Patrol, int, error)
	Get(ctx context.Context, id string) (Patrol, error)
	Create(ctx context.Context, p Patrol) error
	Update(ctx context.Context, p Patrol) error
	Delete(ctx context.Context, id string) error
}

// Service implements the patrol handlers.
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

// List returns a page of patrols, newest first.
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	page := store.NewPage(req.Page, req.PageSize)

	items, total, err := s.repo.List(ctx, Filter{Location: req.Location, Page: page})
	if err != nil {
		return nil, fmt.Errorf("list patrols: %w", err)
	}
	if items == nil {
		items = []Patrol{}
	}

	return &ListResponse{
		Items:    items,
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
	}, nil
}

// Get returns one patrol.
func (s *Service) Get(ctx context.Context, req *IDRequest) (*Patrol, error) {
	p, err := s.repo.Get(ctx, req.ID)
	if err != nil {
		return nil, notFound(err, req.ID)
	}
	return &p, nil
}

// Create records a new patrol.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Patrol, error) {
	now := s.now().UTC()
	in := req.Body

	p := Patrol{
		ID:         s.newID(),
		CaseID:     in.CaseID,
		Location:   in.Location,
		StartedAt:  in.StartedAt.UTC(),
		EndedAt:    utc(in.EndedAt),
		PatrolType: in.PatrolType,
		CallType:   in.CallType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patrol: %w", err)
	}

	slog.DebugContext(ctx, "patrol created", "id", p.ID, "request_id", api.RequestIDFrom(ctx))
	return &p, nil
}

// Update applies the supplied fields to an existing patrol. The merged
// record must still end after it starts.
func (s *Service) Update(ctx context.Context, req *UpdateRequest) (*Patrol, error) {
	p, err := s.repo.Get(ctx, req.ID)
	if err != nil {
		return nil, notFound(err, req.ID)
	}

	in := req.Body
	if in.CaseID != nil {
		p.CaseID = *in.CaseID
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.StartedAt != nil {
		p.StartedAt = in.StartedAt.UTC()
	}
	if in.EndedAt != nil {
		p.EndedAt = utc(in.EndedAt)
	}
	if in.PatrolType != nil {
		p.PatrolType = *in.PatrolType
	}
	if in.CallType != nil {
		p.CallType = *in.CallType
	}

	if err := checkInterval(p.StartedAt, p.EndedAt); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, notFound(err, req.ID)
	}
	return &p, nil
}

// Delete removes a patrol.
func (s *Service) Delete(ctx context.Context, req *IDRequest) (*api.Void, error) {
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		return nil, notFound(err, req.ID)
	}
	return &api.Void{}, nil
}

var (
	seedLocations = []string{"Main St & 1st Ave", "Harbor District", "Central Park", "Old Town", "Riverside"}
	seedTypes     = []Type{TypeCar, TypeFoot, TypeBike, TypeHorse}
	seedCallTypes = []string{"", "traffic", "disturbance", "welfare check"}
)

// Seed inserts n sample patrols. Every other patrol is still ongoing.
func (s *Service) Seed(ctx context.Context, n int) error {
	base := s.now().UTC()

	for i := range n {
		started := base.Add(-time.Duration(n-i) * time.Hour)
		p := Patrol{
			ID:         s.newID(),
			Location:   seedLocations[i%len(seedLocations)],
			StartedAt:  started,
			PatrolType: seedTypes[i%len(seedTypes)],
			CallType:   seedCallTypes[i%len(seedCallTypes)],
			CreatedAt:  started,
			UpdatedAt:  started,
		}
		if i%2 == 0 {
			ended := started.Add(45 * time.Minute)
			p.EndedAt = &ended
		}
		if i%3 == 0 {
			p.CaseID = fmt.Sprintf("CASE-%04d", i+1)
		}
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("seed patrol %d: %w", i+1, err)
		}
	}
	return nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func notFound(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return api.Errorf(http.StatusNotFound, "patrol %s not found", id)
	}
	return err
}
