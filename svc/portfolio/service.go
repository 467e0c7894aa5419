package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/applytrack/pkg/logger"
	"github.com/dmitrymomot/applytrack/pkg/slug"
)

type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	if store == nil {
		panic("portfolio: store is required")
	}
	s := &Service{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new project with a slug derived from its title. A taken
// slug gets a numeric suffix: my-app, my-app-1, my-app-2.
func (s *Service) Create(ctx context.Context, in Input) (*Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &Project{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(p)

	var err error
	if p.Slug, err = s.uniqueSlug(ctx, p.Title, p.ID); err != nil {
		return nil, err
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.logger.InfoContext(ctx, "project created",
		logger.Component("portfolio"),
		slog.String("slug", p.Slug),
	)
	return p, nil
}

// Update replaces the editable fields. The slug is regenerated only when the
// title changes.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	titleChanged := p.Title != in.Title
	in.apply(p)
	p.UpdatedAt = s.now().UTC()

	if titleChanged {
		if p.Slug, err = s.uniqueSlug(ctx, p.Title, p.ID); err != nil {
			return nil, err
		}
	}
	if err := s.store.UpdateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteProject(ctx, id)
}

func (s *Service) BySlug(ctx context.Context, slug string) (*Project, error) {
	return s.store.GetProjectBySlug(ctx, slug)
}

// List returns all projects ordered by position, then newest first.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	return s.store.ListProjects(ctx, false)
}

func (s *Service) Featured(ctx context.Context) ([]Project, error) {
	return s.store.ListProjects(ctx, true)
}

func (s *Service) uniqueSlug(ctx context.Context, title string, self uuid.UUID) (string, error) {
	base := slug.Make(title)
	if base == "" {
		return "", ErrEmptySlug
	}
	return slug.Unique(ctx, base, func(ctx context.Context, candidate string) (bool, error) {
		return s.store.SlugTaken(ctx, candidate, self)
	})
}
