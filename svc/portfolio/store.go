package portfolio

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store persists projects. ListProjects returns them in SortProjects order.
type Store interface {
	CreateProject(ctx context.Context, p *Project) error
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (*Project, error)
	ListProjects(ctx context.Context, featuredOnly bool) ([]Project, error)
	// SlugTaken ignores the project identified by except.
	SlugTaken(ctx context.Context, slug string, except uuid.UUID) (bool, error)
}

// MemoryStore is a Store for tests and local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]Project
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: make(map[uuid.UUID]Project)}
}

func (s *MemoryStore) CreateProject(ctx context.Context, p *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.projects {
		if other.Slug == p.Slug {
			return ErrSlugTaken
		}
	}
	s.projects[p.ID] = *p
	return nil
}

func (s *MemoryStore) UpdateProject(ctx context.Context, p *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		return ErrProjectNotFound
	}
	for id, other := range s.projects {
		if id != p.ID && other.Slug == p.Slug {
			return ErrSlugTaken
		}
	}
	s.projects[p.ID] = *p
	return nil
}

func (s *MemoryStore) DeleteProject(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return ErrProjectNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *MemoryStore) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	return &p, nil
}

func (s *MemoryStore) GetProjectBySlug(ctx context.Context, slug string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, ErrProjectNotFound
}

func (s *MemoryStore) ListProjects(ctx context.Context, featuredOnly bool) ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		if featuredOnly && !p.Featured {
			continue
		}
		out = append(out, p)
	}
	SortProjects(out)
	return out, nil
}

func (s *MemoryStore) SlugTaken(ctx context.Context, slug string, except uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, p := range s.projects {
		if id != except && p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}
