package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/applytrack/pkg/pg"
	"github.com/dmitrymomot/applytrack/svc/portfolio"
)

const projectColumns = `id, title, slug, description, technologies, highlights, key_features,
	role, project_url, github_url, position, featured, created_at, updated_at`

func scanProject(row pgx.Row) (portfolio.Project, error) {
	var p portfolio.Project
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.Technologies, &p.Highlights, &p.KeyFeatures,
		&p.Role, &p.ProjectURL, &p.GithubURL, &p.Position, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func projectArgs(p *portfolio.Project) []any {
	return []any{
		p.ID, p.Title, p.Slug, p.Description, nonNil(p.Technologies), nonNil(p.Highlights), nonNil(p.KeyFeatures),
		p.Role, p.ProjectURL, p.GithubURL, p.Position, p.Featured, p.CreatedAt, p.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Store) CreateProject(ctx context.Context, p *portfolio.Project) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		projectArgs(p)...,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return portfolio.ErrSlugTaken
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, p *portfolio.Project) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE projects SET
			title = $2, slug = $3, description = $4, technologies = $5, highlights = $6, key_features = $7,
			role = $8, project_url = $9, github_url = $10, position = $11, featured = $12, updated_at = $13
		WHERE id = $1`,
		p.ID, p.Title, p.Slug, p.Description, nonNil(p.Technologies), nonNil(p.Highlights), nonNil(p.KeyFeatures),
		p.Role, p.ProjectURL, p.GithubURL, p.Position, p.Featured, p.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return portfolio.ErrSlugTaken
		}
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return portfolio.ErrProjectNotFound
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return portfolio.ErrProjectNotFound
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*portfolio.Project, error) {
	return s.project(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
}

func (s *Store) GetProjectBySlug(ctx context.Context, slug string) (*portfolio.Project, error) {
	return s.project(ctx, `SELECT `+projectColumns+` FROM projects WHERE slug = $1`, slug)
}

func (s *Store) project(ctx context.Context, sql string, args ...any) (*portfolio.Project, error) {
	p, err := scanProject(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, portfolio.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context, featuredOnly bool) ([]portfolio.Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE NOT $1 OR featured
		ORDER BY position ASC, created_at DESC`, featuredOnly)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	projects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (portfolio.Project, error) {
		return scanProject(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *Store) SlugTaken(ctx context.Context, slug string, except uuid.UUID) (bool, error) {
	var taken bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE slug = $1 AND id <> $2)`, slug, except,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return taken, nil
}
