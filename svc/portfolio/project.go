// Package portfolio manages the showcase projects listed on the public site.
package portfolio

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/applytrack/pkg/validator"
)

// Project is a showcase entry addressed by its slug.
type Project struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	Technologies []string  `json:"technologies,omitempty"`
	Highlights   []string  `json:"highlights,omitempty"`
	KeyFeatures  []string  `json:"key_features,omitempty"`
	Role         string    `json:"role,omitempty"`
	ProjectURL   string    `json:"project_url,omitempty"`
	GithubURL    string    `json:"github_url,omitempty"`
	Position     int       `json:"position"`
	Featured     bool      `json:"featured"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input holds the editable fields of a project.
type Input struct {
	Title        string   `json:"title" form:"title"`
	Description  string   `json:"description" form:"description"`
	Technologies []string `json:"technologies" form:"technologies"`
	Highlights   []string `json:"highlights" form:"highlights"`
	KeyFeatures  []string `json:"key_features" form:"key_features"`
	Role         string   `json:"role" form:"role"`
	ProjectURL   string   `json:"project_url" form:"project_url"`
	GithubURL    string   `json:"github_url" form:"github_url"`
	Position     int      `json:"position" form:"position"`
	Featured     bool     `json:"featured" form:"featured"`
}

func (in Input) Validate() error {
	return validator.Apply(
		validator.Required("title", in.Title),
		validator.MaxLen("title", in.Title, 200),
		validator.Required("description", in.Description),
		validator.ValidURL("project_url", in.ProjectURL),
		validator.ValidURL("github_url", in.GithubURL),
	)
}

func (in Input) apply(p *Project) {
	p.Title = in.Title
	p.Description = in.Description
	p.Technologies = slices.Clone(in.Technologies)
	p.Highlights = slices.Clone(in.Highlights)
	p.KeyFeatures = slices.Clone(in.KeyFeatures)
	p.Role = in.Role
	p.ProjectURL = in.ProjectURL
	p.GithubURL = in.GithubURL
	p.Position = in.Position
	p.Featured = in.Featured
}

// SortProjects orders by position ascending, then newest first.
func SortProjects(projects []Project) {
	slices.SortStableFunc(projects, func(a, b Project) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
