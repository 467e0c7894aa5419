package site

import (
	"errors"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/applytrack/handler"
	"github.com/dmitrymomot/applytrack/svc/portfolio"
)

type listProjectsRequest struct {
	Featured bool `query:"featured"`
}

func (m *Module) listProjects(ctx handler.Context, req listProjectsRequest) handler.Response {
	list := m.projects.List
	if req.Featured {
		list = m.projects.Featured
	}
	projects, err := list(ctx)
	if err != nil {
		return handler.JSONError(err)
	}
	return handler.JSON(projects)
}

func (m *Module) showProject(ctx handler.Context, _ struct{}) handler.Response {
	p, err := m.projects.BySlug(ctx, chi.URLParam(ctx.Request(), "slug"))
	if err != nil {
		if errors.Is(err, portfolio.ErrProjectNotFound) {
			return handler.JSONError(handler.ErrNotFound)
		}
		return handler.JSONError(err)
	}
	return handler.JSON(p)
}
