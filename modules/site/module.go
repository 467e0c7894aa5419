// Package site serves the public pages: pricing, the contact form, the
// project showcase and the health check.
package site

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/applytrack/handler"
	"github.com/dmitrymomot/applytrack/pkg/binder"
	"github.com/dmitrymomot/applytrack/pkg/httpserver"
	"github.com/dmitrymomot/applytrack/pkg/plans"
	"github.com/dmitrymomot/applytrack/svc/contact"
	"github.com/dmitrymomot/applytrack/svc/portfolio"
)

type Module struct {
	catalog      *plans.Catalog
	contacts     *contact.Service
	projects     *portfolio.Service
	flash        handler.FlashWriter
	checks       map[string]httpserver.Check
	contactPath  string
	contactLimit func(http.Handler) http.Handler
	logger       *slog.Logger
	errorHandler handler.ErrorHandler
}

type Option func(*Module)

func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithHealthCheck adds a named readiness check to GET /up.
func WithHealthCheck(name string, check httpserver.Check) Option {
	return func(m *Module) {
		if check != nil {
			m.checks[name] = check
		}
	}
}

// WithContactPath sets where form submissions of the contact page are
// redirected after processing. Defaults to "/contact".
func WithContactPath(path string) Option {
	return func(m *Module) {
		if path != "" {
			m.contactPath = path
		}
	}
}

// WithContactLimiter guards contact form submissions, typically with a
// per-IP ratelimiter.Middleware.
func WithContactLimiter(mw func(http.Handler) http.Handler) Option {
	return func(m *Module) {
		if mw != nil {
			m.contactLimit = mw
		}
	}
}

// New panics when a dependency is missing.
func New(catalog *plans.Catalog, contacts *contact.Service, projects *portfolio.Service, flash handler.FlashWriter, opts ...Option) *Module {
	switch {
	case catalog == nil:
		panic("site: plan catalog is required")
	case contacts == nil:
		panic("site: contact service is required")
	case projects == nil:
		panic("site: portfolio service is required")
	case flash == nil:
		panic("site: flash writer is required")
	}

	m := &Module{
		catalog:      catalog,
		contacts:     contacts,
		projects:     projects,
		flash:        flash,
		checks:       map[string]httpserver.Check{},
		contactPath:  "/contact",
		contactLimit: func(next http.Handler) http.Handler { return next },
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.errorHandler = handler.NewErrorHandler(m.logger)
	return m
}

// Routes returns a router with the endpoints registered.
func (m *Module) Routes() http.Handler {
	r := chi.NewRouter()
	m.Register(r)
	return r
}

// Register adds the public endpoints to r.
func (m *Module) Register(r chi.Router) {
	r.Get("/up", httpserver.HealthHandler(m.logger, m.checks))

	r.Get("/pricing", handler.Wrap(m.pricing,
		handler.WithErrorHandler[struct{}](m.errorHandler),
	))
	r.With(m.contactLimit).Post("/contact_messages", handler.Wrap(m.createContactMessage,
		handler.WithBinders[contact.Input](handler.Bind(binder.Body())),
		handler.WithErrorHandler[contact.Input](m.errorHandler),
	))
	r.Get("/projects", handler.Wrap(m.listProjects,
		handler.WithBinders[listProjectsRequest](handler.Bind(binder.Query())),
		handler.WithErrorHandler[listProjectsRequest](m.errorHandler),
	))
	r.Get("/projects/{slug}", handler.Wrap(m.showProject,
		handler.WithErrorHandler[struct{}](m.errorHandler),
	))
}
