// Package billing mounts the checkout, billing portal, webhook and usage
// endpoints.
package billing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/applytrack/handler"
	pkgbilling "github.com/dmitrymomot/applytrack/pkg/billing"
	"github.com/dmitrymomot/applytrack/pkg/binder"
	"github.com/dmitrymomot/applytrack/pkg/entitlement"
	"github.com/dmitrymomot/applytrack/pkg/usage"
	"github.com/dmitrymomot/applytrack/svc/account"
	"github.com/dmitrymomot/applytrack/svc/subscription"
)

// Config holds the URLs the billing flows redirect to.
type Config struct {
	BaseURL     string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	AccountPath string `env:"BILLING_ACCOUNT_PATH" envDefault:"/account"`
}

func (c Config) accountURL() string { return c.AccountPath }

// checkoutURLs builds the processor return URLs. Stripe substitutes the
// session placeholder; Paddle appends its own _ptxn transaction parameter.
func (c Config) checkoutURLs(processor string) subscription.CheckoutURLs {
	success := c.BaseURL + "/checkout/success"
	if processor != pkgbilling.ProcessorPaddle {
		success += "?session_id=" + sessionPlaceholder
	}
	return subscription.CheckoutURLs{
		SuccessURL: success,
		CancelURL:  c.BaseURL + "/checkout/cancel",
	}
}

// UsageReporter summarizes quota consumption for a user and meters gated
// actions against it. *entitlement.Checker satisfies it.
type UsageReporter interface {
	Summary(ctx context.Context, userID uuid.UUID) ([]entitlement.FeatureUsage, error)
	Gate(ctx context.Context, userID uuid.UUID, feature usage.Feature, action entitlement.Action, opts ...entitlement.GateOption) entitlement.Result
}

type Module struct {
	cfg          Config
	service      *subscription.Service
	syncer       *subscription.Syncer
	users        account.Reader
	usage        UsageReporter
	flash        handler.FlashWriter
	processor    string
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

// New panics when a dependency is missing. processor is the name of the
// configured payment provider; webhooks for any other name are rejected.
func New(
	cfg Config,
	processor string,
	service *subscription.Service,
	syncer *subscription.Syncer,
	users account.Reader,
	usage UsageReporter,
	flash handler.FlashWriter,
	opts ...Option,
) *Module {
	switch {
	case service == nil:
		panic("billing: subscription service is required")
	case syncer == nil:
		panic("billing: syncer is required")
	case users == nil:
		panic("billing: user reader is required")
	case usage == nil:
		panic("billing: usage reporter is required")
	case flash == nil:
		panic("billing: flash writer is required")
	}

	m := &Module{
		cfg:       cfg,
		service:   service,
		syncer:    syncer,
		users:     users,
		usage:     usage,
		flash:     flash,
		processor: processor,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.errorHandler = handler.NewErrorHandler(m.logger)
	return m
}

// Routes returns a router with the endpoints registered.
func (m *Module) Routes(authenticate func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	m.Register(r, authenticate)
	return r
}

// Register adds the endpoints to r. authenticate guards everything except
// the processor webhook, which is verified by signature instead.
func (m *Module) Register(r chi.Router, authenticate func(http.Handler) http.Handler) {
	r.Post("/webhooks/{processor}", m.webhook)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/checkout", handler.Wrap(m.startCheckout,
			handler.WithBinders[checkoutRequest](queryBinder),
			handler.WithErrorHandler[checkoutRequest](m.errorHandler),
		))
		r.Get("/checkout/success", handler.Wrap(m.checkoutSuccess,
			handler.WithBinders[checkoutSuccessRequest](queryBinder),
			handler.WithErrorHandler[checkoutSuccessRequest](m.errorHandler),
		))
		r.Get("/checkout/cancel", handler.Wrap(m.checkoutCancel,
			handler.WithErrorHandler[struct{}](m.errorHandler),
		))
		r.Post("/billing_portal", handler.Wrap(m.billingPortal,
			handler.WithErrorHandler[struct{}](m.errorHandler),
		))
		r.Get("/usage", handler.Wrap(m.usageSummary,
			handler.WithErrorHandler[struct{}](m.errorHandler),
		))
		r.Post("/usage/{feature}", handler.Wrap(m.consumeUsage,
			handler.WithBinders[consumeRequest](handler.Bind(binder.Body())),
			handler.WithErrorHandler[consumeRequest](m.errorHandler),
		))
	})
}

func (m *Module) redirectWithOutcome(o subscription.Outcome) handler.Response {
	return handler.RedirectWithFlash(m.cfg.accountURL(), m.flash, handler.FlashKey, handler.Flash{
		Level:   string(o.Level),
		Message: o.Message,
	})
}

func (m *Module) currentUser(ctx context.Context) (*account.User, error) {
	u, err := account.CurrentUser(ctx, m.users)
	if err != nil {
		return nil, handler.ErrUnauthorized
	}
	return u, nil
}
