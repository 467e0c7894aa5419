package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/applytrack/modules/billing"
	"github.com/dmitrymomot/applytrack/modules/site"
	pkgbilling "github.com/dmitrymomot/applytrack/pkg/billing"
	"github.com/dmitrymomot/applytrack/pkg/clientip"
	"github.com/dmitrymomot/applytrack/pkg/config"
	"github.com/dmitrymomot/applytrack/pkg/cookie"
	"github.com/dmitrymomot/applytrack/pkg/email"
	"github.com/dmitrymomot/applytrack/pkg/entitlement"
	"github.com/dmitrymomot/applytrack/pkg/environment"
	"github.com/dmitrymomot/applytrack/pkg/httpserver"
	"github.com/dmitrymomot/applytrack/pkg/jwt"
	"github.com/dmitrymomot/applytrack/pkg/logger"
	pkgmongo "github.com/dmitrymomot/applytrack/pkg/mongo"
	"github.com/dmitrymomot/applytrack/pkg/pg"
	"github.com/dmitrymomot/applytrack/pkg/plans"
	"github.com/dmitrymomot/applytrack/pkg/ratelimiter"
	pkgredis "github.com/dmitrymomot/applytrack/pkg/redis"
	"github.com/dmitrymomot/applytrack/pkg/requestid"
	"github.com/dmitrymomot/applytrack/pkg/usage"
	"github.com/dmitrymomot/applytrack/store/mongo"
	"github.com/dmitrymomot/applytrack/store/postgres"
	"github.com/dmitrymomot/applytrack/svc/account"
	"github.com/dmitrymomot/applytrack/svc/contact"
	"github.com/dmitrymomot/applytrack/svc/portfolio"
	"github.com/dmitrymomot/applytrack/svc/subscription"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	env := environment.Parse(cfg.Environment)

	log := logger.New(
		logger.WithEnvironment(env, cfg.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	slog.SetDefault(log)

	checks := map[string]httpserver.Check{}

	// Postgres holds every store; Redis and MongoDB are optional.
	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return err
	}
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	checks["postgres"] = pg.Healthcheck(pool)

	store := postgres.New(pool)
	if err := store.Migrate(ctx, pgCfg, log); err != nil {
		return err
	}

	var usageStore usage.Store = store
	if cfg.UsageBackend == "mongo" {
		var mongoCfg pkgmongo.Config
		if err := config.Load(&mongoCfg); err != nil {
			return err
		}
		db, err := pkgmongo.Database(ctx, mongoCfg)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Client().Disconnect(shutdownCtx)
		}()
		checks["mongo"] = pkgmongo.Healthcheck(db.Client())

		events := mongo.NewUsageStore(db)
		if err := events.Migrate(ctx); err != nil {
			return err
		}
		usageStore = events
	}

	var redisCfg pkgredis.Config
	if err := config.Load(&redisCfg); err != nil {
		return err
	}
	var (
		locker    entitlement.Locker
		rateStore ratelimiter.Store = ratelimiter.NewMemoryStore()
	)
	if redisCfg.Enabled() {
		client, err := pkgredis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		checks["redis"] = pkgredis.Healthcheck(client)
		locker = entitlement.NewRedisLocker(client, 10*time.Second)
		rateStore = ratelimiter.NewRedisStore(client, "ratelimit:")
	}

	catalog, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	provider, err := newProvider(cfg.PaymentProcessor)
	if err != nil {
		return err
	}

	ledger := usage.NewLedger(usageStore, usage.WithLogger(log))
	checkerOpts := []entitlement.Option{entitlement.WithLogger(log)}
	if locker != nil {
		checkerOpts = append(checkerOpts, entitlement.WithLocker(locker))
	}
	checker, err := entitlement.NewChecker(catalog, ledger, account.PlanResolver(store, cfg.ProPlan), checkerOpts...)
	if err != nil {
		return err
	}

	var authCfg account.Config
	if err := config.Load(&authCfg); err != nil {
		return err
	}
	var jwtOpts []jwt.Option
	if authCfg.TokenIssuer != "" {
		jwtOpts = append(jwtOpts, jwt.WithIssuer(authCfg.TokenIssuer))
	}
	tokens, err := jwt.New(authCfg.TokenSecret, jwtOpts...)
	if err != nil {
		return err
	}

	var cookieCfg cookie.Config
	if err := config.Load(&cookieCfg); err != nil {
		return err
	}
	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}

	var emailCfg email.Config
	if err := config.Load(&emailCfg); err != nil {
		return err
	}
	mailer, err := email.New(emailCfg)
	if err != nil {
		return err
	}

	var billingCfg billing.Config
	if err := config.Load(&billingCfg); err != nil {
		return err
	}

	subscriptions := subscription.NewService(provider, store, catalog, subscription.WithLogger(log))
	syncer := subscription.NewSyncer(provider, store, store, subscription.WithSyncerLogger(log))
	contacts := contact.NewService(store, mailer,
		contact.WithLogger(log),
		contact.WithNotifyTo(emailCfg.SupportEmail),
	)
	projects := portfolio.NewService(store, portfolio.WithLogger(log))

	var rateCfg ratelimiter.Config
	if err := config.Load(&rateCfg); err != nil {
		return err
	}
	contactBucket, err := ratelimiter.NewBucket(rateStore, rateCfg)
	if err != nil {
		return err
	}
	byIP := func(r *http.Request) string {
		if ip := clientip.FromContext(r.Context()); ip != "" {
			return "contact:" + ip
		}
		return ""
	}

	siteOpts := []site.Option{
		site.WithLogger(log),
		site.WithContactLimiter(ratelimiter.Middleware(contactBucket, byIP, log)),
	}
	for name, check := range checks {
		siteOpts = append(siteOpts, site.WithHealthCheck(name, check))
	}

	authenticate := account.Authenticate(tokens, authCfg.CookieName, nil)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(environment.Middleware(env))
	site.New(catalog, contacts, projects, cookies, siteOpts...).Register(r)
	billing.New(billingCfg, provider.Name(), subscriptions, syncer, store, checker, cookies,
		billing.WithLogger(log),
	).Register(r, authenticate)

	var srvCfg httpserver.Config
	if err := config.Load(&srvCfg); err != nil {
		return err
	}
	return httpserver.NewFromConfig(srvCfg, httpserver.WithLogger(log)).Run(ctx, r)
}

func loadCatalog(ctx context.Context, cfg appConfig) (*plans.Catalog, error) {
	if cfg.PlansFile != "" {
		return plans.Load(ctx, plans.NewYAMLFileSource(cfg.PlansFile))
	}
	return plans.Load(ctx, plans.NewInMemSource(plans.DefaultPlans(cfg.MonthlyPriceRef, cfg.AnnualPriceRef)...))
}

func newProvider(name string) (pkgbilling.Provider, error) {
	switch name {
	case pkgbilling.ProcessorStripe:
		var c pkgbilling.StripeConfig
		if err := config.Load(&c); err != nil {
			return nil, err
		}
		p, err := pkgbilling.NewStripeProvider(c)
		if err != nil {
			return nil, err
		}
		return p, nil
	case pkgbilling.ProcessorPaddle:
		var c pkgbilling.PaddleConfig
		if err := config.Load(&c); err != nil {
			return nil, err
		}
		p, err := pkgbilling.NewPaddleProvider(c)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown payment processor %q", name)
	}
}
