// Package postgres implements the application stores on PostgreSQL via pgx.
package postgres

import (
	"context"
	"embed"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/applytrack/pkg/billing"
	"github.com/dmitrymomot/applytrack/pkg/pg"
	"github.com/dmitrymomot/applytrack/pkg/usage"
	"github.com/dmitrymomot/applytrack/svc/account"
	"github.com/dmitrymomot/applytrack/svc/contact"
	"github.com/dmitrymomot/applytrack/svc/portfolio"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	_ account.Store   = (*Store)(nil)
	_ usage.Store     = (*Store)(nil)
	_ billing.Store   = (*Store)(nil)
	_ contact.Store   = (*Store)(nil)
	_ portfolio.Store = (*Store)(nil)
)

// Store implements every persistence interface of the application on one
// connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("postgres: pool is required")
	}
	return &Store{pool: pool}
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context, cfg pg.Config, log *slog.Logger) error {
	return pg.Migrate(ctx, s.pool, migrations, "migrations", cfg, log)
}
