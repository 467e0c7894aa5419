// Package entitlement decides whether a user may consume a metered feature
// under their plan, and meters actions that succeed.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/applytrack/pkg/logger"
	"github.com/dmitrymomot/applytrack/pkg/plans"
	"github.com/dmitrymomot/applytrack/pkg/usage"
)

// Ledger is the part of usage.Ledger the checker depends on.
type Ledger interface {
	UsageFor(ctx context.Context, userID uuid.UUID, feature usage.Feature) (int64, error)
	Record(ctx context.Context, userID uuid.UUID, feature usage.Feature, opts ...usage.RecordOption) (usage.Event, error)
}

// Checker combines the plan catalog with recorded usage. Quotas are compared
// against all-time usage.
type Checker struct {
	catalog *plans.Catalog
	ledger  Ledger
	resolve PlanResolver
	locker  Locker
	logger  *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLocker serializes Gate calls per user and feature so concurrent
// requests cannot both pass the check for the last unit of quota.
func WithLocker(l Locker) Option {
	return func(c *Checker) { c.locker = l }
}

// NewChecker fails when a metered feature has no limit key.
func NewChecker(catalog *plans.Catalog, ledger Ledger, resolve PlanResolver, opts ...Option) (*Checker, error) {
	if catalog == nil || ledger == nil || resolve == nil {
		panic("entitlement: catalog, ledger and resolver are required")
	}
	if err := checkAliases(usage.Features()); err != nil {
		return nil, err
	}

	c := &Checker{
		catalog: catalog,
		ledger:  ledger,
		resolve: resolve,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, f := range usage.Features() {
		if !c.keyInCatalog(LimitKeyFor(f)) {
			c.logger.Warn("metered feature is not granted by any plan",
				logger.Component("entitlement"),
				logger.Feature(string(f)),
			)
		}
	}
	return c, nil
}

func (c *Checker) keyInCatalog(key plans.LimitKey) bool {
	for _, p := range c.catalog.Plans() {
		if _, ok := p.Feature(key); ok {
			return true
		}
	}
	return false
}

// LimitFor returns the user's quota for feature, plans.Unlimited, or 0 when
// the plan does not grant it.
func (c *Checker) LimitFor(ctx context.Context, userID uuid.UUID, feature usage.Feature) (int64, error) {
	planID, err := c.resolve(ctx, userID)
	if err != nil {
		return 0, err
	}
	return c.catalog.FeatureLimit(planID, LimitKeyFor(feature)), nil
}

// CanUse reports whether consuming count more units keeps the user within
// quota. Unlimited quotas skip the usage read.
func (c *Checker) CanUse(ctx context.Context, userID uuid.UUID, feature usage.Feature, count int64) (bool, error) {
	if count <= 0 {
		return false, ErrInvalidCount
	}
	limit, err := c.LimitFor(ctx, userID, feature)
	if err != nil {
		return false, err
	}
	if limit == plans.Unlimited {
		return true, nil
	}
	used, err := c.ledger.UsageFor(ctx, userID, feature)
	if err != nil {
		return false, errors.Join(ErrReadUsage, err)
	}
	return used+count <= limit, nil
}

// RemainingUsage returns how many units are left, never negative, or
// plans.Unlimited.
func (c *Checker) RemainingUsage(ctx context.Context, userID uuid.UUID, feature usage.Feature) (int64, error) {
	limit, err := c.LimitFor(ctx, userID, feature)
	if err != nil {
		return 0, err
	}
	if limit == plans.Unlimited {
		return plans.Unlimited, nil
	}
	used, err := c.ledger.UsageFor(ctx, userID, feature)
	if err != nil {
		return 0, errors.Join(ErrReadUsage, err)
	}
	return max(limit-used, 0), nil
}

// FeatureUsage is one row of a usage summary.
type FeatureUsage struct {
	Feature   usage.Feature  `json:"feature"`
	LimitKey  plans.LimitKey `json:"limit_key"`
	Used      int64          `json:"used"`
	Limit     int64          `json:"limit"`
	Remaining int64          `json:"remaining"`
	Unlimited bool           `json:"unlimited"`
}

// Summary reports usage against quota for every metered feature.
func (c *Checker) Summary(ctx context.Context, userID uuid.UUID) ([]FeatureUsage, error) {
	planID, err := c.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	features := usage.Features()
	out := make([]FeatureUsage, 0, len(features))
	for _, f := range features {
		key := LimitKeyFor(f)
		used, err := c.ledger.UsageFor(ctx, userID, f)
		if err != nil {
			return nil, errors.Join(ErrReadUsage, fmt.Errorf("%s: %w", f, err))
		}
		limit := c.catalog.FeatureLimit(planID, key)
		row := FeatureUsage{Feature: f, LimitKey: key, Used: used, Limit: limit}
		if limit == plans.Unlimited {
			row.Unlimited = true
			row.Remaining = plans.Unlimited
		} else {
			row.Remaining = max(limit-used, 0)
		}
		out = append(out, row)
	}
	return out, nil
}
