package usage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/applytrack/pkg/logger"
	"github.com/dmitrymomot/applytrack/pkg/validator"
)

// Ledger appends usage events and sums them on demand. It keeps no counters;
// every answer is derived from the stored events.
type Ledger struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

func WithLogger(l *slog.Logger) Option {
	return func(led *Ledger) {
		if l != nil {
			led.logger = l
		}
	}
}

// WithClock overrides the time source used for event timestamps and windows.
func WithClock(now func() time.Time) Option {
	return func(led *Ledger) {
		if now != nil {
			led.now = now
		}
	}
}

// NewLedger panics on a nil store.
func NewLedger(store Store, opts ...Option) *Ledger {
	if store == nil {
		panic("usage: store is required")
	}
	l := &Ledger{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type recordOptions struct {
	count    int64
	metadata Metadata
}

// RecordOption customizes a single Record call.
type RecordOption func(*recordOptions)

// WithCount sets the number of units consumed. Defaults to 1.
func WithCount(n int64) RecordOption {
	return func(o *recordOptions) { o.count = n }
}

func WithMetadata(m Metadata) RecordOption {
	return func(o *recordOptions) { o.metadata = m }
}

// Record appends one event. It fails with ErrInvalidEvent, joined with the
// field errors, when the user id is nil, the feature is unknown or the count
// is not positive.
func (l *Ledger) Record(ctx context.Context, userID uuid.UUID, feature Feature, opts ...RecordOption) (Event, error) {
	o := recordOptions{count: 1}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validator.Apply(
		validator.RequiredUUID("user_id", userID),
		validator.Required("event_type", string(feature)),
		validator.Check("event_type", feature == "" || feature.Valid(), "is not a metered feature"),
		validator.Positive("count", o.count),
	); err != nil {
		return Event{}, errors.Join(ErrInvalidEvent, err)
	}

	e := Event{
		ID:        uuid.New(),
		UserID:    userID,
		Feature:   feature,
		Count:     o.count,
		Metadata:  o.metadata,
		CreatedAt: l.now().UTC(),
	}
	if err := l.store.Append(ctx, e); err != nil {
		return Event{}, errors.Join(ErrStore, fmt.Errorf("append %s: %w", feature, err))
	}

	l.logger.DebugContext(ctx, "usage recorded",
		logger.UserID(userID),
		logger.Feature(string(feature)),
		slog.Int64("count", e.Count),
	)
	return e, nil
}

// UsageFor returns the all-time number of units of feature consumed by userID.
func (l *Ledger) UsageFor(ctx context.Context, userID uuid.UUID, feature Feature) (int64, error) {
	return l.UsageSince(ctx, userID, feature, time.Time{})
}

// UsageSince sums events created at or after since.
func (l *Ledger) UsageSince(ctx context.Context, userID uuid.UUID, feature Feature, since time.Time) (int64, error) {
	n, err := l.store.Sum(ctx, Query{UserID: userID, Feature: feature, Since: since})
	if err != nil {
		return 0, errors.Join(ErrStore, fmt.Errorf("sum %s: %w", feature, err))
	}
	return n, nil
}

// UsageIn sums events within the window containing the current time.
func (l *Ledger) UsageIn(ctx context.Context, userID uuid.UUID, feature Feature, w Window) (int64, error) {
	return l.UsageSince(ctx, userID, feature, w.Start(l.now()))
}

// History returns up to limit of the user's most recent events.
func (l *Ledger) History(ctx context.Context, userID uuid.UUID, limit int) ([]Event, error) {
	events, err := l.store.List(ctx, userID, limit)
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	return events, nil
}
