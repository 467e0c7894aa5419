package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/applytrack/pkg/billing"
	"github.com/dmitrymomot/applytrack/pkg/pg"
)

func (s *Store) SaveCustomer(ctx context.Context, c billing.Customer) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO billing_customers (processor, customer_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (processor, customer_id) DO UPDATE SET user_id = EXCLUDED.user_id`,
		c.Processor, c.CustomerID, c.UserID, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save customer: %w", err)
	}
	return nil
}

func (s *Store) CustomerByUser(ctx context.Context, processor string, userID uuid.UUID) (*billing.Customer, error) {
	return s.customer(ctx, `
		SELECT processor, customer_id, user_id, created_at
		FROM billing_customers WHERE processor = $1 AND user_id = $2`, processor, userID)
}

func (s *Store) CustomerByID(ctx context.Context, processor, customerID string) (*billing.Customer, error) {
	return s.customer(ctx, `
		SELECT processor, customer_id, user_id, created_at
		FROM billing_customers WHERE processor = $1 AND customer_id = $2`, processor, customerID)
}

func (s *Store) customer(ctx context.Context, sql string, args ...any) (*billing.Customer, error) {
	var c billing.Customer
	err := s.pool.QueryRow(ctx, sql, args...).Scan(&c.Processor, &c.CustomerID, &c.UserID, &c.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, billing.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// SaveSubscription upserts on (processor, processor_id) and writes back the
// stored id and timestamps. Zero timestamps default to the current time.
func (s *Store) SaveSubscription(ctx context.Context, sub *billing.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = now
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (
			id, processor, processor_id, user_id, customer_id, price_ref, status,
			current_period_start, current_period_end, trial_ends_at, ends_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (processor, processor_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			customer_id = EXCLUDED.customer_id,
			price_ref = EXCLUDED.price_ref,
			status = EXCLUDED.status,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			trial_ends_at = EXCLUDED.trial_ends_at,
			ends_at = EXCLUDED.ends_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`,
		sub.ID, sub.Processor, sub.ProcessorID, sub.UserID, sub.CustomerID, sub.PriceRef, sub.Status,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.TrialEndsAt, sub.EndsAt, sub.CreatedAt, sub.UpdatedAt,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

// SubscriptionsByUser returns the newest subscriptions first.
func (s *Store) SubscriptionsByUser(ctx context.Context, userID uuid.UUID) ([]billing.Subscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, processor, processor_id, user_id, customer_id, price_ref, status,
			current_period_start, current_period_end, trial_ends_at, ends_at, created_at, updated_at
		FROM subscriptions WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	subs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (billing.Subscription, error) {
		var sub billing.Subscription
		err := row.Scan(&sub.ID, &sub.Processor, &sub.ProcessorID, &sub.UserID, &sub.CustomerID, &sub.PriceRef, &sub.Status,
			&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.TrialEndsAt, &sub.EndsAt, &sub.CreatedAt, &sub.UpdatedAt)
		return sub, err
	})
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

func (s *Store) RecordWebhook(ctx context.Context, r billing.WebhookRecord) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO webhook_events (id, processor, event_id, event_type, payload, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.Processor, r.EventID, r.EventType, string(r.Payload), r.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("record webhook: %w", err)
	}
	return nil
}
