package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/applytrack/pkg/usage"
)

func (s *Store) Append(ctx context.Context, e usage.Event) error {
	meta := e.Metadata
	if meta == nil {
		meta = usage.Metadata{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO usage_events (id, user_id, feature, count, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.UserID, e.Feature, e.Count, meta, e.CreatedAt,
	)
	if err != nil {
		return errors.Join(usage.ErrStore, err)
	}
	return nil
}

func (s *Store) Sum(ctx context.Context, q usage.Query) (int64, error) {
	sql := `SELECT COALESCE(SUM(count), 0)::BIGINT FROM usage_events WHERE user_id = $1 AND feature = $2`
	args := []any{q.UserID, q.Feature}
	if !q.Since.IsZero() {
		sql += ` AND created_at >= $3`
		args = append(args, q.Since)
	}

	var total int64
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, errors.Join(usage.ErrStore, err)
	}
	return total, nil
}

// List returns the newest events first.
func (s *Store) List(ctx context.Context, userID uuid.UUID, limit int) ([]usage.Event, error) {
	sql := `
		SELECT id, user_id, feature, count, metadata, created_at
		FROM usage_events WHERE user_id = $1
		ORDER BY created_at DESC, id`
	args := []any{userID}
	if limit > 0 {
		sql += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Join(usage.ErrStore, err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (usage.Event, error) {
		var e usage.Event
		err := row.Scan(&e.ID, &e.UserID, &e.Feature, &e.Count, &e.Metadata, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, errors.Join(usage.ErrStore, fmt.Errorf("list usage: %w", err))
	}
	return events, nil
}
