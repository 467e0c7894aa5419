package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/applytrack/pkg/pg"
	"github.com/dmitrymomot/applytrack/svc/contact"
)

func (s *Store) CreateMessage(ctx context.Context, m *contact.Message) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.Name, m.Email, m.Subject, m.Message, m.Status, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create contact message: %w", err)
	}
	return nil
}

const contactColumns = `id, name, email, subject, message, status, created_at, updated_at`

func scanMessage(row pgx.Row) (contact.Message, error) {
	var m contact.Message
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (s *Store) GetMessage(ctx context.Context, id uuid.UUID) (*contact.Message, error) {
	m, err := scanMessage(s.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contact_messages WHERE id = $1`, id))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, contact.ErrMessageNotFound
		}
		return nil, fmt.Errorf("get contact message: %w", err)
	}
	return &m, nil
}

func (s *Store) ListMessages(ctx context.Context, status contact.Status, limit int) ([]contact.Message, error) {
	sql := `SELECT ` + contactColumns + ` FROM contact_messages WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC`
	args := []any{string(status)}
	if limit > 0 {
		sql += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (contact.Message, error) {
		return scanMessage(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return msgs, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status contact.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE contact_messages SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update contact status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrMessageNotFound
	}
	return nil
}
