package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/applytrack/pkg/pg"
	"github.com/dmitrymomot/applytrack/svc/account"
)

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*account.User, error) {
	var u account.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, plan, created_at, updated_at
		FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Tier, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, account.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *account.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Tier == "" {
		u.Tier = account.TierFree
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name, plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.FirstName, u.LastName, u.Tier, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) SetTier(ctx context.Context, id uuid.UUID, tier account.Tier) error {
	if !tier.Valid() {
		return account.ErrInvalidTier
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET plan = $1, updated_at = now() WHERE id = $2`, tier, id)
	if err != nil {
		return fmt.Errorf("set tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrUserNotFound
	}
	return nil
}
