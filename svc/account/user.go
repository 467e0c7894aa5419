// Package account holds the user record the billing and entitlement layers
// act on, and resolves the acting user of a request.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tier is the plan tier stored on a user.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

func (t Tier) Valid() bool { return t == TierFree || t == TierPro }

var (
	ErrUserNotFound = errors.New("account: user not found")
	ErrInvalidTier  = errors.New("account: invalid plan tier")
	ErrUnauthorized = errors.New("account: unauthorized")
)

// User is a registered account. New users start on TierFree.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Tier      Tier      `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Name joins first and last name, trimming the gap when either is missing.
func (u User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsPro reports whether the stored tier is pro. It does not consult the
// subscription mirror.
func (u User) IsPro() bool { return u.Tier == TierPro }

// Reader loads users.
type Reader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
}

// TierWriter changes a user's tier. Only the subscription sync and admin
// tooling call it.
type TierWriter interface {
	SetTier(ctx context.Context, id uuid.UUID, tier Tier) error
}

// Store is the full persistence contract for users.
type Store interface {
	Reader
	TierWriter
	CreateUser(ctx context.Context, u *User) error
}
