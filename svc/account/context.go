package account

import (
	"context"

	"github.com/google/uuid"
)

type userIDKey struct{}

// WithUserID stores the acting user id in ctx.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserIDFromContext returns the acting user id, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// CurrentUser loads the user identified by ctx.
func CurrentUser(ctx context.Context, users Reader) (*User, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	return users.GetUser(ctx, id)
}
