package usage

import (
	"context"

	"github.com/google/uuid"
)

// Store persists ledger events. Implementations must be safe for concurrent
// use and must never modify stored events.
type Store interface {
	Append(ctx context.Context, e Event) error
	Sum(ctx context.Context, q Query) (int64, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]Event, error)
}
