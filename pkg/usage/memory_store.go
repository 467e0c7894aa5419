package usage

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps events in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.Metadata = maps.Clone(e.Metadata)
	s.events = append(s.events, e)
	return nil
}

func (s *MemoryStore) Sum(ctx context.Context, q Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, e := range s.events {
		if e.UserID != q.UserID || e.Feature != q.Feature {
			continue
		}
		if !q.Since.IsZero() && e.CreatedAt.Before(q.Since) {
			continue
		}
		total += e.Count
	}
	return total, nil
}

// List returns the newest events first.
func (s *MemoryStore) List(ctx context.Context, userID uuid.UUID, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range slices.Backward(s.events) {
		if e.UserID != userID {
			continue
		}
		e.Metadata = maps.Clone(e.Metadata)
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
