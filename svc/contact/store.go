package contact

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Store persists contact messages.
type Store interface {
	CreateMessage(ctx context.Context, m *Message) error
	GetMessage(ctx context.Context, id uuid.UUID) (*Message, error)
	// ListMessages returns newest first. An empty status lists all.
	ListMessages(ctx context.Context, status Status, limit int) ([]Message, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

// MemoryStore is a Store for tests and local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CreateMessage(ctx context.Context, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, *m)
	return nil
}

func (s *MemoryStore) GetMessage(ctx context.Context, id uuid.UUID) (*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.messages {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, ErrMessageNotFound
}

func (s *MemoryStore) ListMessages(ctx context.Context, status Status, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, 0, len(s.messages))
	for _, m := range slices.Backward(s.messages) {
		if status != "" && m.Status != status {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Status = status
			return nil
		}
	}
	return ErrMessageNotFound
}
