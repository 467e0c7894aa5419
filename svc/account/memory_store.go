package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps users in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

func NewMemoryStore(users ...User) *MemoryStore {
	s := &MemoryStore{users: make(map[uuid.UUID]User, len(users))}
	for _, u := range users {
		if u.Tier == "" {
			u.Tier = TierFree
		}
		s.users[u.ID] = u
	}
	return s
}

func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Tier == "" {
		u.Tier = TierFree
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) SetTier(ctx context.Context, id uuid.UUID, tier Tier) error {
	if !tier.Valid() {
		return ErrInvalidTier
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Tier = tier
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}
