package billing

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu            sync.RWMutex
	customers     map[string]Customer     // processor/customerID
	subscriptions map[string]Subscription // processor/processorID
	webhooks      []WebhookRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers:     make(map[string]Customer),
		subscriptions: make(map[string]Subscription),
	}
}

func key(processor, id string) string { return processor + "/" + id }

func (m *MemoryStore) SaveCustomer(ctx context.Context, c Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.customers[key(c.Processor, c.CustomerID)] = c
	return nil
}

func (m *MemoryStore) CustomerByUser(ctx context.Context, processor string, userID uuid.UUID) (*Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.customers {
		if c.Processor == processor && c.UserID == userID {
			return &c, nil
		}
	}
	return nil, ErrCustomerNotFound
}

func (m *MemoryStore) CustomerByID(ctx context.Context, processor, customerID string) (*Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[key(processor, customerID)]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return &c, nil
}

func (m *MemoryStore) SaveSubscription(ctx context.Context, s *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	k := key(s.Processor, s.ProcessorID)
	if existing, ok := m.subscriptions[k]; ok {
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
	} else {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	m.subscriptions[k] = *s
	return nil
}

// SubscriptionsByUser returns the newest subscriptions first.
func (m *MemoryStore) SubscriptionsByUser(ctx context.Context, userID uuid.UUID) ([]Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Subscription
	for _, s := range m.subscriptions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b Subscription) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *MemoryStore) RecordWebhook(ctx context.Context, r WebhookRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	m.webhooks = append(m.webhooks, r)
	return nil
}

// Webhooks returns a copy of the recorded webhooks.
func (m *MemoryStore) Webhooks() []WebhookRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.webhooks)
}
