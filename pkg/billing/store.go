package billing

import (
	"context"

	"github.com/google/uuid"
)

type CustomerStore interface {
	SaveCustomer(ctx context.Context, c Customer) error
	// CustomerByUser and CustomerByID return ErrCustomerNotFound when no
	// mapping exists.
	CustomerByUser(ctx context.Context, processor string, userID uuid.UUID) (*Customer, error)
	CustomerByID(ctx context.Context, processor, customerID string) (*Customer, error)
}

type SubscriptionStore interface {
	// SaveSubscription upserts on (Processor, ProcessorID).
	SaveSubscription(ctx context.Context, s *Subscription) error
	SubscriptionsByUser(ctx context.Context, userID uuid.UUID) ([]Subscription, error)
}

type WebhookLog interface {
	RecordWebhook(ctx context.Context, r WebhookRecord) error
}

// Store bundles the persistence billing needs.
type Store interface {
	CustomerStore
	SubscriptionStore
	WebhookLog
}
