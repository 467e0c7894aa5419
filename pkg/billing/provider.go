package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Provider is a payment processor integration. Checkout and portal are hosted
// by the processor; the provider only creates sessions and reads state.
type Provider interface {
	// Name identifies the processor in stored records, e.g. "stripe".
	Name() string

	CreateCustomer(ctx context.Context, req CustomerRequest) (customerID string, err error)
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)

	// GetCheckoutSession returns ErrInvalidCheckoutSession for unknown ids.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	CreatePortalLink(ctx context.Context, req PortalRequest) (*PortalLink, error)

	// GetSubscription returns ErrSubscriptionNotFound when the processor
	// does not know the id.
	GetSubscription(ctx context.Context, subscriptionID string) (*RemoteSubscription, error)

	// ParseWebhook verifies the signature and normalizes the event.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

type CustomerRequest struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// CheckoutRequest describes a one-item subscription checkout.
type CheckoutRequest struct {
	PriceRef   string
	CustomerID string
	UserID     uuid.UUID // sent as the client reference
	SuccessURL string
	CancelURL  string
}

type CheckoutLink struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

const (
	PaymentStatusPaid     = "paid"
	SessionStatusComplete = "complete"
)

// CheckoutSession is the processor's view of a finished or pending checkout.
type CheckoutSession struct {
	ID                string
	PaymentStatus     string
	Status            string
	SubscriptionID    string
	CustomerID        string
	ClientReferenceID string
}

// Paid reports a checkout that was both paid and completed.
func (s CheckoutSession) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid && s.Status == SessionStatusComplete
}

type PortalRequest struct {
	CustomerID     string
	SubscriptionID string
	ReturnURL      string
}

type PortalLink struct {
	URL       string
	ExpiresAt time.Time
}

// RemoteSubscription is a subscription as fetched from the processor.
type RemoteSubscription struct {
	ID                 string
	CustomerID         string
	PriceRef           string
	Status             Status
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	TrialEndsAt        *time.Time
	EndsAt             *time.Time
	Metadata           map[string]string
}

// EventType is a normalized webhook event type.
type EventType string

const (
	EventSubscriptionCreated EventType = "subscription_created"
	EventSubscriptionUpdated EventType = "subscription_updated"
	EventSubscriptionDeleted EventType = "subscription_deleted"
	EventOther               EventType = "other"
)

// Trigger maps the event onto a sync trigger. Other events have none.
func (t EventType) Trigger() (Trigger, bool) {
	switch t {
	case EventSubscriptionCreated:
		return TriggerCreated, true
	case EventSubscriptionUpdated:
		return TriggerUpdated, true
	case EventSubscriptionDeleted:
		return TriggerDeleted, true
	}
	return "", false
}

// WebhookEvent is a verified, normalized webhook delivery.
type WebhookEvent struct {
	ID             string
	Type           EventType
	ProviderEvent  string
	SubscriptionID string
	Payload        []byte
}

// SignatureHeader names the request header carrying the webhook signature
// of processor.
func SignatureHeader(processor string) string {
	if processor == ProcessorPaddle {
		return "Paddle-Signature"
	}
	return "Stripe-Signature"
}
