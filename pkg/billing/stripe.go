package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	portalsession "github.com/stripe/stripe-go/v79/billingportal/session"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/subscription"
	"github.com/stripe/stripe-go/v79/webhook"
)

const ProcessorStripe = "stripe"

// StripeConfig holds configuration for the Stripe provider.
type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
}

// StripeProvider implements Provider on top of Stripe Checkout and the
// Stripe billing portal.
type StripeProvider struct {
	checkout      session.Client
	portal        portalsession.Client
	customers     customer.Client
	subscriptions subscription.Client
	webhookSecret string
}

// StripeOption configures a StripeProvider.
type StripeOption func(*stripeOptions)

type stripeOptions struct {
	backend stripe.Backend
}

// WithStripeBackend routes API calls through a custom backend, e.g. one
// pointed at a test server.
func WithStripeBackend(b stripe.Backend) StripeOption {
	return func(o *stripeOptions) {
		o.backend = b
	}
}

// NewStripeProvider creates a Stripe provider.
func NewStripeProvider(cfg StripeConfig, opts ...StripeOption) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	o := &stripeOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.backend == nil {
		o.backend = stripe.GetBackend(stripe.APIBackend)
	}

	return &StripeProvider{
		checkout:      session.Client{B: o.backend, Key: cfg.SecretKey},
		portal:        portalsession.Client{B: o.backend, Key: cfg.SecretKey},
		customers:     customer.Client{B: o.backend, Key: cfg.SecretKey},
		subscriptions: subscription.Client{B: o.backend, Key: cfg.SecretKey},
		webhookSecret: cfg.WebhookSecret,
	}, nil
}

func (p *StripeProvider) Name() string { return ProcessorStripe }

func (p *StripeProvider) CreateCustomer(ctx context.Context, req CustomerRequest) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(req.Email),
	}
	if req.Name != "" {
		params.Name = stripe.String(req.Name)
	}
	params.Context = ctx
	params.AddMetadata("user_id", req.UserID.String())

	c, err := p.customers.New(params)
	if err != nil {
		return "", errors.Join(ErrProvider, fmt.Errorf("create stripe customer: %w", err))
	}
	return c.ID, nil
}

// CreateCheckout opens a subscription-mode Checkout session for a single
// unit of the price. Promotion codes are accepted.
func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if req.PriceRef == "" {
		return nil, ErrMissingPriceRef
	}
	if req.CustomerID == "" {
		return nil, ErrMissingCustomerID
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(req.PriceRef),
			Quantity: stripe.Int64(1),
		}},
		AllowPromotionCodes: stripe.Bool(true),
		Customer:            stripe.String(req.CustomerID),
		ClientReferenceID:   stripe.String(req.UserID.String()),
		SuccessURL:          stripe.String(req.SuccessURL),
		CancelURL:           stripe.String(req.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": req.UserID.String()},
		},
	}
	params.Context = ctx

	s, err := p.checkout.New(params)
	if err != nil {
		return nil, errors.Join(ErrProvider, fmt.Errorf("create stripe checkout session: %w", err))
	}
	if s.URL == "" {
		return nil, ErrNoCheckoutURL
	}

	link := &CheckoutLink{URL: s.URL, SessionID: s.ID}
	if s.ExpiresAt > 0 {
		link.ExpiresAt = time.Unix(s.ExpiresAt, 0).UTC()
	}
	return link, nil
}

func (p *StripeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if sessionID == "" {
		return nil, ErrInvalidCheckoutSession
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.checkout.Get(sessionID, params)
	if err != nil {
		if isStripeInvalidRequest(err) {
			return nil, errors.Join(ErrInvalidCheckoutSession, err)
		}
		return nil, errors.Join(ErrProvider, fmt.Errorf("get stripe checkout session: %w", err))
	}

	out := &CheckoutSession{
		ID:                s.ID,
		PaymentStatus:     string(s.PaymentStatus),
		Status:            string(s.Status),
		ClientReferenceID: s.ClientReferenceID,
	}
	if s.Subscription != nil {
		out.SubscriptionID = s.Subscription.ID
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	return out, nil
}

func (p *StripeProvider) CreatePortalLink(ctx context.Context, req PortalRequest) (*PortalLink, error) {
	if req.CustomerID == "" {
		return nil, ErrMissingCustomerID
	}
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(req.CustomerID),
		ReturnURL: stripe.String(req.ReturnURL),
	}
	params.Context = ctx

	s, err := p.portal.New(params)
	if err != nil {
		return nil, errors.Join(ErrProvider, fmt.Errorf("create stripe portal session: %w", err))
	}
	if s.URL == "" {
		return nil, ErrNoPortalURL
	}
	return &PortalLink{URL: s.URL}, nil
}

func (p *StripeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*RemoteSubscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	s, err := p.subscriptions.Get(subscriptionID, params)
	if err != nil {
		if isStripeNotFound(err) {
			return nil, errors.Join(ErrSubscriptionNotFound, err)
		}
		return nil, errors.Join(ErrProvider, fmt.Errorf("get stripe subscription: %w", err))
	}
	return stripeSubscription(s), nil
}

func stripeSubscription(s *stripe.Subscription) *RemoteSubscription {
	out := &RemoteSubscription{
		ID:                 s.ID,
		Status:             Status(s.Status),
		Metadata:           s.Metadata,
		CurrentPeriodStart: unixTime(s.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(s.CurrentPeriodEnd),
		TrialEndsAt:        unixTime(s.TrialEnd),
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0].Price != nil {
		out.PriceRef = s.Items.Data[0].Price.ID
	}
	switch {
	case s.EndedAt > 0:
		out.EndsAt = unixTime(s.EndedAt)
	case s.CancelAt > 0:
		out.EndsAt = unixTime(s.CancelAt)
	case s.CancelAtPeriodEnd:
		out.EndsAt = unixTime(s.CurrentPeriodEnd)
	}
	return out
}

// ParseWebhook verifies the Stripe-Signature header and extracts the
// subscription id from subscription lifecycle events.
func (p *StripeProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Join(ErrWebhookVerificationFailed, err)
	}

	out := &WebhookEvent{
		ID:            evt.ID,
		Type:          mapStripeEventType(string(evt.Type)),
		ProviderEvent: string(evt.Type),
		Payload:       payload,
	}
	if out.Type == EventOther {
		return out, nil
	}

	if evt.Data == nil {
		return nil, ErrInvalidWebhookPayload
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(evt.Data.Raw, &obj); err != nil || obj.ID == "" {
		return nil, errors.Join(ErrInvalidWebhookPayload, err)
	}
	out.SubscriptionID = obj.ID
	return out, nil
}

func mapStripeEventType(t string) EventType {
	switch t {
	case "customer.subscription.created":
		return EventSubscriptionCreated
	case "customer.subscription.updated":
		return EventSubscriptionUpdated
	case "customer.subscription.deleted":
		return EventSubscriptionDeleted
	default:
		return EventOther
	}
}

func isStripeNotFound(err error) bool {
	var serr *stripe.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code == stripe.ErrorCodeResourceMissing || serr.HTTPStatusCode == 404
}

// isStripeInvalidRequest covers malformed ids as well as missing ones.
func isStripeInvalidRequest(err error) bool {
	var serr *stripe.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Type == stripe.ErrorTypeInvalidRequest || isStripeNotFound(err)
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
