package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

const ProcessorPaddle = "paddle"

// PaddleConfig holds configuration for the Paddle provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements Provider for Paddle Billing. Paddle has no
// checkout session object; the checkout transaction plays that role.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
}

// NewPaddleProvider creates a Paddle provider.
func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	var (
		client *paddle.SDK
		err    error
	)
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidProviderEnvironment, cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(cfg.WebhookSecret),
	}, nil
}

func (p *PaddleProvider) Name() string { return ProcessorPaddle }

func (p *PaddleProvider) CreateCustomer(ctx context.Context, req CustomerRequest) (string, error) {
	creq := &paddle.CreateCustomerRequest{
		Email:      req.Email,
		CustomData: paddle.CustomData{"user_id": req.UserID.String()},
	}
	if req.Name != "" {
		creq.Name = paddle.PtrTo(req.Name)
	}

	c, err := p.client.CustomersClient.CreateCustomer(ctx, creq)
	if err != nil {
		return "", errors.Join(ErrProvider, fmt.Errorf("create paddle customer: %w", err))
	}
	return c.ID, nil
}

// CreateCheckout creates a checkout transaction for one unit of the price.
// The user id travels in custom data as the client reference.
func (p *PaddleProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if req.PriceRef == "" {
		return nil, ErrMissingPriceRef
	}
	if req.CustomerID == "" {
		return nil, ErrMissingCustomerID
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceRef,
		Quantity: 1,
	})
	treq := &paddle.CreateTransactionRequest{
		Items:      []paddle.CreateTransactionItems{*item},
		CustomerID: paddle.PtrTo(req.CustomerID),
		CustomData: paddle.CustomData{
			"client_reference_id": req.UserID.String(),
			"user_id":             req.UserID.String(),
		},
	}
	if req.SuccessURL != "" {
		treq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(req.SuccessURL),
		}
	}

	txn, err := p.client.TransactionsClient.CreateTransaction(ctx, treq)
	if err != nil {
		return nil, errors.Join(ErrProvider, fmt.Errorf("create paddle transaction: %w", err))
	}
	if txn.Checkout == nil || txn.Checkout.URL == nil || *txn.Checkout.URL == "" {
		return nil, ErrNoCheckoutURL
	}

	return &CheckoutLink{
		URL:       *txn.Checkout.URL,
		SessionID: txn.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// GetCheckoutSession reads the checkout transaction. A completed
// transaction is reported as a paid, complete session.
func (p *PaddleProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if sessionID == "" {
		return nil, ErrInvalidCheckoutSession
	}

	txn, err := p.client.TransactionsClient.GetTransaction(ctx, &paddle.GetTransactionRequest{
		TransactionID: sessionID,
	})
	if err != nil {
		if isPaddleNotFound(err) {
			return nil, errors.Join(ErrInvalidCheckoutSession, err)
		}
		return nil, errors.Join(ErrProvider, fmt.Errorf("get paddle transaction: %w", err))
	}

	out := &CheckoutSession{ID: txn.ID}
	out.PaymentStatus, out.Status = mapPaddleTransactionStatus(string(txn.Status))
	if txn.SubscriptionID != nil {
		out.SubscriptionID = *txn.SubscriptionID
	}
	if txn.CustomerID != nil {
		out.CustomerID = *txn.CustomerID
	}
	if ref, ok := txn.CustomData["client_reference_id"].(string); ok {
		out.ClientReferenceID = ref
	}
	return out, nil
}

func (p *PaddleProvider) CreatePortalLink(ctx context.Context, req PortalRequest) (*PortalLink, error) {
	if req.CustomerID == "" {
		return nil, ErrMissingCustomerID
	}

	preq := &paddle.CreateCustomerPortalSessionRequest{CustomerID: req.CustomerID}
	if req.SubscriptionID != "" {
		preq.SubscriptionIDs = []string{req.SubscriptionID}
	}

	ps, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, preq)
	if err != nil {
		return nil, errors.Join(ErrProvider, fmt.Errorf("create paddle portal session: %w", err))
	}
	if ps.URLs.General.Overview == "" {
		return nil, ErrNoPortalURL
	}
	return &PortalLink{
		URL:       ps.URLs.General.Overview,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

func (p *PaddleProvider) GetSubscription(ctx context.Context, subscriptionID string) (*RemoteSubscription, error) {
	sub, err := p.client.SubscriptionsClient.GetSubscription(ctx, &paddle.GetSubscriptionRequest{
		SubscriptionID: subscriptionID,
	})
	if err != nil {
		if isPaddleNotFound(err) {
			return nil, errors.Join(ErrSubscriptionNotFound, err)
		}
		return nil, errors.Join(ErrProvider, fmt.Errorf("get paddle subscription: %w", err))
	}

	out := &RemoteSubscription{
		ID:         sub.ID,
		CustomerID: sub.CustomerID,
		Status:     mapPaddleStatus(string(sub.Status)),
		Metadata:   make(map[string]string, len(sub.CustomData)),
		EndsAt:     parsePaddleTime(sub.CanceledAt),
	}
	for k, v := range sub.CustomData {
		if s, ok := v.(string); ok {
			out.Metadata[k] = s
		}
	}
	if len(sub.Items) > 0 {
		out.PriceRef = sub.Items[0].Price.ID
	}
	if sub.CurrentBillingPeriod != nil {
		out.CurrentPeriodStart = parsePaddleTime(&sub.CurrentBillingPeriod.StartsAt)
		out.CurrentPeriodEnd = parsePaddleTime(&sub.CurrentBillingPeriod.EndsAt)
		if out.Status == StatusTrialing {
			out.TrialEndsAt = out.CurrentPeriodEnd
		}
	}
	if sub.ScheduledChange != nil && string(sub.ScheduledChange.Action) == "cancel" {
		out.EndsAt = parsePaddleTime(&sub.ScheduledChange.EffectiveAt)
	}
	return out, nil
}

// ParseWebhook verifies the Paddle-Signature header and extracts the
// subscription id from subscription lifecycle events.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for verification: %w", err)
	}
	req.Header.Set("Paddle-Signature", signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, errors.Join(ErrWebhookVerificationFailed, err)
	}
	if !valid {
		return nil, ErrWebhookVerificationFailed
	}

	var evt struct {
		EventID   string `json:"event_id"`
		EventType string `json:"event_type"`
		Data      struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, errors.Join(ErrInvalidWebhookPayload, err)
	}

	out := &WebhookEvent{
		ID:            evt.EventID,
		Type:          mapPaddleEventType(evt.EventType),
		ProviderEvent: evt.EventType,
		Payload:       payload,
	}
	if out.Type != EventOther {
		if evt.Data.ID == "" {
			return nil, ErrInvalidWebhookPayload
		}
		out.SubscriptionID = evt.Data.ID
	}
	return out, nil
}

func mapPaddleEventType(t string) EventType {
	switch t {
	case "subscription.created":
		return EventSubscriptionCreated
	case "subscription.updated", "subscription.activated", "subscription.past_due",
		"subscription.paused", "subscription.resumed", "subscription.trialing":
		return EventSubscriptionUpdated
	case "subscription.canceled":
		return EventSubscriptionDeleted
	default:
		return EventOther
	}
}

func mapPaddleStatus(s string) Status {
	switch strings.ToLower(s) {
	case "canceled", "cancelled":
		return StatusCanceled
	default:
		return Status(strings.ToLower(s))
	}
}

func mapPaddleTransactionStatus(s string) (payment, status string) {
	switch s {
	case "completed", "paid":
		return PaymentStatusPaid, SessionStatusComplete
	case "canceled":
		return "unpaid", "expired"
	default:
		return "unpaid", "open"
	}
}

func isPaddleNotFound(err error) bool {
	return strings.Contains(err.Error(), "not_found")
}

func parsePaddleTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
