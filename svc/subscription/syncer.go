// Package subscription keeps user plan tiers in step with payment processor
// subscriptions and drives the checkout and billing portal flows.
package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/applytrack/pkg/billing"
	"github.com/dmitrymomot/applytrack/pkg/logger"
	"github.com/dmitrymomot/applytrack/svc/account"
)

// Syncer re-derives a user's tier from the processor's view of a
// subscription. It never trusts event payloads for state; every sync
// re-fetches the subscription first.
type Syncer struct {
	provider billing.Provider
	store    billing.Store
	users    account.TierWriter
	logger   *slog.Logger
	now      func() time.Time
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

func WithSyncerLogger(l *slog.Logger) SyncerOption {
	return func(s *Syncer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for mirror timestamps.
func WithClock(now func() time.Time) SyncerOption {
	return func(s *Syncer) {
		if now != nil {
			s.now = now
		}
	}
}

func NewSyncer(provider billing.Provider, store billing.Store, users account.TierWriter, opts ...SyncerOption) *Syncer {
	if provider == nil || store == nil || users == nil {
		panic("subscription: provider, store and user tier writer are required")
	}
	s := &Syncer{
		provider: provider,
		store:    store,
		users:    users,
		logger:   slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("subscription_sync"), logger.Processor(provider.Name()))
	return s
}

// Sync fetches the subscription from the processor, resolves its owner
// through the customer mapping and upserts the local mirror. Subscriptions
// the processor does not know, or whose customer is not mapped to a user,
// yield ErrUnknownSubscription.
func (s *Syncer) Sync(ctx context.Context, subscriptionID string) (*billing.Subscription, error) {
	remote, err := s.provider.GetSubscription(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, billing.ErrSubscriptionNotFound) {
			return nil, errors.Join(ErrUnknownSubscription, err)
		}
		return nil, err
	}

	cust, err := s.store.CustomerByID(ctx, s.provider.Name(), remote.CustomerID)
	if err != nil {
		if errors.Is(err, billing.ErrCustomerNotFound) {
			return nil, errors.Join(ErrUnknownSubscription, err)
		}
		return nil, err
	}

	now := s.now().UTC()
	sub := &billing.Subscription{
		Processor:          s.provider.Name(),
		ProcessorID:        remote.ID,
		UserID:             cust.UserID,
		CustomerID:         remote.CustomerID,
		PriceRef:           remote.PriceRef,
		Status:             remote.Status,
		CurrentPeriodStart: remote.CurrentPeriodStart,
		CurrentPeriodEnd:   remote.CurrentPeriodEnd,
		TrialEndsAt:        remote.TrialEndsAt,
		EndsAt:             remote.EndsAt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.SaveSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Apply syncs the subscription named by a lifecycle event and updates the
// owner's tier. Unknown subscriptions and other event types are ignored.
func (s *Syncer) Apply(ctx context.Context, evt *billing.WebhookEvent) error {
	trigger, ok := evt.Type.Trigger()
	if !ok {
		s.logger.DebugContext(ctx, "ignoring webhook event",
			logger.EventID(evt.ID), logger.EventType(evt.ProviderEvent))
		return nil
	}

	sub, err := s.Sync(ctx, evt.SubscriptionID)
	if err != nil {
		if errors.Is(err, ErrUnknownSubscription) {
			s.logger.InfoContext(ctx, "skipping event for unknown subscription",
				logger.EventID(evt.ID),
				logger.EventType(evt.ProviderEvent),
				logger.SubscriptionID(evt.SubscriptionID))
			return nil
		}
		return err
	}

	_, err = s.transition(ctx, trigger, sub)
	return err
}

// HandleWebhook verifies and parses a delivery, records it for audit and
// applies it.
func (s *Syncer) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}

	if err := s.store.RecordWebhook(ctx, billing.WebhookRecord{
		Processor:  s.provider.Name(),
		EventID:    evt.ID,
		EventType:  evt.ProviderEvent,
		Payload:    evt.Payload,
		ReceivedAt: s.now(),
	}); err != nil {
		return errors.Join(ErrRecordWebhook, err)
	}

	return s.Apply(ctx, evt)
}

// ConfirmCheckout grants access right after a checkout redirect instead of
// waiting for the webhook. It never fails; every path ends in an Outcome.
func (s *Syncer) ConfirmCheckout(ctx context.Context, userID uuid.UUID, sessionID string) Outcome {
	log := s.logger.With(logger.UserID(userID))

	if sessionID == "" {
		return alert(MsgInvalidSession)
	}

	session, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		log.ErrorContext(ctx, "failed to retrieve checkout session", logger.Error(err))
		if errors.Is(err, billing.ErrInvalidCheckoutSession) {
			return alert(MsgInvalidSession)
		}
		return alert(MsgPaymentError)
	}

	if !session.Paid() {
		return alert(MsgPaymentIncomplete)
	}
	if session.SubscriptionID == "" {
		return notice(MsgProcessing)
	}

	sub, err := s.Sync(ctx, session.SubscriptionID)
	if err != nil {
		if errors.Is(err, ErrUnknownSubscription) {
			log.WarnContext(ctx, "checkout subscription has no known owner",
				logger.SubscriptionID(session.SubscriptionID))
			return alert(MsgActivationIssue)
		}
		log.ErrorContext(ctx, "failed to sync checkout subscription",
			logger.SubscriptionID(session.SubscriptionID), logger.Error(err))
		return alert(MsgPaymentError)
	}

	if sub.UserID != userID {
		log.WarnContext(ctx, "checkout subscription belongs to another user",
			logger.SubscriptionID(sub.ProcessorID))
		return alert(MsgActivationIssue)
	}

	granted, err := s.transition(ctx, billing.TriggerCheckout, sub)
	if err != nil {
		log.ErrorContext(ctx, "failed to update tier after checkout", logger.Error(err))
		return alert(MsgPaymentError)
	}
	if granted {
		return success(MsgWelcomePro)
	}
	return notice(MsgActivationPending)
}

// transition applies the tier change for trigger and reports whether
// access was granted.
func (s *Syncer) transition(ctx context.Context, trigger billing.Trigger, sub *billing.Subscription) (bool, error) {
	log := s.logger.With(
		logger.UserID(sub.UserID),
		logger.SubscriptionID(sub.ProcessorID),
		logger.Status(string(sub.Status)),
	)

	var tier account.Tier
	switch billing.TransitionFor(trigger, sub.Status) {
	case billing.TransitionGrant:
		tier = account.TierPro
	case billing.TransitionRevoke:
		tier = account.TierFree
	default:
		log.InfoContext(ctx, "subscription synced without tier change", slog.String("trigger", string(trigger)))
		return false, nil
	}

	if err := s.users.SetTier(ctx, sub.UserID, tier); err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			log.InfoContext(ctx, "subscription owner no longer exists")
			return false, nil
		}
		return false, err
	}
	log.InfoContext(ctx, "plan tier updated", logger.Tier(string(tier)), slog.String("trigger", string(trigger)))
	return tier == account.TierPro, nil
}
