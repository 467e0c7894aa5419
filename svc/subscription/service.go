package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/applytrack/pkg/billing"
	"github.com/dmitrymomot/applytrack/pkg/logger"
	"github.com/dmitrymomot/applytrack/pkg/plans"
	"github.com/dmitrymomot/applytrack/svc/account"
)

// CheckoutURLs are the processor redirect targets of a checkout.
type CheckoutURLs struct {
	SuccessURL string
	CancelURL  string
}

// Service starts checkouts and opens the billing portal.
type Service struct {
	provider billing.Provider
	store    billing.Store
	catalog  *plans.Catalog
	logger   *slog.Logger
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(provider billing.Provider, store billing.Store, catalog *plans.Catalog, opts ...ServiceOption) *Service {
	if provider == nil || store == nil || catalog == nil {
		panic("subscription: provider, store and catalog are required")
	}
	s := &Service{
		provider: provider,
		store:    store,
		catalog:  catalog,
		logger:   slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("billing"), logger.Processor(provider.Name()))
	return s
}

// Subscribed reports whether the user is on the pro tier and holds a
// mirrored subscription that is active, trialing or canceled with time left.
func (s *Service) Subscribed(ctx context.Context, user *account.User) (bool, error) {
	if !user.IsPro() {
		return false, nil
	}
	_, ok, err := s.activeSubscription(ctx, user)
	return ok, err
}

func (s *Service) activeSubscription(ctx context.Context, user *account.User) (*billing.Subscription, bool, error) {
	subs, err := s.store.SubscriptionsByUser(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}
	now := s.now()
	for _, sub := range subs {
		switch sub.EffectiveStatus(now) {
		case billing.StatusActive, billing.StatusTrialing, billing.StatusOnGracePeriod:
			return &sub, true, nil
		}
	}
	return nil, false, nil
}

// PlanForInterval maps a billing interval name onto a paid plan, falling
// back to the monthly plan.
func PlanForInterval(interval string) plans.PlanID {
	if plans.PlanID(interval) == plans.PlanAnnual || interval == "year" || interval == "yearly" {
		return plans.PlanAnnual
	}
	return plans.PlanMonthly
}

// StartCheckout opens a hosted checkout for the plan matching interval.
// The returned Outcome is meaningful only when the link is nil.
func (s *Service) StartCheckout(ctx context.Context, user *account.User, interval string, urls CheckoutURLs) (*billing.CheckoutLink, Outcome, error) {
	log := s.logger.With(logger.UserID(user.ID))

	subscribed, err := s.Subscribed(ctx, user)
	if err != nil {
		log.ErrorContext(ctx, "failed to load subscriptions", logger.Error(err))
		return nil, alert(MsgCheckoutFailed), errors.Join(ErrCheckoutFailed, err)
	}
	if subscribed {
		return nil, notice(MsgAlreadySubscribed), ErrAlreadySubscribed
	}

	planID := PlanForInterval(interval)
	plan, ok := s.catalog.Plan(planID)
	if !ok || plan.PriceRef == "" {
		log.ErrorContext(ctx, "plan has no processor price", logger.Plan(string(planID)))
		return nil, alert(MsgBillingMisconfigured), fmt.Errorf("%w: %s", ErrBillingNotConfigured, planID)
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		log.ErrorContext(ctx, "failed to prepare processor customer", logger.Error(err))
		return nil, alert(MsgCheckoutFailed), errors.Join(ErrCheckoutFailed, err)
	}

	link, err := s.provider.CreateCheckout(ctx, billing.CheckoutRequest{
		PriceRef:   plan.PriceRef,
		CustomerID: customerID,
		UserID:     user.ID,
		SuccessURL: urls.SuccessURL,
		CancelURL:  urls.CancelURL,
	})
	if err != nil {
		log.ErrorContext(ctx, "checkout error", logger.Plan(string(planID)), logger.Error(err))
		return nil, alert(MsgCheckoutFailed), errors.Join(ErrCheckoutFailed, err)
	}
	return link, Outcome{}, nil
}

// PortalLink opens the processor billing portal for a subscribed user.
func (s *Service) PortalLink(ctx context.Context, user *account.User, returnURL string) (*billing.PortalLink, Outcome, error) {
	log := s.logger.With(logger.UserID(user.ID))

	sub, ok, err := s.activeSubscription(ctx, user)
	if err != nil {
		log.ErrorContext(ctx, "failed to load subscriptions", logger.Error(err))
		return nil, alert(MsgPortalFailed), errors.Join(ErrPortalFailed, err)
	}
	if !ok {
		return nil, alert(MsgPortalRequiresSub), ErrSubscriptionRequired
	}

	link, err := s.provider.CreatePortalLink(ctx, billing.PortalRequest{
		CustomerID:     sub.CustomerID,
		SubscriptionID: sub.ProcessorID,
		ReturnURL:      returnURL,
	})
	if err != nil {
		log.ErrorContext(ctx, "billing portal error", logger.Error(err))
		return nil, alert(MsgPortalFailed), errors.Join(ErrPortalFailed, err)
	}
	return link, Outcome{}, nil
}

func (s *Service) ensureCustomer(ctx context.Context, user *account.User) (string, error) {
	c, err := s.store.CustomerByUser(ctx, s.provider.Name(), user.ID)
	if err == nil {
		return c.CustomerID, nil
	}
	if !errors.Is(err, billing.ErrCustomerNotFound) {
		return "", err
	}

	id, err := s.provider.CreateCustomer(ctx, billing.CustomerRequest{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name(),
	})
	if err != nil {
		return "", err
	}
	if err := s.store.SaveCustomer(ctx, billing.Customer{
		Processor:  s.provider.Name(),
		CustomerID: id,
		UserID:     user.ID,
		CreatedAt:  s.now(),
	}); err != nil {
		return "", err
	}
	return id, nil
}
