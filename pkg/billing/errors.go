package billing

import "errors"

var (
	ErrSubscriptionNotFound      = errors.New("billing: subscription not found at processor")
	ErrCustomerNotFound          = errors.New("billing: customer not found")
	ErrInvalidCheckoutSession    = errors.New("billing: invalid checkout session")
	ErrWebhookVerificationFailed = errors.New("billing: webhook signature verification failed")
	ErrInvalidWebhookPayload     = errors.New("billing: invalid webhook payload")
	ErrProvider                  = errors.New("billing: processor request failed")

	ErrMissingAPIKey              = errors.New("billing: processor API key is required")
	ErrMissingWebhookSecret       = errors.New("billing: processor webhook secret is required")
	ErrInvalidProviderEnvironment = errors.New("billing: invalid processor environment")
	ErrMissingPriceRef            = errors.New("billing: price reference is required")
	ErrMissingCustomerID          = errors.New("billing: processor customer id is required")
	ErrNoCheckoutURL              = errors.New("billing: no checkout URL returned by processor")
	ErrNoPortalURL                = errors.New("billing: no portal URL returned by processor")
)
