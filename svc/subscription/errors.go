package subscription

import "errors"

var (
	ErrUnknownSubscription  = errors.New("subscription: subscription does not belong to a known user")
	ErrAlreadySubscribed    = errors.New("subscription: user already has an active subscription")
	ErrBillingNotConfigured = errors.New("subscription: plan has no processor price")
	ErrSubscriptionRequired = errors.New("subscription: active subscription required")
	ErrCheckoutFailed       = errors.New("subscription: checkout could not be started")
	ErrPortalFailed         = errors.New("subscription: billing portal could not be opened")
	ErrRecordWebhook        = errors.New("subscription: failed to record webhook")
)
