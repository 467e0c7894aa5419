// Package billing mirrors payment-processor subscriptions and decides how
// subscription lifecycle events move a user between plan tiers.
package billing

import (
	"time"

	"github.com/google/uuid"
)

// Status is a processor subscription status normalized across providers.
type Status string

const (
	StatusActive            Status = "active"
	StatusTrialing          Status = "trialing"
	StatusPastDue           Status = "past_due"
	StatusCanceled          Status = "canceled"
	StatusUnpaid            Status = "unpaid"
	StatusIncomplete        Status = "incomplete"
	StatusIncompleteExpired Status = "incomplete_expired"
	StatusPaused            Status = "paused"
	StatusOnGracePeriod     Status = "on_grace_period"
)

// Entitled reports whether the status keeps paid access. past_due is
// included so access survives payment retries.
func (s Status) Entitled() bool {
	switch s {
	case StatusActive, StatusTrialing, StatusPastDue, StatusOnGracePeriod:
		return true
	}
	return false
}

// Subscription is the local mirror of a processor subscription. The
// processor stays the source of truth; the mirror is refreshed on every
// lifecycle event.
type Subscription struct {
	ID                 uuid.UUID  `json:"id"`
	Processor          string     `json:"processor"`
	ProcessorID        string     `json:"processor_id"`
	UserID             uuid.UUID  `json:"user_id"`
	CustomerID         string     `json:"customer_id"`
	PriceRef           string     `json:"price_ref"`
	Status             Status     `json:"status"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	EndsAt             *time.Time `json:"ends_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// OnTrial reports a trialing subscription whose trial has not ended.
func (s Subscription) OnTrial(now time.Time) bool {
	return s.Status == StatusTrialing && (s.TrialEndsAt == nil || now.Before(*s.TrialEndsAt))
}

// OnGracePeriod reports a subscription that was canceled but keeps running
// until EndsAt.
func (s Subscription) OnGracePeriod(now time.Time) bool {
	return s.EndsAt != nil && now.Before(*s.EndsAt)
}

// EffectiveStatus folds the grace period into the status: a canceled
// subscription with time left reports StatusOnGracePeriod.
func (s Subscription) EffectiveStatus(now time.Time) Status {
	if s.Status == StatusCanceled && s.OnGracePeriod(now) {
		return StatusOnGracePeriod
	}
	return s.Status
}

// Entitled reports whether the subscription grants paid access at now.
func (s Subscription) Entitled(now time.Time) bool {
	return s.EffectiveStatus(now).Entitled()
}

// Customer links a processor customer to a local user. A subscription is
// ours only when its customer is mapped here.
type Customer struct {
	Processor  string    `json:"processor"`
	CustomerID string    `json:"customer_id"`
	UserID     uuid.UUID `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// WebhookRecord is an audit copy of a received webhook.
type WebhookRecord struct {
	ID         uuid.UUID `json:"id"`
	Processor  string    `json:"processor"`
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Payload    []byte    `json:"payload"`
	ReceivedAt time.Time `json:"received_at"`
}
