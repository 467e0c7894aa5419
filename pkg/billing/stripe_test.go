package billing_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/dmitrymomot/applytrack/pkg/billing"
)

const testWebhookSecret = "whsec_test"

func newStripeProvider(t *testing.T, h http.HandlerFunc) *billing.StripeProvider {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
		MaxNetworkRetries: stripe.Int64(0),
	})

	p, err := billing.NewStripeProvider(billing.StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
	}, billing.WithStripeBackend(backend))
	require.NoError(t, err)
	return p
}

func TestNewStripeProvider_Validation(t *testing.T) {
	t.Parallel()

	_, err := billing.NewStripeProvider(billing.StripeConfig{WebhookSecret: "x"})
	assert.ErrorIs(t, err, billing.ErrMissingAPIKey)

	_, err = billing.NewStripeProvider(billing.StripeConfig{SecretKey: "x"})
	assert.ErrorIs(t, err, billing.ErrMissingWebhookSecret)
}

func TestStripeProvider_CreateCheckout(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var form url.Values

	p := newStripeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1","expires_at":1700000000}`)
	})

	link, err := p.CreateCheckout(context.Background(), billing.CheckoutRequest{
		PriceRef:   "price_monthly",
		CustomerID: "cus_1",
		UserID:     userID,
		SuccessURL: "https://app.test/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://app.test/checkout/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", link.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", link.URL)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), link.ExpiresAt)

	assert.Equal(t, "subscription", form.Get("mode"))
	assert.Equal(t, "price_monthly", form.Get("line_items[0][price]"))
	assert.Equal(t, "1", form.Get("line_items[0][quantity]"))
	assert.Equal(t, "true", form.Get("allow_promotion_codes"))
	assert.Equal(t, userID.String(), form.Get("client_reference_id"))
	assert.Equal(t, "cus_1", form.Get("customer"))
}

func TestStripeProvider_CreateCheckout_RequiresPrice(t *testing.T) {
	t.Parallel()

	p := newStripeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("processor must not be called")
	})

	_, err := p.CreateCheckout(context.Background(), billing.CheckoutRequest{CustomerID: "cus_1"})
	assert.ErrorIs(t, err, billing.ErrMissingPriceRef)
}

func TestStripeProvider_GetSubscription(t *testing.T) {
	t.Parallel()

	p := newStripeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/v1/subscriptions/sub_1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such subscription"}}`)
			return
		}
		_, _ = io.WriteString(w, `{
			"id":"sub_1","object":"subscription","status":"past_due","customer":"cus_1",
			"current_period_start":1700000000,"current_period_end":1702592000,
			"cancel_at_period_end":true,
			"items":{"object":"list","data":[{"id":"si_1","object":"subscription_item","price":{"id":"price_monthly","object":"price"}}]}
		}`)
	})

	sub, err := p.GetSubscription(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "sub_1", sub.ID)
	assert.Equal(t, billing.StatusPastDue, sub.Status)
	assert.Equal(t, "cus_1", sub.CustomerID)
	assert.Equal(t, "price_monthly", sub.PriceRef)
	require.NotNil(t, sub.CurrentPeriodEnd)
	require.NotNil(t, sub.EndsAt)
	assert.Equal(t, *sub.CurrentPeriodEnd, *sub.EndsAt)

	_, err = p.GetSubscription(context.Background(), "sub_missing")
	assert.ErrorIs(t, err, billing.ErrSubscriptionNotFound)
}

func TestStripeProvider_GetCheckoutSession(t *testing.T) {
	t.Parallel()

	p := newStripeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cs_1","object":"checkout.session","payment_status":"paid","status":"complete",
			"subscription":"sub_1","customer":"cus_1","client_reference_id":"ref"}`)
	})

	s, err := p.GetCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.True(t, s.Paid())
	assert.Equal(t, "sub_1", s.SubscriptionID)
	assert.Equal(t, "cus_1", s.CustomerID)
	assert.Equal(t, "ref", s.ClientReferenceID)

	_, err = p.GetCheckoutSession(context.Background(), "")
	assert.ErrorIs(t, err, billing.ErrInvalidCheckoutSession)
}

func TestStripeProvider_GetCheckoutSession_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{
			name:   "malformed session id",
			status: http.StatusBadRequest,
			body:   `{"error":{"type":"invalid_request_error","code":"parameter_invalid_string","message":"Invalid checkout.session id"}}`,
			want:   billing.ErrInvalidCheckoutSession,
		},
		{
			name:   "missing session",
			status: http.StatusNotFound,
			body:   `{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such checkout.session"}}`,
			want:   billing.ErrInvalidCheckoutSession,
		},
		{
			name:   "authentication failure",
			status: http.StatusUnauthorized,
			body:   `{"error":{"type":"authentication_error","message":"Invalid API Key provided"}}`,
			want:   billing.ErrProvider,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := newStripeProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := p.GetCheckoutSession(context.Background(), "cs_bad")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStripeProvider_ParseWebhook(t *testing.T) {
	t.Parallel()

	p := newStripeProvider(t, func(w http.ResponseWriter, r *http.Request) {})
	sign := func(payload string) string {
		return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   []byte(payload),
			Secret:    testWebhookSecret,
			Timestamp: time.Now(),
		}).Header
	}

	t.Run("subscription event", func(t *testing.T) {
		t.Parallel()
		payload := `{"id":"evt_1","object":"event","type":"customer.subscription.deleted","data":{"object":{"id":"sub_1","object":"subscription"}}}`

		evt, err := p.ParseWebhook(context.Background(), []byte(payload), sign(payload))
		require.NoError(t, err)
		assert.Equal(t, "evt_1", evt.ID)
		assert.Equal(t, billing.EventSubscriptionDeleted, evt.Type)
		assert.Equal(t, "customer.subscription.deleted", evt.ProviderEvent)
		assert.Equal(t, "sub_1", evt.SubscriptionID)
	})

	t.Run("other event", func(t *testing.T) {
		t.Parallel()
		payload := `{"id":"evt_2","object":"event","type":"invoice.paid","data":{"object":{"id":"in_1","object":"invoice"}}}`

		evt, err := p.ParseWebhook(context.Background(), []byte(payload), sign(payload))
		require.NoError(t, err)
		assert.Equal(t, billing.EventOther, evt.Type)
		assert.Empty(t, evt.SubscriptionID)
	})

	t.Run("bad signature", func(t *testing.T) {
		t.Parallel()
		payload := `{"id":"evt_3","object":"event","type":"customer.subscription.updated","data":{"object":{"id":"sub_1"}}}`

		_, err := p.ParseWebhook(context.Background(), []byte(payload), "t=1,v1=deadbeef")
		assert.ErrorIs(t, err, billing.ErrWebhookVerificationFailed)
	})
}
