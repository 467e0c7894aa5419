package billing_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/applytrack/pkg/billing"
)

func paddleSignature(secret, body string) string {
	ts := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + ":" + body))
	return fmt.Sprintf("ts=%s;h1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestNewPaddleProvider_Validation(t *testing.T) {
	t.Parallel()

	_, err := billing.NewPaddleProvider(billing.PaddleConfig{WebhookSecret: "x"})
	assert.ErrorIs(t, err, billing.ErrMissingAPIKey)

	_, err = billing.NewPaddleProvider(billing.PaddleConfig{APIKey: "x"})
	assert.ErrorIs(t, err, billing.ErrMissingWebhookSecret)

	_, err = billing.NewPaddleProvider(billing.PaddleConfig{APIKey: "x", WebhookSecret: "y", Environment: "staging"})
	assert.ErrorIs(t, err, billing.ErrInvalidProviderEnvironment)
}

func TestPaddleProvider_ParseWebhook(t *testing.T) {
	t.Parallel()

	const secret = "pdl_ntfset_secret"
	p, err := billing.NewPaddleProvider(billing.PaddleConfig{
		APIKey:        "pdl_sdbx_apikey",
		WebhookSecret: secret,
		Environment:   "sandbox",
	})
	require.NoError(t, err)
	assert.Equal(t, billing.ProcessorPaddle, p.Name())

	tests := []struct {
		name      string
		eventType string
		want      billing.EventType
		subID     string
	}{
		{"created", "subscription.created", billing.EventSubscriptionCreated, "sub_01"},
		{"updated", "subscription.updated", billing.EventSubscriptionUpdated, "sub_01"},
		{"past due is an update", "subscription.past_due", billing.EventSubscriptionUpdated, "sub_01"},
		{"canceled", "subscription.canceled", billing.EventSubscriptionDeleted, "sub_01"},
		{"transaction", "transaction.completed", billing.EventOther, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			body := fmt.Sprintf(`{"event_id":"evt_01","event_type":%q,"data":{"id":"sub_01"}}`, tt.eventType)

			evt, err := p.ParseWebhook(context.Background(), []byte(body), paddleSignature(secret, body))
			require.NoError(t, err)
			assert.Equal(t, "evt_01", evt.ID)
			assert.Equal(t, tt.want, evt.Type)
			assert.Equal(t, tt.subID, evt.SubscriptionID)
		})
	}

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		body := `{"event_id":"evt_02","event_type":"subscription.updated","data":{"id":"sub_01"}}`

		_, err := p.ParseWebhook(context.Background(), []byte(body), paddleSignature("other", body))
		assert.ErrorIs(t, err, billing.ErrWebhookVerificationFailed)
	})
}
