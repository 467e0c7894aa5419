package billing_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/applytrack/handler"
	"github.com/dmitrymomot/applytrack/modules/billing"
	pkgbilling "github.com/dmitrymomot/applytrack/pkg/billing"
	"github.com/dmitrymomot/applytrack/pkg/entitlement"
	"github.com/dmitrymomot/applytrack/pkg/logger"
	"github.com/dmitrymomot/applytrack/pkg/plans"
	"github.com/dmitrymomot/applytrack/pkg/usage"
	"github.com/dmitrymomot/applytrack/svc/account"
	"github.com/dmitrymomot/applytrack/svc/subscription"
)

type mockProvider struct {
	mock.Mock
	name string
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) CreateCustomer(ctx context.Context, req pkgbilling.CustomerRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreateCheckout(ctx context.Context, req pkgbilling.CheckoutRequest) (*pkgbilling.CheckoutLink, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pkgbilling.CheckoutLink), args.Error(1)
}

func (m *mockProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*pkgbilling.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pkgbilling.CheckoutSession), args.Error(1)
}

func (m *mockProvider) CreatePortalLink(ctx context.Context, req pkgbilling.PortalRequest) (*pkgbilling.PortalLink, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pkgbilling.PortalLink), args.Error(1)
}

func (m *mockProvider) GetSubscription(ctx context.Context, subscriptionID string) (*pkgbilling.RemoteSubscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pkgbilling.RemoteSubscription), args.Error(1)
}

func (m *mockProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*pkgbilling.WebhookEvent, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pkgbilling.WebhookEvent), args.Error(1)
}

type flashRecorder struct {
	values map[string]any
}

func (f *flashRecorder) SetFlash(_ http.ResponseWriter, key string, value any) error {
	f.values[key] = value
	return nil
}

// fixedSummary reports a canned summary and meters through a real checker.
type fixedSummary struct {
	*entitlement.Checker
	summary []entitlement.FeatureUsage
}

func (f fixedSummary) Summary(context.Context, uuid.UUID) ([]entitlement.FeatureUsage, error) {
	return f.summary, nil
}

type fixture struct {
	router   http.Handler
	provider *mockProvider
	users    *account.MemoryStore
	flash    *flashRecorder
	ledger   *usage.Ledger
	user     account.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newProcessorFixture(t, pkgbilling.ProcessorStripe)
}

func newProcessorFixture(t *testing.T, processor string) *fixture {
	t.Helper()

	user := account.User{ID: uuid.New(), Email: "jane@example.com", FirstName: "Jane", Tier: account.TierFree}
	users := account.NewMemoryStore(user)
	provider := &mockProvider{name: processor}
	store := pkgbilling.NewMemoryStore()
	catalog := plans.MustNewCatalog(plans.DefaultPlans("price_monthly", "price_annual")...)
	flash := &flashRecorder{values: map[string]any{}}
	ledger := usage.NewLedger(usage.NewMemoryStore(), usage.WithLogger(logger.Nop()))
	checker, err := entitlement.NewChecker(catalog, ledger, account.PlanResolver(users, plans.PlanMonthly),
		entitlement.WithLogger(logger.Nop()))
	require.NoError(t, err)

	svc := subscription.NewService(provider, store, catalog, subscription.WithLogger(logger.Nop()))
	syncer := subscription.NewSyncer(provider, store, users, subscription.WithSyncerLogger(logger.Nop()))

	m := billing.New(
		billing.Config{BaseURL: "https://app.test", AccountPath: "/account"},
		processor,
		svc, syncer, users,
		fixedSummary{Checker: checker, summary: []entitlement.FeatureUsage{{Feature: "applications", Used: 3, Limit: 5, Remaining: 2}}},
		flash,
		billing.WithLogger(logger.Nop()),
	)

	// Requests carrying X-User get that user id; the rest are rejected.
	authenticate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(r.Header.Get("X-User"))
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(account.WithUserID(r.Context(), id)))
		})
	}

	return &fixture{
		router:   m.Routes(authenticate),
		provider: provider,
		users:    users,
		flash:    flash,
		ledger:   ledger,
		user:     user,
	}
}

func (f *fixture) do(method, target string, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) authed() map[string]string {
	return map[string]string{"X-User": f.user.ID.String()}
}

func TestWebhook(t *testing.T) {
	t.Parallel()

	t.Run("unknown processor is not found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/webhooks/paddle", "{}", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		f.provider.AssertNotCalled(t, "ParseWebhook", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad signature is rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.provider.On("ParseWebhook", mock.Anything, []byte("{}"), "t=1,v1=bad").
			Return(nil, pkgbilling.ErrWebhookVerificationFailed).Once()

		rec := f.do(http.MethodPost, "/webhooks/stripe", "{}", map[string]string{"Stripe-Signature": "t=1,v1=bad"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.provider.AssertExpectations(t)
	})

	t.Run("ignored event is acknowledged", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.provider.On("ParseWebhook", mock.Anything, []byte(`{"id":"evt_1"}`), "sig").
			Return(&pkgbilling.WebhookEvent{ID: "evt_1", Type: pkgbilling.EventOther, ProviderEvent: "invoice.paid"}, nil).Once()

		rec := f.do(http.MethodPost, "/webhooks/stripe", `{"id":"evt_1"}`, map[string]string{"Stripe-Signature": "sig"})
		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "received", body["status"])
	})

	t.Run("processing failure asks for a retry", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.provider.On("ParseWebhook", mock.Anything, mock.Anything, mock.Anything).
			Return(&pkgbilling.WebhookEvent{ID: "evt_2", Type: pkgbilling.EventSubscriptionUpdated, SubscriptionID: "sub_1"}, nil).Once()
		f.provider.On("GetSubscription", mock.Anything, "sub_1").
			Return(nil, pkgbilling.ErrProvider).Once()

		rec := f.do(http.MethodPost, "/webhooks/stripe", "{}", map[string]string{"Stripe-Signature": "sig"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCheckout(t *testing.T) {
	t.Parallel()

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/checkout", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("redirects to hosted checkout", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.provider.On("CreateCustomer", mock.Anything, mock.Anything).Return("cus_1", nil).Once()
		f.provider.On("CreateCheckout", mock.Anything, mock.MatchedBy(func(req pkgbilling.CheckoutRequest) bool {
			return req.PriceRef == "price_annual" && req.CustomerID == "cus_1" &&
				req.SuccessURL == "https://app.test/checkout/success?session_id={CHECKOUT_SESSION_ID}" &&
				req.CancelURL == "https://app.test/checkout/cancel"
		})).Return(&pkgbilling.CheckoutLink{URL: "https://pay.test/cs_1", SessionID: "cs_1"}, nil).Once()

		rec := f.do(http.MethodPost, "/checkout?interval=annual", "", f.authed())
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "https://pay.test/cs_1", rec.Header().Get("Location"))
		f.provider.AssertExpectations(t)
	})

	t.Run("failure returns to account page with alert", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.provider.On("CreateCustomer", mock.Anything, mock.Anything).Return("", pkgbilling.ErrProvider).Once()

		rec := f.do(http.MethodPost, "/checkout", "", f.authed())
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/account", rec.Header().Get("Location"))
		assert.Equal(t, handler.Flash{Level: "alert", Message: subscription.MsgCheckoutFailed}, f.flash.values[handler.FlashKey])
	})

	t.Run("cancel", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/checkout/cancel", "", f.authed())
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, handler.Flash{Level: "alert", Message: subscription.MsgCheckoutCanceled}, f.flash.values[handler.FlashKey])
	})

	t.Run("success without session id", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/checkout/success", "", f.authed())
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, handler.Flash{Level: "alert", Message: subscription.MsgInvalidSession}, f.flash.values[handler.FlashKey])
	})

	t.Run("unpaid session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.provider.On("GetCheckoutSession", mock.Anything, "cs_9").
			Return(&pkgbilling.CheckoutSession{ID: "cs_9", PaymentStatus: "unpaid", Status: "open"}, nil).Once()

		rec := f.do(http.MethodGet, "/checkout/success?session_id=cs_9", "", f.authed())
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, handler.Flash{Level: "alert", Message: subscription.MsgPaymentIncomplete}, f.flash.values[handler.FlashKey])
	})
}

func TestCheckout_Paddle(t *testing.T) {
	t.Parallel()

	t.Run("success url carries no session placeholder", func(t *testing.T) {
		t.Parallel()
		f := newProcessorFixture(t, pkgbilling.ProcessorPaddle)
		f.provider.On("CreateCustomer", mock.Anything, mock.Anything).Return("ctm_1", nil).Once()
		f.provider.On("CreateCheckout", mock.Anything, mock.MatchedBy(func(req pkgbilling.CheckoutRequest) bool {
			return req.SuccessURL == "https://app.test/checkout/success"
		})).Return(&pkgbilling.CheckoutLink{URL: "https://pay.test/txn_1", SessionID: "txn_1"}, nil).Once()

		rec := f.do(http.MethodPost, "/checkout", "", f.authed())
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		f.provider.AssertExpectations(t)
	})

	tests := []struct {
		name   string
		target string
	}{
		{name: "transaction parameter", target: "/checkout/success?_ptxn=txn_1"},
		{name: "unsubstituted placeholder", target: "/checkout/success?session_id=%7BCHECKOUT_SESSION_ID%7D&_ptxn=txn_1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newProcessorFixture(t, pkgbilling.ProcessorPaddle)
			f.provider.On("GetCheckoutSession", mock.Anything, "txn_1").
				Return(&pkgbilling.CheckoutSession{ID: "txn_1", PaymentStatus: "unpaid", Status: "open"}, nil).Once()

			rec := f.do(http.MethodGet, tt.target, "", f.authed())
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, handler.Flash{Level: "alert", Message: subscription.MsgPaymentIncomplete}, f.flash.values[handler.FlashKey])
			f.provider.AssertExpectations(t)
		})
	}
}

func TestBillingPortal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	rec := f.do(http.MethodPost, "/billing_portal", "", f.authed())
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account", rec.Header().Get("Location"))
	assert.Equal(t, handler.Flash{Level: "alert", Message: subscription.MsgPortalRequiresSub}, f.flash.values[handler.FlashKey])
}

func TestUsage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	rec := f.do(http.MethodGet, "/usage", "", f.authed())
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Plan       string `json:"plan"`
			Subscribed bool   `json:"subscribed"`
			Features   []struct {
				Used      int64 `json:"used"`
				Remaining int64 `json:"remaining"`
			} `json:"features"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "free", body.Data.Plan)
	assert.False(t, body.Data.Subscribed)
	require.Len(t, body.Data.Features, 1)
	assert.Equal(t, int64(3), body.Data.Features[0].Used)
	assert.Equal(t, int64(2), body.Data.Features[0].Remaining)
}

func TestConsumeUsage(t *testing.T) {
	t.Parallel()

	jsonHeader := func(f *fixture) map[string]string {
		h := f.authed()
		h["Content-Type"] = "application/json"
		return h
	}
	decode := func(t *testing.T, rec *httptest.ResponseRecorder) entitlement.Result {
		t.Helper()
		var body struct {
			Data entitlement.Result `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body.Data
	}

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/usage/cover_letter", "{}", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("records usage until quota runs out", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()

		rec := f.do(http.MethodPost, "/usage/cover_letter", `{"metadata":{"job_id":"j1"}}`, jsonHeader(f))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode(t, rec).Success)

		used, err := f.ledger.UsageFor(ctx, f.user.ID, usage.FeatureCoverLetter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), used)

		rec = f.do(http.MethodPost, "/usage/cover_letter", "{}", jsonHeader(f))
		require.Equal(t, http.StatusPaymentRequired, rec.Code)
		res := decode(t, rec)
		assert.False(t, res.Success)
		assert.Equal(t, entitlement.InsufficientCreditsMessage, res.Error)

		used, err = f.ledger.UsageFor(ctx, f.user.ID, usage.FeatureCoverLetter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), used, "denied calls consume nothing")
	})

	t.Run("count spends several units", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/usage/ai_chat_message", `{"count":4}`, jsonHeader(f))
		require.Equal(t, http.StatusOK, rec.Code)

		used, err := f.ledger.UsageFor(context.Background(), f.user.ID, usage.FeatureAIChatMessage)
		require.NoError(t, err)
		assert.Equal(t, int64(4), used)
	})

	t.Run("unknown feature", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/usage/teleport", "{}", jsonHeader(f))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("negative count", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/usage/ai_chat_message", `{"count":-1}`, jsonHeader(f))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
