package billing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/applytrack/pkg/billing"
)

func TestMemoryStore_Customers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := billing.NewMemoryStore()
	userID := uuid.New()

	_, err := store.CustomerByUser(ctx, billing.ProcessorStripe, userID)
	require.ErrorIs(t, err, billing.ErrCustomerNotFound)

	require.NoError(t, store.SaveCustomer(ctx, billing.Customer{
		Processor:  billing.ProcessorStripe,
		CustomerID: "cus_1",
		UserID:     userID,
	}))

	c, err := store.CustomerByUser(ctx, billing.ProcessorStripe, userID)
	require.NoError(t, err)
	assert.Equal(t, "cus_1", c.CustomerID)
	assert.False(t, c.CreatedAt.IsZero())

	c, err = store.CustomerByID(ctx, billing.ProcessorStripe, "cus_1")
	require.NoError(t, err)
	assert.Equal(t, userID, c.UserID)

	_, err = store.CustomerByID(ctx, billing.ProcessorPaddle, "cus_1")
	assert.ErrorIs(t, err, billing.ErrCustomerNotFound)
}

func TestMemoryStore_SaveSubscriptionUpserts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := billing.NewMemoryStore()
	userID := uuid.New()

	first := &billing.Subscription{
		Processor:   billing.ProcessorStripe,
		ProcessorID: "sub_1",
		UserID:      userID,
		Status:      billing.StatusActive,
	}
	require.NoError(t, store.SaveSubscription(ctx, first))
	require.NotEqual(t, uuid.Nil, first.ID)

	second := &billing.Subscription{
		Processor:   billing.ProcessorStripe,
		ProcessorID: "sub_1",
		UserID:      userID,
		Status:      billing.StatusCanceled,
	}
	require.NoError(t, store.SaveSubscription(ctx, second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	subs, err := store.SubscriptionsByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, billing.StatusCanceled, subs[0].Status)
}

func TestMemoryStore_RecordWebhook(t *testing.T) {
	t.Parallel()

	store := billing.NewMemoryStore()
	require.NoError(t, store.RecordWebhook(context.Background(), billing.WebhookRecord{
		Processor: billing.ProcessorStripe,
		EventID:   "evt_1",
		EventType: "customer.subscription.updated",
	}))

	hooks := store.Webhooks()
	require.Len(t, hooks, 1)
	assert.Equal(t, "evt_1", hooks[0].EventID)
	assert.NotEqual(t, uuid.Nil, hooks[0].ID)
}
