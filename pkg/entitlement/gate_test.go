package entitlement_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/applytrack/pkg/entitlement"
	"github.com/dmitrymomot/applytrack/pkg/plans"
	"github.com/dmitrymomot/applytrack/pkg/usage"
)

func TestGate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("records usage on success", func(t *testing.T) {
		t.Parallel()
		c, ledger := newChecker(t, plans.PlanFree)
		user := uuid.New()

		res := c.Gate(ctx, user, usage.FeatureCoverLetter, func(context.Context) entitlement.Result {
			return entitlement.Succeed(map[string]string{"letter": "Dear hiring manager"}, "Cover letter generated")
		}, entitlement.WithEventMetadata(usage.Metadata{"job_id": "42"}))

		assert.True(t, res.Success)
		assert.Equal(t, "Cover letter generated", res.Message)

		used, err := ledger.UsageFor(ctx, user, usage.FeatureCoverLetter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), used)

		history, err := ledger.History(ctx, user, 1)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "42", history[0].Metadata["job_id"])
	})

	t.Run("denied action does not run", func(t *testing.T) {
		t.Parallel()
		c, ledger := newChecker(t, plans.PlanFree)
		user := uuid.New()
		_, err := ledger.Record(ctx, user, usage.FeatureCoverLetter)
		require.NoError(t, err)

		ran := false
		res := c.Gate(ctx, user, usage.FeatureCoverLetter, func(context.Context) entitlement.Result {
			ran = true
			return entitlement.Succeed(nil, "")
		})

		assert.False(t, ran)
		assert.False(t, res.Success)
		assert.Equal(t, entitlement.InsufficientCreditsMessage, res.Error)

		used, err := ledger.UsageFor(ctx, user, usage.FeatureCoverLetter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), used)
	})

	t.Run("failed action consumes nothing", func(t *testing.T) {
		t.Parallel()
		c, ledger := newChecker(t, plans.PlanFree)
		user := uuid.New()

		res := c.Gate(ctx, user, usage.FeatureLocationCheck, func(context.Context) entitlement.Result {
			return entitlement.Fail("Geocoding failed", []string{"address not found"})
		})
		assert.False(t, res.Success)
		assert.Equal(t, "Geocoding failed", res.Error)

		used, err := ledger.UsageFor(ctx, user, usage.FeatureLocationCheck)
		require.NoError(t, err)
		assert.Zero(t, used)
	})

	t.Run("cost larger than remaining is denied", func(t *testing.T) {
		t.Parallel()
		c, _ := newChecker(t, plans.PlanFree)
		res := c.Gate(ctx, uuid.New(), usage.FeatureAIChatMessage, func(context.Context) entitlement.Result {
			return entitlement.Succeed(nil, "")
		}, entitlement.WithCost(11))
		assert.Equal(t, entitlement.InsufficientCreditsMessage, res.Error)
	})
}

func TestGateWithLocker(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, ledger := newChecker(t, plans.PlanFree, entitlement.WithLocker(entitlement.NewMemoryLocker()))
	user := uuid.New()

	var succeeded atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := c.Gate(ctx, user, usage.FeatureCoverLetter, func(context.Context) entitlement.Result {
				time.Sleep(5 * time.Millisecond)
				return entitlement.Succeed(nil, "")
			})
			if res.Success {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), succeeded.Load())
	used, err := ledger.UsageFor(ctx, user, usage.FeatureCoverLetter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), used)
}

func TestMemoryLocker(t *testing.T) {
	t.Parallel()
	l := entitlement.NewMemoryLocker()

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := l.Lock(context.Background(), "other")
	require.NoError(t, err)
	other()

	unlock()
	unlock()

	again, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	again()
}
