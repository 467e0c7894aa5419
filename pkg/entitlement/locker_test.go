package entitlement_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/applytrack/pkg/entitlement"
)

// redisClient connects to TEST_REDIS_URL. Tests are skipped when it is not
// set.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestRedisLocker(t *testing.T) {
	t.Parallel()

	client := redisClient(t)

	t.Run("serializes holders of one key", func(t *testing.T) {
		t.Parallel()
		l := entitlement.NewRedisLocker(client, 5*time.Second)
		key := "user:" + uuid.NewString()

		var (
			wg      sync.WaitGroup
			holders atomic.Int32
			overlap atomic.Bool
		)
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := l.Lock(context.Background(), key)
				if !assert.NoError(t, err) {
					return
				}
				if holders.Add(1) > 1 {
					overlap.Store(true)
				}
				time.Sleep(10 * time.Millisecond)
				holders.Add(-1)
				unlock()
			}()
		}
		wg.Wait()
		assert.False(t, overlap.Load(), "two callers held the lock at once")
	})

	t.Run("gives up when the context ends", func(t *testing.T) {
		t.Parallel()
		l := entitlement.NewRedisLocker(client, 5*time.Second)
		key := "user:" + uuid.NewString()

		unlock, err := l.Lock(context.Background(), key)
		require.NoError(t, err)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
		defer cancel()
		_, err = l.Lock(ctx, key)
		assert.ErrorIs(t, err, entitlement.ErrLockFailed)
	})

	t.Run("expired lock taken over is not released by the old holder", func(t *testing.T) {
		t.Parallel()
		short := entitlement.NewRedisLocker(client, 50*time.Millisecond)
		key := "user:" + uuid.NewString()

		stale, err := short.Lock(context.Background(), key)
		require.NoError(t, err)
		time.Sleep(100 * time.Millisecond)

		fresh, err := entitlement.NewRedisLocker(client, 5*time.Second).Lock(context.Background(), key)
		require.NoError(t, err)
		defer fresh()

		stale()
		exists, err := client.Exists(context.Background(), "applytrack:lock:"+key).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})
}
