package account_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/applytrack/pkg/jwt"
	"github.com/dmitrymomot/applytrack/svc/account"
)

func TestUserName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ada Lovelace", account.User{FirstName: "Ada", LastName: "Lovelace"}.Name())
	assert.Equal(t, "Ada", account.User{FirstName: "Ada"}.Name())
	assert.Equal(t, "Lovelace", account.User{LastName: "Lovelace"}.Name())
	assert.Empty(t, account.User{}.Name())
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := account.NewMemoryStore()

	u := &account.User{Email: "a@example.com"}
	require.NoError(t, store.CreateUser(ctx, u))
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, account.TierFree, u.Tier)

	require.NoError(t, store.SetTier(ctx, u.ID, account.TierPro))
	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPro())

	assert.ErrorIs(t, store.SetTier(ctx, u.ID, "gold"), account.ErrInvalidTier)
	assert.ErrorIs(t, store.SetTier(ctx, uuid.New(), account.TierFree), account.ErrUserNotFound)
	_, err = store.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, account.ErrUserNotFound)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	tokens, err := jwt.New("secret")
	require.NoError(t, err)
	users := account.NewMemoryStore(account.User{ID: uuid.New(), Email: "a@example.com"})
	userID := uuid.New()

	var current uuid.UUID
	h := account.Authenticate(tokens, "session", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current, _ = account.UserIDFromContext(r.Context())
	}))

	t.Run("valid subject", func(t *testing.T) {
		tok, err := tokens.Issue(userID.String(), "", time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, current)
	})

	t.Run("non uuid subject", func(t *testing.T) {
		tok, err := tokens.Issue("admin", "", time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: tok})
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("current user requires identity", func(t *testing.T) {
		_, err := account.CurrentUser(context.Background(), users)
		assert.ErrorIs(t, err, account.ErrUnauthorized)
	})
}
