package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/applytrack/pkg/jwt"
)

func TestService(t *testing.T) {
	t.Parallel()

	svc, err := jwt.New("secret", jwt.WithIssuer("identity"))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		tok, err := svc.Issue("user-1", "a@example.com", time.Minute)
		require.NoError(t, err)

		claims, err := svc.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "a@example.com", claims.Email)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		tok, err := svc.Issue("user-1", "", -time.Minute)
		require.NoError(t, err)

		_, err = svc.Parse(tok)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.New("other", jwt.WithIssuer("identity"))
		require.NoError(t, err)
		tok, err := other.Issue("user-1", "", time.Minute)
		require.NoError(t, err)

		_, err = svc.Parse(tok)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.New("secret", jwt.WithIssuer("elsewhere"))
		require.NoError(t, err)
		tok, err := other.Issue("user-1", "", time.Minute)
		require.NoError(t, err)

		_, err = svc.Parse(tok)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	_, err = jwt.New("")
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	svc, err := jwt.New("secret")
	require.NoError(t, err)
	tok, err := svc.Issue("user-42", "", time.Minute)
	require.NoError(t, err)

	var subject string
	h := jwt.Middleware(svc, jwt.FirstOf(jwt.BearerTokenExtractor, jwt.CookieTokenExtractor("session")), nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := jwt.ClaimsFromContext(r.Context())
			require.True(t, ok)
			subject = c.Subject
		}),
	)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-42", subject)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: tok})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
