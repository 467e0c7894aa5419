package account

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/applytrack/pkg/jwt"
)

// Config of the identity token verification.
type Config struct {
	TokenSecret string `env:"AUTH_TOKEN_SECRET,required"`
	TokenIssuer string `env:"AUTH_TOKEN_ISSUER" envDefault:""`
	CookieName  string `env:"AUTH_COOKIE_NAME" envDefault:"session"`
}

// Authenticate verifies the session token issued by the identity service and
// stores its subject as the acting user id. Tokens whose subject is not a
// UUID are rejected.
func Authenticate(tokens *jwt.Service, cookieName string, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		}
	}
	verify := jwt.Middleware(tokens, jwt.FirstOf(jwt.BearerTokenExtractor, jwt.CookieTokenExtractor(cookieName)), onError)

	return func(next http.Handler) http.Handler {
		return verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := jwt.ClaimsFromContext(r.Context())
			id, err := uuid.Parse(claims.Subject)
			if err != nil || id == uuid.Nil {
				onError(w, r, ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		}))
	}
}
