package auth

import (
	"context"
	"net/http"

	"github.com/cardkeep/cardkeep-be/internal/models"
)

// Header carries the session token on requests and newly issued tokens on
// responses.
const Header = "x-auth"

type contextKey string

// UserKey is the context key for the authenticated user record.
const UserKey = contextKey("authUser")

// TokenKey is the context key for the raw token string the request presented.
const TokenKey = contextKey("authToken")

// SessionResolver resolves a (userID, token) pair against live server-side
// session state. A user who logged the token out must no longer resolve.
type SessionResolver interface {
	GetUserBySession(userID, token string) (models.User, error)
}

// Middleware gates protected routes. A request passes only when its x-auth
// token carries a valid signature AND still appears in the user's active
// session list; signature validity alone is not sufficient, otherwise logout
// could not revoke anything. Failures respond 401 with an empty body.
func Middleware(tokens *TokenService, sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := r.Header.Get(Header)
			if tokenStr == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Verify(tokenStr)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			user, err := sessions.GetUserBySession(claims.UserID, tokenStr)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, TokenKey, tokenStr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user attached by Middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserKey).(models.User)
	return user, ok
}

// TokenFromContext returns the raw token string attached by Middleware.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}
