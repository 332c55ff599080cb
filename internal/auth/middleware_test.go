package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardkeep/cardkeep-be/internal/models"
)

// stubResolver fakes the server-side session list.
type stubResolver struct {
	user      models.User
	err       error
	called    bool
	gotUserID string
	gotToken  string
}

func (s *stubResolver) GetUserBySession(userID, token string) (models.User, error) {
	s.called = true
	s.gotUserID = userID
	s.gotToken = token
	return s.user, s.err
}

func runMiddleware(t *testing.T, tokens *TokenService, resolver *stubResolver, tokenHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, resolver.user, user)

		raw, ok := TokenFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, tokenHeader, raw)
	})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if tokenHeader != "" {
		req.Header.Set(Header, tokenHeader)
	}
	rec := httptest.NewRecorder()
	Middleware(tokens, resolver)(next).ServeHTTP(rec, req)
	return rec, reached
}

func TestMiddleware_MissingHeader(t *testing.T) {
	tokens := NewTokenService([]byte("secret"), time.Hour)
	resolver := &stubResolver{}

	rec, reached := runMiddleware(t, tokens, resolver, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.False(t, reached)
	assert.False(t, resolver.called)
}

func TestMiddleware_InvalidToken(t *testing.T) {
	tokens := NewTokenService([]byte("secret"), time.Hour)
	resolver := &stubResolver{}

	rec, reached := runMiddleware(t, tokens, resolver, "not-a-valid-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.False(t, reached)
	assert.False(t, resolver.called)
}

func TestMiddleware_RevokedToken(t *testing.T) {
	// Valid signature, but the session list no longer contains the token.
	tokens := NewTokenService([]byte("secret"), time.Hour)
	token, _, err := tokens.Issue("user-1", ScopeAuth)
	require.NoError(t, err)

	resolver := &stubResolver{err: errors.New("not found")}
	rec, reached := runMiddleware(t, tokens, resolver, token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.False(t, reached)
	assert.True(t, resolver.called)
}

func TestMiddleware_Success(t *testing.T) {
	tokens := NewTokenService([]byte("secret"), time.Hour)
	token, _, err := tokens.Issue("user-1", ScopeAuth)
	require.NoError(t, err)

	resolver := &stubResolver{user: models.User{ID: "user-1", Email: "peter@example.com"}}
	rec, reached := runMiddleware(t, tokens, resolver, token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
	assert.Equal(t, "user-1", resolver.gotUserID)
	assert.Equal(t, token, resolver.gotToken)
}
