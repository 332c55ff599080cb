package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeAuth is the access scope attached to every session token. Single-valued
// for now; carried in the token so future scopes can coexist.
const ScopeAuth = "auth"

// ErrInvalidToken is returned for every verification failure. Callers must not
// be able to tell a forged signature from a malformed or expired token.
var ErrInvalidToken = errors.New("invalid token")

// Claims defines the JWT claims structure for session tokens.
type Claims struct {
	UserID string `json:"userId"`
	Access string `json:"access"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies signed session tokens. It is a pure
// function of the signing secret and its inputs; revocation lives in the
// session store, not here.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given signing secret and
// token lifetime.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl}
}

// Issue creates a signed token bound to a user identity and access scope,
// returning the token string and its expiry time.
func (s *TokenService) Issue(userID, access string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.ttl)
	claims := &Claims{
		UserID: userID,
		Access: access,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a token string, returning its claims. Any
// failure collapses into ErrInvalidToken.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
