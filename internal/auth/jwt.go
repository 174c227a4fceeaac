package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for any token we did not issue:
// malformed, unsigned, wrong algorithm, or signed with a different secret.
var ErrInvalidToken = errors.New("invalid token")

// tokenClaims is the payload we sign. The nested shape matches what the
// storefront frontend already decodes: {"user": {"id": "<hex>"}}.
// Tokens carry no expiry; they stay valid until the secret rotates.
type tokenClaims struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies the bearer tokens used by the API.
// It is a pure function over the configured secret and keeps no state.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Issue creates a signed token for the given user ID.
func (tc *TokenCodec) Issue(userID string) (string, error) {
	claims := tokenClaims{}
	claims.User.ID = userID

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tc.secret)
}

// Verify parses and validates a token string and returns the user ID it
// was issued for. It does not check that the user still exists; callers
// that need that guarantee must look the user up themselves.
func (tc *TokenCodec) Verify(tokenString string) (string, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but our HMAC algorithm.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tc.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.User.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.User.ID, nil
}
