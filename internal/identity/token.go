package identity

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when an access token fails verification
var ErrInvalidToken = errors.New("invalid access token")

// TokenClaims are the claims the application reads from provider tokens
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenParser verifies HS256 access tokens issued by the identity provider
type TokenParser struct {
	secret []byte
}

// NewTokenParser creates a parser bound to the provider's signing secret
func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// Parse verifies the token signature and expiry and returns the provider
// user id (sub) and email.
func (p *TokenParser) Parse(tokenString string) (identityID, email string, err error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.Subject == "" || claims.Email == "" {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.Email, nil
}
