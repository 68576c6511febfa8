package identity_test

import (
	"testing"
	"time"

	"github.com/cris-tech/gestao-api/internal/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenParser_Parse(t *testing.T) {
	parser := identity.NewTokenParser(testSecret)

	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "identity-1",
		"email": "ana@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	id, email, err := parser.Parse(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "identity-1", id)
	assert.Equal(t, "ana@example.com", email)
}

func TestTokenParser_Parse_WrongSecret(t *testing.T) {
	parser := identity.NewTokenParser(testSecret)

	tokenString := signToken(t, "other-secret", jwt.MapClaims{
		"sub":   "identity-1",
		"email": "ana@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	_, _, err := parser.Parse(tokenString)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestTokenParser_Parse_Expired(t *testing.T) {
	parser := identity.NewTokenParser(testSecret)

	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "identity-1",
		"email": "ana@example.com",
		"exp":   time.Now().Add(-time.Hour).Unix(),
	})

	_, _, err := parser.Parse(tokenString)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestTokenParser_Parse_MissingClaims(t *testing.T) {
	parser := identity.NewTokenParser(testSecret)

	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, _, err := parser.Parse(tokenString)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestTokenParser_Parse_Garbage(t *testing.T) {
	parser := identity.NewTokenParser(testSecret)

	_, _, err := parser.Parse("not-a-token")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}
