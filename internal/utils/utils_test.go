package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken(t *testing.T) {
	_, err := NewAccessToken("", "admin", "ADMIN", 5)
	assert.ErrorIs(t, err, ErrNoSecret)

	tok, err := NewAccessToken("secret", "admin", "ADMIN", 5)
	require.NoError(t, err)

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
	assert.Equal(t, float64(tok.Exp.Unix()), claims["exp"])
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("pw", 4)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "pw"))
	assert.False(t, VerifyPassword(hash, "PW"))
	assert.False(t, VerifyPassword("", "pw"))

	assert.True(t, VerifyAdmin("admin", "admin", "pw", hash))
	assert.False(t, VerifyAdmin("root", "admin", "pw", hash))
}
