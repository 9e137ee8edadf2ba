package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	m := NewJWTManager("test-secret", "book-ai")

	token, err := m.GenerateToken("user-42", "access", time.Minute)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "book-ai", claims.Issuer)
}

func TestJWTManager_ParseToken_Expired(t *testing.T) {
	m := NewJWTManager("test-secret", "book-ai")

	token, err := m.GenerateToken("user-42", "access", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_ParseToken_WrongSecret(t *testing.T) {
	m := NewJWTManager("test-secret", "book-ai")
	other := NewJWTManager("other-secret", "book-ai")

	token, err := m.GenerateToken("user-42", "access", time.Minute)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_GenerateTokenPair(t *testing.T) {
	m := NewJWTManager("test-secret", "book-ai")

	pair, err := m.GenerateTokenPair("user-42", time.Minute, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	access, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access", access.Type)

	refresh, err := m.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh.Type)
}
