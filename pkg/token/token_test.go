package token

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CaronaCondominio/config"
)

func setup(t *testing.T) {
	t.Helper()
	config.Cfg.JWTSecret = "test-secret"
	config.Cfg.JWTExpireMinutes = 60
	config.Cfg.JWTRememberDays = 30
	require.NoError(t, Init())
}

func TestGenerateAndParse(t *testing.T) {
	setup(t)

	tok, expiresIn, err := GenerateAccessToken("42", ScopePersistent)
	require.NoError(t, err)
	assert.InDelta(t, 30*24*3600, expiresIn, 5)

	claims, err := ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, ScopePersistent, claims.Scope)
	assert.True(t, claims.Remember())
}

func TestUnknownScopeFallsBackToSession(t *testing.T) {
	setup(t)

	tok, expiresIn, err := GenerateAccessToken("42", "weird")
	require.NoError(t, err)
	assert.InDelta(t, 3600, expiresIn, 5)

	claims, err := ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, ScopeSession, claims.Scope)
	assert.False(t, claims.Remember())
}

func TestParseRejectsBadTokens(t *testing.T) {
	setup(t)

	_, err := ParseAccessToken("not-a-jwt")
	assert.Error(t, err)

	expired := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		IdentityKey: "42",
		"exp":       time.Now().Add(-time.Minute).Unix(),
	})
	s, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ParseAccessToken(s)
	assert.Error(t, err)

	foreign := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{IdentityKey: "42"})
	s, err = foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = ParseAccessToken(s)
	assert.Error(t, err)
}

func TestClaimsFromMap(t *testing.T) {
	c, err := ClaimsFromMap(map[string]interface{}{IdentityKey: float64(7)})
	require.NoError(t, err)
	assert.Equal(t, "7", c.UserID)
	assert.Equal(t, ScopeSession, c.Scope)

	_, err = ClaimsFromMap(map[string]interface{}{})
	assert.ErrorIs(t, err, ErrUserIDNotFound)
}
