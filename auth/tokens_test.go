package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentpress/control-plane/services"
)

const testIssuer = "agentpress-control-plane"

var testSecret = []byte("test-signing-secret")

func newService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, testIssuer, time.Hour)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService(t *testing.T) {
	t.Run("empty secret rejected", func(t *testing.T) {
		_, err := NewTokenService(nil, testIssuer, time.Hour)
		assert.Error(t, err)
	})

	t.Run("non-positive ttl defaults to an hour", func(t *testing.T) {
		svc, err := NewTokenService(testSecret, testIssuer, 0)
		require.NoError(t, err)

		token, err := svc.Issue("ops", "operator", "")
		require.NoError(t, err)

		claims, err := svc.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, int64(3600), claims.Exp-claims.Iat)
	})
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := newService(t)

	token, err := svc.Issue("newsbot", "agent", "3f1d2a44-0000-4000-8000-000000000001")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "newsbot", claims.Sub)
	assert.Equal(t, "agent", claims.Role)
	assert.Equal(t, "3f1d2a44-0000-4000-8000-000000000001", claims.AgentID)
	assert.Equal(t, testIssuer, claims.Iss)
	assert.Greater(t, claims.Exp, time.Now().Unix())
}

func TestTokenService_OperatorTokenWithoutAgent(t *testing.T) {
	svc := newService(t)

	token, err := svc.Issue("admin", "operator", "")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Role)
	assert.Empty(t, claims.AgentID)
}

func TestTokenService_WrongSecret(t *testing.T) {
	svc := newService(t)
	other, err := NewTokenService([]byte("a-different-secret"), testIssuer, time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue("newsbot", "agent", "")
	require.NoError(t, err)

	claims, err := other.ValidateToken(context.Background(), token)
	assert.Nil(t, claims)
	assert.True(t, services.IsUnauthorizedError(err))
}

func TestTokenService_WrongIssuer(t *testing.T) {
	svc := newService(t)
	other, err := NewTokenService(testSecret, "some-other-service", time.Hour)
	require.NoError(t, err)

	token, err := other.Issue("newsbot", "agent", "")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	assert.Nil(t, claims)
	assert.True(t, services.IsUnauthorizedError(err))
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc := newService(t)

	// Hand-craft a token that expired an hour ago, signed with the same key.
	past := time.Now().Add(-2 * time.Hour)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Role: "agent",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "newsbot",
			Issuer:    testIssuer,
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
	})
	signed, err := expired.SignedString(testSecret)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), signed)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, services.ErrTokenExpired)
}

func TestTokenService_GarbageToken(t *testing.T) {
	svc := newService(t)

	claims, err := svc.ValidateToken(context.Background(), "not.a.token")
	assert.Nil(t, claims)
	assert.True(t, services.IsUnauthorizedError(err))
}

// Tokens signed with an asymmetric algorithm are rejected even before
// signature verification.
func TestTokenService_RejectsNonHMACAlgorithm(t *testing.T) {
	svc := newService(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "newsbot",
			Issuer:  testIssuer,
		},
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), signed)
	assert.Nil(t, claims)
	assert.True(t, services.IsUnauthorizedError(err))
}
