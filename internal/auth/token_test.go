package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, expiresAt, err := tm.GenerateToken("chat-frontend", []string{ScopeChat, ScopeEvents})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "chat-frontend", claims.ServiceName)
	assert.True(t, claims.HasScope(ScopeChat))
	assert.True(t, claims.HasScope(ScopeEvents))
	assert.False(t, claims.HasScope(ScopeMonitor))
}

func TestTokenWrongSecretRejected(t *testing.T) {
	issuer := NewTokenManager("secret-a", 60)
	verifier := NewTokenManager("secret-b", 60)

	token, _, err := issuer.GenerateToken("metrics-shipper", []string{ScopeMonitor})
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.Error(t, err)
}

func TestTokenGarbageRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	_, err := tm.ParseToken("not-a-token")
	require.Error(t, err)
}
