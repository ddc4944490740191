package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour)
	sessionID := svc.NewSessionID()
	require.NotEmpty(t, sessionID)
	assert.NotContains(t, sessionID, "-")

	token, err := svc.IssueSessionToken(sessionID)
	require.NoError(t, err)

	claims, err := svc.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)
}

func TestValidateSessionTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService("secret-a", time.Hour)
	verifier := NewAuthService("secret-b", time.Hour)

	token, err := issuer.IssueSessionToken(issuer.NewSessionID())
	require.NoError(t, err)

	_, err = verifier.ValidateSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateSessionTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService("test-secret", -time.Minute)
	token, err := svc.IssueSessionToken(svc.NewSessionID())
	require.NoError(t, err)

	_, err = svc.ValidateSessionToken(token)
	assert.Error(t, err)
}

func TestValidateSessionTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour)
	_, err := svc.ValidateSessionToken("not.a.token")
	assert.Error(t, err)
}

func TestNewSessionIDsAreUnique(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := svc.NewSessionID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
