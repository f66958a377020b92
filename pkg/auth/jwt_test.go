package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTServiceRoundTrip(t *testing.T) {
	svc, err := NewJWTService("test-secret")
	require.NoError(t, err)

	token, err := svc.GenerateToken(42, time.Hour)
	require.NoError(t, err)

	id, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestJWTServiceRejects(t *testing.T) {
	svc, err := NewJWTService("test-secret")
	require.NoError(t, err)
	other, err := NewJWTService("another-secret")
	require.NoError(t, err)

	token, err := other.GenerateToken(7, time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs := svc.(*hmacService)
	hs.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := svc.GenerateToken(7, time.Hour)
	require.NoError(t, err)
	hs.now = time.Now
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService("")
	assert.Error(t, err)
}
