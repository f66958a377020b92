package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/servir-hc/internal/session"
	"github.com/jwalitptl/servir-hc/pkg/auth"
	"github.com/jwalitptl/servir-hc/pkg/logger"
)

// NewSession returns an empty session backed by an unpersisted memory store.
func NewSession(t *testing.T) *session.Session {
	t.Helper()

	tokens, err := auth.NewJWTService("test-secret")
	require.NoError(t, err)
	store, err := session.NewMemoryStore("")
	require.NoError(t, err)
	return session.New(tokens, store, time.Hour, logger.Nop())
}
