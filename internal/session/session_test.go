package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/servir-hc/internal/model"
	"github.com/jwalitptl/servir-hc/pkg/auth"
	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
	"github.com/jwalitptl/servir-hc/pkg/logger"
)

type mockPointerStore struct {
	mock.Mock
}

func (m *mockPointerStore) Save(ctx context.Context, token string, ttl time.Duration) error {
	return m.Called(ctx, token, ttl).Error(0)
}

func (m *mockPointerStore) Load(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockPointerStore) Delete(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newTestSession(t *testing.T, store PointerStore) *Session {
	t.Helper()
	tokens, err := auth.NewJWTService("test-secret")
	require.NoError(t, err)
	return New(tokens, store, time.Hour, logger.Nop())
}

func loaderFor(users ...*model.User) UserLoader {
	return func(_ context.Context, id int64) (*model.User, error) {
		for _, u := range users {
			if u.ID == id {
				return u, nil
			}
		}
		return nil, apperrors.NotFound("user", nil)
	}
}

func testUser(id int64) *model.User {
	u := &model.User{Username: "drperez"}
	u.ID = id
	return u
}

func TestSetAndClear(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore("")
	require.NoError(t, err)
	s := newTestSession(t, store)

	assert.False(t, s.IsAuthenticated())
	assert.Zero(t, s.UserID())

	user := testUser(7)
	require.NoError(t, s.Set(ctx, user))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, int64(7), s.UserID())
	assert.Same(t, user, s.Current())

	require.NoError(t, s.Clear(ctx))
	assert.Nil(t, s.Current())
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoPointer)
}

func TestRestoreAcrossProcesses(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "session.cache")
	user := testUser(3)

	first, err := NewMemoryStore(file)
	require.NoError(t, err)
	require.NoError(t, newTestSession(t, first).Set(ctx, user))

	second, err := NewMemoryStore(file)
	require.NoError(t, err)
	restored := newTestSession(t, second)

	got, err := restored.Restore(ctx, loaderFor(user))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, restored.IsAuthenticated())
}

func TestRestoreAfterClearRestoresNothing(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore("")
	require.NoError(t, err)
	s := newTestSession(t, store)
	user := testUser(1)

	require.NoError(t, s.Set(ctx, user))
	require.NoError(t, s.Clear(ctx))

	got, err := s.Restore(ctx, loaderFor(user))
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, s.IsAuthenticated())
}

func TestRestoreDiscardsTamperedPointer(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore("")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "not-a-token", time.Hour))

	s := newTestSession(t, store)
	got, err := s.Restore(ctx, loaderFor(testUser(1)))
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoPointer)
}

func TestRestoreDiscardsPointerSignedWithOtherSecret(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore("")
	require.NoError(t, err)

	other, err := auth.NewJWTService("other-secret")
	require.NoError(t, err)
	token, err := other.GenerateToken(1, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, token, time.Hour))

	got, err := newTestSession(t, store).Restore(ctx, loaderFor(testUser(1)))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRestoreDiscardsDanglingPointer(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore("")
	require.NoError(t, err)
	s := newTestSession(t, store)
	require.NoError(t, s.Set(ctx, testUser(42)))

	got, err := newTestSession(t, store).Restore(ctx, loaderFor())
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoPointer)
}

func TestRestorePropagatesStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := new(mockPointerStore)
	store.On("Load", ctx).Return("", errors.New("redis down"))

	got, err := newTestSession(t, store).Restore(ctx, loaderFor())
	assert.Error(t, err)
	assert.Nil(t, got)
	store.AssertExpectations(t)
}

func TestSetFailsWhenPointerCannotBeSaved(t *testing.T) {
	ctx := context.Background()
	store := new(mockPointerStore)
	store.On("Save", ctx, mock.AnythingOfType("string"), time.Hour).Return(errors.New("disk full"))

	s := newTestSession(t, store)
	err := s.Set(ctx, testUser(1))
	assert.Error(t, err)
	assert.False(t, s.IsAuthenticated())
	store.AssertExpectations(t)
}
