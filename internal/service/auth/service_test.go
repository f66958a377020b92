package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/servir-hc/internal/model"
	"github.com/jwalitptl/servir-hc/internal/repository"
	"github.com/jwalitptl/servir-hc/internal/session"
	tu "github.com/jwalitptl/servir-hc/internal/testutil"
	jwtauth "github.com/jwalitptl/servir-hc/pkg/auth"
	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
	"github.com/jwalitptl/servir-hc/pkg/logger"
	"github.com/jwalitptl/servir-hc/pkg/metrics"
	"github.com/jwalitptl/servir-hc/pkg/security"
	"github.com/jwalitptl/servir-hc/pkg/validator"
)

type fixture struct {
	svc     *Service
	session *session.Session
	users   repository.UserRepository
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, hasher security.Hasher) *fixture {
	t.Helper()
	db := tu.NewStore(t)
	sess := tu.NewSession(t)
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test")
	users := db.Repos().Users
	return &fixture{
		svc:     NewService(users, hasher, sess, validator.New(), m, logger.Nop(), Config{}),
		session: sess,
		users:   users,
		metrics: m,
	}
}

func registration(username, email string) *model.RegisterRequest {
	return &model.RegisterRequest{
		Username:         username,
		Password:         "secret123",
		Email:            email,
		FullName:         "Dr. Pedro Pérez",
		Specialty:        "Cardiology",
		LicenseNumber:    "MP-1234",
		SecurityQuestion: "Name of your first pet?",
		SecurityAnswer:   "Firulais",
	}
}

func TestRegisterThenLogin(t *testing.T) {
	for _, hasher := range []security.Hasher{security.NewSHA256Hasher(), security.NewBcryptHasher(4)} {
		ctx := context.Background()
		f := newFixture(t, hasher)

		user, err := f.svc.Register(ctx, registration("drperez", "p@x.com"))
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, user.ID, f.session.UserID())
		assert.NotEqual(t, "secret123", user.PasswordHash)

		f.svc.Logout(ctx)
		assert.False(t, f.session.IsAuthenticated())

		got, err := f.svc.Login(ctx, "drperez", "secret123")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.True(t, f.session.IsAuthenticated())
	}
}

func TestRegisterStoresSHA256Digests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, security.NewSHA256Hasher())

	_, err := f.svc.Register(ctx, registration("drperez", "p@x.com"))
	require.NoError(t, err)

	stored, err := f.users.GetByUsername(ctx, "drperez")
	require.NoError(t, err)
	assert.Equal(t, "fcf730b6d95236ecd3c9fc2d92d7b6b2bb061514961aec041d6c7a7192f592e4", stored.PasswordHash)

	answer, _ := security.NewSHA256Hasher().Hash("firulais")
	assert.Equal(t, answer, stored.SecurityAnswer)
}

func TestRegisterDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, security.NewSHA256Hasher())

	_, err := f.svc.Register(ctx, registration("drperez", "p@x.com"))
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, registration("drperez", "other@x.com"))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	_, err = f.svc.Register(ctx, registration("other", "p@x.com"))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	_, err = f.svc.Register(ctx, registration("DrPerez", "P@x.com"))
	assert.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.AuthAttempts.WithLabelValues("register", metrics.ResultFailure)))
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, security.NewSHA256Hasher())

	req := registration("drperez", "p@x.com")
	req.Password = "12345"
	_, err := f.svc.Register(ctx, req)
	assert.Equal(t, apperrors.ErrCodeBadRequest, apperrors.CodeOf(err))

	req = registration("drperez", "not-an-email")
	_, err = f.svc.Register(ctx, req)
	assert.Equal(t, apperrors.ErrCodeBadRequest, apperrors.CodeOf(err))

	req = registration("", "p@x.com")
	_, err = f.svc.Register(ctx, req)
	assert.Equal(t, apperrors.ErrCodeBadRequest, apperrors.CodeOf(err))
	assert.False(t, f.session.IsAuthenticated())
}

func TestLoginFailuresAreUniform(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, security.NewSHA256Hasher())
	_, err := f.svc.Register(ctx, registration("drperez", "p@x.com"))
	require.NoError(t, err)
	f.svc.Logout(ctx)

	_, unknown := f.svc.Login(ctx, "nobody", "secret123")
	_, wrong := f.svc.Login(ctx, "drperez", "wrong-password")

	assert.ErrorIs(t, unknown, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, wrong, apperrors.ErrInvalidCredentials)
	assert.Equal(t, unknown.Error(), wrong.Error())
	assert.False(t, f.session.IsAuthenticated())
}

func TestSecurityQuestion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, security.NewSHA256Hasher())
	_, err := f.svc.Register(ctx, registration("drperez", "p@x.com"))
	require.NoError(t, err)

	q, err := f.svc.GetSecurityQuestion(ctx, "drperez")
	require.NoError(t, err)
	assert.Equal(t, "Name of your first pet?", q)

	q, err = f.svc.GetSecurityQuestion(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, q)
}

func TestRecoverPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, security.NewSHA256Hasher())
	_, err := f.svc.Register(ctx, registration("drperez", "p@x.com"))
	require.NoError(t, err)
	f.svc.Logout(ctx)

	err = f.svc.RecoverPassword(ctx, "drperez", "wrong", "newpass1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	err = f.svc.RecoverPassword(ctx, "nobody", "firulais", "newpass1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	err = f.svc.RecoverPassword(ctx, "drperez", "FIRULAIS", "short")
	assert.Equal(t, apperrors.ErrCodeBadRequest, apperrors.CodeOf(err))

	require.NoError(t, f.svc.RecoverPassword(ctx, "drperez", "FIRULAIS", "newpass1"))

	_, err = f.svc.Login(ctx, "drperez", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "drperez", "newpass1")
	assert.NoError(t, err)
}

func TestRestoreAndMe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, security.NewSHA256Hasher())

	_, err := f.svc.Me()
	assert.ErrorIs(t, err, apperrors.ErrNoSession)

	user, err := f.svc.Register(ctx, registration("drperez", "p@x.com"))
	require.NoError(t, err)

	restored, err := f.svc.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, user.ID, restored.ID)

	me, err := f.svc.Me()
	require.NoError(t, err)
	assert.Equal(t, "drperez", me.Username)

	f.svc.Logout(ctx)
	restored, err = f.svc.Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, restored)
}

type pointerStoreMock struct {
	mock.Mock
}

func (m *pointerStoreMock) Save(ctx context.Context, token string, ttl time.Duration) error {
	return m.Called(ctx, token, ttl).Error(0)
}

func (m *pointerStoreMock) Load(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *pointerStoreMock) Delete(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestRegisterKeepsAccountWhenSessionFails(t *testing.T) {
	ctx := context.Background()
	db := tu.NewStore(t)
	users := db.Repos().Users

	store := new(pointerStoreMock)
	store.On("Save", mock.Anything, mock.Anything, time.Hour).Return(errors.New("store unavailable")).Once()
	store.On("Save", mock.Anything, mock.Anything, time.Hour).Return(nil)

	tokens, err := jwtauth.NewJWTService("test-secret")
	require.NoError(t, err)
	sess := session.New(tokens, store, time.Hour, logger.Nop())
	svc := NewService(users, security.NewSHA256Hasher(), sess, validator.New(), nil, logger.Nop(), Config{})

	user, err := svc.Register(ctx, registration("drperez", "p@x.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotStarted)
	assert.Equal(t, apperrors.ErrCodeUnavailable, apperrors.CodeOf(err))
	require.NotNil(t, user)
	assert.NotZero(t, user.ID)
	assert.False(t, sess.IsAuthenticated())

	stored, err := users.GetByUsername(ctx, "drperez")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)

	loggedIn, err := svc.Login(ctx, "drperez", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.True(t, sess.IsAuthenticated())
	store.AssertExpectations(t)
}
