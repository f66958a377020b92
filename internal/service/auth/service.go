package auth

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jwalitptl/servir-hc/internal/model"
	"github.com/jwalitptl/servir-hc/internal/repository"
	"github.com/jwalitptl/servir-hc/internal/session"
	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
	"github.com/jwalitptl/servir-hc/pkg/logger"
	"github.com/jwalitptl/servir-hc/pkg/metrics"
	"github.com/jwalitptl/servir-hc/pkg/security"
	"github.com/jwalitptl/servir-hc/pkg/validator"
)

// DefaultMinPasswordLength applies when Config leaves it unset.
const DefaultMinPasswordLength = 6

type Config struct {
	MinPasswordLength int
}

type Service struct {
	users     repository.UserRepository
	hasher    security.Hasher
	session   *session.Session
	validator validator.Validator
	metrics   *metrics.Metrics
	log       *logger.Logger
	minLength int
}

func NewService(
	users repository.UserRepository,
	hasher security.Hasher,
	sess *session.Session,
	v validator.Validator,
	m *metrics.Metrics,
	log *logger.Logger,
	cfg Config,
) *Service {
	if cfg.MinPasswordLength < 1 {
		cfg.MinPasswordLength = DefaultMinPasswordLength
	}
	return &Service{
		users:     users,
		hasher:    hasher,
		session:   sess,
		validator: v,
		metrics:   m,
		log:       log.With("service", "auth"),
		minLength: cfg.MinPasswordLength,
	}
}

// Register creates a practitioner account and logs it in.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (user *model.User, err error) {
	defer func() { s.metrics.ObserveAuth("register", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.BadRequest(err.Error(), nil)
	}
	if err := s.checkPasswordLength(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		s.log.Error(err, "failed to check existing users")
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("username or email already registered", nil)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	answerHash, err := s.hasher.Hash(security.NormalizeAnswer(req.SecurityAnswer))
	if err != nil {
		return nil, fmt.Errorf("failed to hash security answer: %w", err)
	}

	user = &model.User{
		Username:         req.Username,
		FullName:         req.FullName,
		Email:            req.Email,
		Specialty:        req.Specialty,
		LicenseNumber:    req.LicenseNumber,
		PasswordHash:     passwordHash,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   answerHash,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if !apperrors.Is(err, apperrors.ErrAlreadyExists) {
			s.log.Error(err, "failed to create user", "username", req.Username)
		}
		return nil, err
	}

	if err := s.session.Set(ctx, user); err != nil {
		s.log.Error(err, "user registered but session not started", "user_id", user.ID)
		return user, apperrors.SessionNotStarted(err)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login starts a session for username. Unknown users and wrong passwords
// fail the same way.
func (s *Service) Login(ctx context.Context, username, password string) (user *model.User, err error) {
	defer func() { s.metrics.ObserveAuth("login", err) }()

	user, err = s.users.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(nil)
		}
		s.log.Error(err, "failed to load user")
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.Unauthorized(nil)
	}

	if err := s.session.Set(ctx, user); err != nil {
		s.log.Error(err, "failed to start session", "user_id", user.ID)
		return nil, err
	}

	s.log.Info("user logged in", "user_id", user.ID)
	return user, nil
}

// Logout ends the session. It never fails; a stale stored pointer is logged.
func (s *Service) Logout(ctx context.Context) {
	userID := s.session.UserID()
	if err := s.session.Clear(ctx); err != nil {
		s.log.Error(err, "failed to clear session pointer")
	}
	s.metrics.ObserveAuth("logout", nil)
	if userID != 0 {
		s.log.Info("user logged out", "user_id", userID)
	}
}

// GetSecurityQuestion returns the question shown before recovery.
func (s *Service) GetSecurityQuestion(ctx context.Context, username string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	return user.SecurityQuestion, nil
}

// RecoverPassword replaces the password when the security answer matches,
// compared case-insensitively.
func (s *Service) RecoverPassword(ctx context.Context, username, answer, newPassword string) (err error) {
	defer func() { s.metrics.ObserveAuth("recover", err) }()

	if err := s.checkPasswordLength(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Unauthorized(nil)
		}
		s.log.Error(err, "failed to load user")
		return err
	}

	if !s.hasher.Verify(security.NormalizeAnswer(answer), user.SecurityAnswer) {
		return apperrors.Unauthorized(nil)
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, passwordHash); err != nil {
		s.log.Error(err, "failed to update password", "user_id", user.ID)
		return err
	}

	s.log.Info("password recovered", "user_id", user.ID)
	return nil
}

// Restore picks up the session left by a previous process, if any.
func (s *Service) Restore(ctx context.Context) (*model.User, error) {
	user, err := s.session.Restore(ctx, s.users.Get)
	if err != nil {
		s.log.Error(err, "failed to restore session")
		return nil, err
	}
	if user != nil {
		s.log.Info("session restored", "user_id", user.ID)
	}
	return user, nil
}

// Me returns the logged-in practitioner.
func (s *Service) Me() (*model.User, error) {
	user := s.session.Current()
	if user == nil {
		return nil, apperrors.NoSession()
	}
	return user, nil
}

func (s *Service) checkPasswordLength(password string) error {
	if utf8.RuneCountInString(password) < s.minLength {
		return apperrors.BadRequest(
			fmt.Sprintf("password must be at least %d characters long", s.minLength), nil)
	}
	return nil
}
