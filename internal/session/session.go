// Package session holds the single authenticated practitioner of the process.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jwalitptl/servir-hc/internal/model"
	"github.com/jwalitptl/servir-hc/pkg/auth"
	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
	"github.com/jwalitptl/servir-hc/pkg/logger"
)

// UserLoader reloads a user by id when a session is restored.
type UserLoader func(ctx context.Context, id int64) (*model.User, error)

// Session holds at most one user. The pointer to that user is signed and kept
// in a PointerStore so that Restore can pick it up after a restart.
type Session struct {
	mu      sync.RWMutex
	current *model.User

	tokens auth.JWTService
	store  PointerStore
	ttl    time.Duration
	log    *logger.Logger
}

func New(tokens auth.JWTService, store PointerStore, ttl time.Duration, log *logger.Logger) *Session {
	return &Session{
		tokens: tokens,
		store:  store,
		ttl:    ttl,
		log:    log,
	}
}

// Current returns the logged-in user, or nil.
func (s *Session) Current() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// UserID returns the logged-in user's id, or 0.
func (s *Session) UserID() int64 {
	if u := s.Current(); u != nil {
		return u.ID
	}
	return 0
}

func (s *Session) IsAuthenticated() bool {
	return s.Current() != nil
}

// Set replaces the current user and persists a pointer to it.
func (s *Session) Set(ctx context.Context, user *model.User) error {
	token, err := s.tokens.GenerateToken(user.ID, s.ttl)
	if err != nil {
		return fmt.Errorf("failed to sign session pointer: %w", err)
	}
	if err := s.store.Save(ctx, token, s.ttl); err != nil {
		return fmt.Errorf("failed to save session pointer: %w", err)
	}

	s.mu.Lock()
	s.current = user
	s.mu.Unlock()
	return nil
}

// Clear ends the session. The in-memory user is dropped even if the stored
// pointer cannot be removed.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.store.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete session pointer: %w", err)
	}
	return nil
}

// Restore rebuilds the session from the stored pointer. It returns nil when
// there is nothing valid to restore; invalid pointers are deleted.
func (s *Session) Restore(ctx context.Context, load UserLoader) (*model.User, error) {
	token, err := s.store.Load(ctx)
	if errors.Is(err, ErrNoPointer) {
		s.log.Debug("no stored session")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session pointer: %w", err)
	}

	userID, err := s.tokens.ValidateToken(token)
	if err != nil {
		s.log.Warn("discarding invalid session pointer", "error", err.Error())
		return nil, s.Clear(ctx)
	}

	user, err := load(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) || (err == nil && user == nil) {
		s.log.Warn("discarding session pointer to missing user", "user_id", userID)
		return nil, s.Clear(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reload session user: %w", err)
	}

	s.mu.Lock()
	s.current = user
	s.mu.Unlock()
	return user, nil
}
