package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeNotFound ErrorCode = iota + 1000
	ErrCodeBadRequest
	ErrCodeUnauthorized
	ErrCodeForbidden
	ErrCodeConflict
	ErrCodeInternal
	ErrCodeUnavailable
)

// Sentinels checked with errors.Is through any amount of wrapping.
var (
	ErrNotFound           = stderrors.New("not found")
	ErrNoSession          = stderrors.New("no authenticated session")
	ErrInvalidCredentials = stderrors.New("invalid credentials")
	ErrAlreadyExists      = stderrors.New("already exists")
	ErrInvalidInput       = stderrors.New("invalid input")
	ErrSessionNotStarted  = stderrors.New("session not started")
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	if err == nil {
		err = ErrNotFound
	}
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	if err == nil {
		err = ErrInvalidInput
	}
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewConflict(message string, err error) *AppError {
	if err == nil {
		err = ErrAlreadyExists
	}
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Conflict(message string, err error) *AppError {
	return NewConflict(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	if err == nil {
		err = ErrInvalidCredentials
	}
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: "invalid credentials",
		Err:     err,
	}
}

func NoSession() *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: "not logged in",
		Err:     ErrNoSession,
	}
}

// SessionNotStarted reports an account that was created but could not be
// logged in. The account is kept; the caller logs in to continue.
func SessionNotStarted(err error) *AppError {
	return &AppError{
		Code:    ErrCodeUnavailable,
		Message: "account created, log in to continue",
		Err:     fmt.Errorf("%w: %w", ErrSessionNotStarted, err),
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeForbidden,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case stderrors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	case stderrors.Is(err, ErrNoSession), stderrors.Is(err, ErrInvalidCredentials):
		return ErrCodeUnauthorized
	case stderrors.Is(err, ErrAlreadyExists):
		return ErrCodeConflict
	case stderrors.Is(err, ErrInvalidInput):
		return ErrCodeBadRequest
	}
	return ErrCodeInternal
}

// Is and As re-export the standard helpers so callers need one import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }
