package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/servir-hc/internal/model"
	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
)

type userRepository struct {
	BaseRepository
}

const userColumns = `id, username, full_name, email, specialty, license_number,
	password_hash, security_question, security_answer, created_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) (int64, error) {
	query := `
		INSERT INTO users (
			username, full_name, email, specialty, license_number,
			password_hash, security_question, security_answer, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.CreatedAt = model.UTC(user.CreatedAt)

	id, err := r.insert(ctx, query,
		user.Username,
		user.FullName,
		user.Email,
		user.Specialty,
		user.LicenseNumber,
		user.PasswordHash,
		user.SecurityQuestion,
		user.SecurityAnswer,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.Conflict("username or email already registered", nil)
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id
	return id, nil
}

func (r *userRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = ?`, username); err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = ?`, email); err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`
	if err := r.get(ctx, &count, query, username, email); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	return r.execOne(ctx, "user", `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
}
