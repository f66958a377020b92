// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/servir-hc/internal/config"
	"github.com/jwalitptl/servir-hc/internal/model"
	"github.com/jwalitptl/servir-hc/internal/repository/sqlstore"
	"github.com/jwalitptl/servir-hc/pkg/logger"
)

// NewStore opens a fresh in-memory SQLite store that is closed when the test
// ends.
func NewStore(t *testing.T) *sqlstore.DB {
	t.Helper()

	db, err := sqlstore.NewDB(context.Background(), config.DatabaseConfig{
		Driver: sqlstore.DriverSQLite,
		Path:   ":memory:",
	}, logger.Nop())
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

// CreateUser inserts a practitioner with the given username and returns it.
func CreateUser(t *testing.T, db *sqlstore.DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		Username:         username,
		FullName:         "Dr. " + username,
		Email:            username + "@example.com",
		Specialty:        "General Medicine",
		LicenseNumber:    "LIC-" + username,
		PasswordHash:     "x",
		SecurityQuestion: "First pet?",
		SecurityAnswer:   "x",
	}
	_, err := db.Repos().Users.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

// NewPatient returns an unsaved patient owned by userID.
func NewPatient(userID int64, first, last, document string) *model.Patient {
	return &model.Patient{
		UserID:         userID,
		DocumentNumber: document,
		FirstName:      first,
		LastName:       last,
		BirthDate:      time.Date(1985, 3, 14, 0, 0, 0, 0, time.UTC),
		Gender:         model.GenderFemale,
		Phone:          "555-0100",
		Email:          "patient@example.com",
	}
}
