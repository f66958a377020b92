package repository

import (
	"context"

	"github.com/jwalitptl/servir-hc/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) (int64, error)
		Get(ctx context.Context, id int64) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
		UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) (int64, error)
		Get(ctx context.Context, id int64) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		ListByUser(ctx context.Context, userID int64) ([]*model.Patient, error)
		Search(ctx context.Context, userID int64, query string) ([]*model.Patient, error)
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) (int64, error)
		Get(ctx context.Context, id int64) (*model.MedicalRecord, error)
		Update(ctx context.Context, record *model.MedicalRecord) error
		ListByPatient(ctx context.Context, patientID int64) ([]*model.MedicalRecord, error)
		ListByUser(ctx context.Context, userID int64) ([]*model.MedicalRecord, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) (int64, error)
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error
		ListByPatient(ctx context.Context, patientID int64) ([]*model.Appointment, error)
		ListByUser(ctx context.Context, userID int64) ([]*model.Appointment, error)
	}

	// Repositories groups the four tables, bound either to the database or
	// to one transaction.
	Repositories struct {
		Users          UserRepository
		Patients       PatientRepository
		MedicalRecords MedicalRecordRepository
		Appointments   AppointmentRepository
	}

	// Store is the local store: table access plus all-or-nothing batches.
	Store interface {
		Repos() Repositories
		WithTx(ctx context.Context, fn func(Repositories) error) error
		Ping(ctx context.Context) error
		Close() error
	}
)
