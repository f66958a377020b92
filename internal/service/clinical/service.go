// Package clinical manages the patients, medical records and appointments of
// the logged-in practitioner.
package clinical

import (
	"context"

	"github.com/jwalitptl/servir-hc/internal/model"
	"github.com/jwalitptl/servir-hc/internal/repository"
	"github.com/jwalitptl/servir-hc/internal/session"
	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
	"github.com/jwalitptl/servir-hc/pkg/logger"
)

type Service struct {
	patients     repository.PatientRepository
	records      repository.MedicalRecordRepository
	appointments repository.AppointmentRepository
	session      *session.Session
	log          *logger.Logger
}

func NewService(repos repository.Repositories, sess *session.Session, log *logger.Logger) *Service {
	return &Service{
		patients:     repos.Patients,
		records:      repos.MedicalRecords,
		appointments: repos.Appointments,
		session:      sess,
		log:          log.With("service", "clinical"),
	}
}

func (s *Service) currentUserID() (int64, error) {
	id := s.session.UserID()
	if id == 0 {
		return 0, apperrors.NoSession()
	}
	return id, nil
}

// ownedPatient loads a patient of userID. Patients of other users are
// reported as not found.
func (s *Service) ownedPatient(ctx context.Context, userID, patientID int64) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			s.log.Error(err, "failed to load patient", "patient_id", patientID)
		}
		return nil, err
	}
	if patient.UserID != userID {
		return nil, apperrors.NotFound("patient", nil)
	}
	return patient, nil
}
