package clinical

import (
	"context"

	"github.com/jwalitptl/servir-hc/internal/model"
)

// AddPatient stores a new patient owned by the current user.
func (s *Service) AddPatient(ctx context.Context, in *model.PatientInput) (*model.Patient, error) {
	userID, err := s.currentUserID()
	if err != nil {
		return nil, err
	}

	patient := &model.Patient{
		UserID:           userID,
		DocumentNumber:   in.DocumentNumber,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		BirthDate:        model.UTC(in.BirthDate),
		Gender:           in.Gender,
		Phone:            in.Phone,
		Email:            in.Email,
		Address:          in.Address,
		EmergencyContact: in.EmergencyContact,
		EmergencyPhone:   in.EmergencyPhone,
		BloodType:        in.BloodType,
		Allergies:        in.Allergies,
		MedicalHistory:   in.MedicalHistory,
	}
	if _, err := s.patients.Create(ctx, patient); err != nil {
		s.log.Error(err, "failed to add patient", "user_id", userID)
		return nil, err
	}
	return patient, nil
}

// GetPatients lists the current user's patients in insertion order.
func (s *Service) GetPatients(ctx context.Context) ([]*model.Patient, error) {
	userID, err := s.currentUserID()
	if err != nil {
		return nil, err
	}

	patients, err := s.patients.ListByUser(ctx, userID)
	if err != nil {
		s.log.Error(err, "failed to list patients", "user_id", userID)
		return nil, err
	}
	return patients, nil
}

// SearchPatients matches first or last name case-insensitively, or the
// document number as a substring. An empty query lists every patient.
func (s *Service) SearchPatients(ctx context.Context, query string) ([]*model.Patient, error) {
	userID, err := s.currentUserID()
	if err != nil {
		return nil, err
	}

	patients, err := s.patients.Search(ctx, userID, query)
	if err != nil {
		s.log.Error(err, "failed to search patients", "user_id", userID)
		return nil, err
	}
	return patients, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	userID, err := s.currentUserID()
	if err != nil {
		return nil, err
	}
	return s.ownedPatient(ctx, userID, id)
}

// UpdatePatient applies the set fields of update and refreshes updatedAt.
func (s *Service) UpdatePatient(ctx context.Context, id int64, update *model.PatientUpdate) (*model.Patient, error) {
	userID, err := s.currentUserID()
	if err != nil {
		return nil, err
	}

	patient, err := s.ownedPatient(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	update.Apply(patient)
	if err := s.patients.Update(ctx, patient); err != nil {
		s.log.Error(err, "failed to update patient", "patient_id", id)
		return nil, err
	}
	return patient, nil
}
