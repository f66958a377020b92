package clinical

import (
	"context"

	"github.com/jwalitptl/servir-hc/internal/model"
	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
)

// AddMedicalRecord documents an encounter with one of the current user's
// patients.
func (s *Service) AddMedicalRecord(ctx context.Context, patientID int64, in *model.MedicalRecordInput) (*model.MedicalRecord, error) {
	userID, err := s.currentUserID()
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedPatient(ctx, userID, patientID); err != nil {
		return nil, err
	}

	record := &model.MedicalRecord{
		PatientID:      patientID,
		UserID:         userID,
		Date:           model.UTC(in.Date),
		ChiefComplaint: in.ChiefComplaint,
		PresentIllness: in.PresentIllness,
		PhysicalExam:   in.PhysicalExam,
		Diagnosis:      in.Diagnosis,
		Treatment:      in.Treatment,
		Notes:          in.Notes,
		Prescriptions:  in.Prescriptions,
		FollowUp:       in.FollowUp,
	}
	if _, err := s.records.Create(ctx, record); err != nil {
		s.log.Error(err, "failed to add medical record", "patient_id", patientID)
		return nil, err
	}
	return record, nil
}

// GetMedicalRecords returns the patient's records, most recent visit first.
func (s *Service) GetMedicalRecords(ctx context.Context, patientID int64) ([]*model.MedicalRecord, error) {
	userID, err := s.currentUserID()
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedPatient(ctx, userID, patientID); err != nil {
		return nil, err
	}

	records, err := s.records.ListByPatient(ctx, patientID)
	if err != nil {
		s.log.Error(err, "failed to list medical records", "patient_id", patientID)
		return nil, err
	}
	return records, nil
}

func (s *Service) UpdateMedicalRecord(ctx context.Context, id int64, update *model.MedicalRecordUpdate) (*model.MedicalRecord, error) {
	userID, err := s.currentUserID()
	if err != nil {
		return nil, err
	}

	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, apperrors.NotFound("medical record", nil)
	}

	update.Apply(record)
	if err := s.records.Update(ctx, record); err != nil {
		s.log.Error(err, "failed to update medical record", "record_id", id)
		return nil, err
	}
	return record, nil
}
