package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/servir-hc/internal/model"
)

type medicalRecordRepository struct {
	BaseRepository
}

const medicalRecordColumns = `id, patient_id, user_id, date, chief_complaint, present_illness,
	physical_exam, diagnosis, treatment, notes, prescriptions, follow_up,
	created_at, updated_at`

func (r *medicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) (int64, error) {
	query := `
		INSERT INTO medical_records (
			patient_id, user_id, date, chief_complaint, present_illness,
			physical_exam, diagnosis, treatment, notes, prescriptions,
			follow_up, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}

	id, err := r.insert(ctx, query,
		record.PatientID,
		record.UserID,
		model.UTC(record.Date),
		record.ChiefComplaint,
		record.PresentIllness,
		record.PhysicalExam,
		record.Diagnosis,
		record.Treatment,
		record.Notes,
		record.Prescriptions,
		record.FollowUp,
		model.UTC(record.CreatedAt),
		model.UTC(record.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create medical record: %w", err)
	}

	record.ID = id
	return id, nil
}

func (r *medicalRecordRepository) Get(ctx context.Context, id int64) (*model.MedicalRecord, error) {
	var record model.MedicalRecord
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE id = ?`
	if err := r.get(ctx, &record, query, id); err != nil {
		return nil, notFound("medical record", err)
	}
	return &record, nil
}

func (r *medicalRecordRepository) Update(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		UPDATE medical_records SET
			date = ?,
			chief_complaint = ?,
			present_illness = ?,
			physical_exam = ?,
			diagnosis = ?,
			treatment = ?,
			notes = ?,
			prescriptions = ?,
			follow_up = ?,
			updated_at = ?
		WHERE id = ?
	`
	record.UpdatedAt = time.Now().UTC()

	return r.execOne(ctx, "medical record", query,
		model.UTC(record.Date),
		record.ChiefComplaint,
		record.PresentIllness,
		record.PhysicalExam,
		record.Diagnosis,
		record.Treatment,
		record.Notes,
		record.Prescriptions,
		record.FollowUp,
		record.UpdatedAt,
		record.ID,
	)
}

// ListByPatient returns the patient's records, most recent visit first.
func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.MedicalRecord, error) {
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records
		WHERE patient_id = ? ORDER BY date DESC, id DESC`
	records := []*model.MedicalRecord{}
	if err := r.selectAll(ctx, &records, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

func (r *medicalRecordRepository) ListByUser(ctx context.Context, userID int64) ([]*model.MedicalRecord, error) {
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE user_id = ? ORDER BY id`
	records := []*model.MedicalRecord{}
	if err := r.selectAll(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}
