package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/servir-hc/internal/model"
)

type patientRepository struct {
	BaseRepository
}

const patientColumns = `id, user_id, document_number, first_name, last_name, birth_date,
	gender, phone, email, address, emergency_contact, emergency_phone,
	blood_type, allergies, medical_history, created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) (int64, error) {
	query := `
		INSERT INTO patients (
			user_id, document_number, first_name, last_name, birth_date,
			gender, phone, email, address, emergency_contact, emergency_phone,
			blood_type, allergies, medical_history, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = now
	}
	if patient.UpdatedAt.IsZero() {
		patient.UpdatedAt = now
	}

	id, err := r.insert(ctx, query,
		patient.UserID,
		patient.DocumentNumber,
		patient.FirstName,
		patient.LastName,
		model.UTC(patient.BirthDate),
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.EmergencyContact,
		patient.EmergencyPhone,
		patient.BloodType,
		patient.Allergies,
		patient.MedicalHistory,
		model.UTC(patient.CreatedAt),
		model.UTC(patient.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create patient: %w", err)
	}

	patient.ID = id
	return id, nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	var patient model.Patient
	if err := r.get(ctx, &patient, `SELECT `+patientColumns+` FROM patients WHERE id = ?`, id); err != nil {
		return nil, notFound("patient", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			document_number = ?,
			first_name = ?,
			last_name = ?,
			birth_date = ?,
			gender = ?,
			phone = ?,
			email = ?,
			address = ?,
			emergency_contact = ?,
			emergency_phone = ?,
			blood_type = ?,
			allergies = ?,
			medical_history = ?,
			updated_at = ?
		WHERE id = ?
	`
	patient.UpdatedAt = time.Now().UTC()

	return r.execOne(ctx, "patient", query,
		patient.DocumentNumber,
		patient.FirstName,
		patient.LastName,
		model.UTC(patient.BirthDate),
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.EmergencyContact,
		patient.EmergencyPhone,
		patient.BloodType,
		patient.Allergies,
		patient.MedicalHistory,
		patient.UpdatedAt,
		patient.ID,
	)
}

func (r *patientRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE user_id = ? ORDER BY id`
	patients := []*model.Patient{}
	if err := r.selectAll(ctx, &patients, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// Search narrows the user's patients by the user_id index, then matches
// names case-insensitively and the document number as a substring. The
// match runs in Go because SQL LOWER is ASCII-only in SQLite.
func (r *patientRepository) Search(ctx context.Context, userID int64, query string) ([]*model.Patient, error) {
	patients, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return patients, nil
	}

	needle := strings.ToLower(query)
	matches := []*model.Patient{}
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.FirstName), needle) ||
			strings.Contains(strings.ToLower(p.LastName), needle) ||
			strings.Contains(p.DocumentNumber, query) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}
