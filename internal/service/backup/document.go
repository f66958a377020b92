package backup

import (
	"bytes"
	"encoding/json"

	"github.com/jwalitptl/servir-hc/internal/model"
	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
)

// envelope finds which top-level keys are present before entries are decoded.
type envelope struct {
	Version        string          `json:"version"`
	Patients       json.RawMessage `json:"patients"`
	MedicalRecords json.RawMessage `json:"medicalRecords"`
	Appointments   json.RawMessage `json:"appointments"`
}

type document struct {
	Patients       []*patientEntry
	MedicalRecords []*medicalRecordEntry
	Appointments   []*appointmentEntry
}

type patientEntry struct {
	ID               int64              `json:"id"`
	DocumentNumber   string             `json:"documentNumber"`
	FirstName        string             `json:"firstName" validate:"required"`
	LastName         string             `json:"lastName" validate:"required"`
	BirthDate        model.FlexibleTime `json:"birthDate"`
	Gender           string             `json:"gender" validate:"omitempty,oneof=M F Other"`
	Phone            string             `json:"phone"`
	Email            string             `json:"email"`
	Address          string             `json:"address"`
	EmergencyContact string             `json:"emergencyContact"`
	EmergencyPhone   string             `json:"emergencyPhone"`
	BloodType        string             `json:"bloodType"`
	Allergies        string             `json:"allergies"`
	MedicalHistory   string             `json:"medicalHistory"`
	CreatedAt        model.FlexibleTime `json:"createdAt"`
}

func (e *patientEntry) toModel(userID int64) *model.Patient {
	return &model.Patient{
		UserID:           userID,
		DocumentNumber:   e.DocumentNumber,
		FirstName:        e.FirstName,
		LastName:         e.LastName,
		BirthDate:        e.BirthDate.Time,
		Gender:           e.Gender,
		Phone:            e.Phone,
		Email:            e.Email,
		Address:          e.Address,
		EmergencyContact: e.EmergencyContact,
		EmergencyPhone:   e.EmergencyPhone,
		BloodType:        e.BloodType,
		Allergies:        e.Allergies,
		MedicalHistory:   e.MedicalHistory,
	}
}

type medicalRecordEntry struct {
	PatientID      int64              `json:"patientId" validate:"required"`
	Date           model.FlexibleTime `json:"date"`
	ChiefComplaint string             `json:"chiefComplaint"`
	PresentIllness string             `json:"presentIllness"`
	PhysicalExam   string             `json:"physicalExam"`
	Diagnosis      string             `json:"diagnosis"`
	Treatment      string             `json:"treatment"`
	Notes          string             `json:"notes"`
	Prescriptions  string             `json:"prescriptions"`
	FollowUp       string             `json:"followUp"`
	CreatedAt      model.FlexibleTime `json:"createdAt"`
}

func (e *medicalRecordEntry) toModel(userID, patientID int64) *model.MedicalRecord {
	return &model.MedicalRecord{
		PatientID:      patientID,
		UserID:         userID,
		Date:           e.Date.Time,
		ChiefComplaint: e.ChiefComplaint,
		PresentIllness: e.PresentIllness,
		PhysicalExam:   e.PhysicalExam,
		Diagnosis:      e.Diagnosis,
		Treatment:      e.Treatment,
		Notes:          e.Notes,
		Prescriptions:  e.Prescriptions,
		FollowUp:       e.FollowUp,
	}
}

type appointmentEntry struct {
	PatientID int64                   `json:"patientId" validate:"required"`
	Date      model.FlexibleTime      `json:"date"`
	Time      string                  `json:"time"`
	Reason    string                  `json:"reason"`
	Status    model.AppointmentStatus `json:"status" validate:"omitempty,oneof=scheduled completed cancelled no-show"`
	Notes     string                  `json:"notes"`
	CreatedAt model.FlexibleTime      `json:"createdAt"`
}

func (e *appointmentEntry) toModel(userID, patientID int64) *model.Appointment {
	status := e.Status
	if status == "" {
		status = model.AppointmentStatusScheduled
	}
	return &model.Appointment{
		PatientID: patientID,
		UserID:    userID,
		Date:      e.Date.Time,
		Time:      e.Time,
		Reason:    e.Reason,
		Status:    status,
		Notes:     e.Notes,
	}
}

// decode parses a backup. patients and medicalRecords must be present;
// appointments may be omitted.
func decode(data []byte) (*document, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, apperrors.BadRequest("invalid backup: malformed JSON", err)
	}
	if absent(env.Patients) || absent(env.MedicalRecords) {
		return nil, apperrors.BadRequest("invalid backup: patients and medicalRecords are required", nil)
	}
	if env.Version != "" && env.Version != model.BackupVersion {
		return nil, apperrors.BadRequest("invalid backup: unsupported version "+env.Version, nil)
	}

	doc := &document{}
	if err := json.Unmarshal(env.Patients, &doc.Patients); err != nil {
		return nil, apperrors.BadRequest("invalid backup: patients", err)
	}
	if err := json.Unmarshal(env.MedicalRecords, &doc.MedicalRecords); err != nil {
		return nil, apperrors.BadRequest("invalid backup: medicalRecords", err)
	}
	if !absent(env.Appointments) {
		if err := json.Unmarshal(env.Appointments, &doc.Appointments); err != nil {
			return nil, apperrors.BadRequest("invalid backup: appointments", err)
		}
	}

	if hasNull(doc.Patients) || hasNull(doc.MedicalRecords) || hasNull(doc.Appointments) {
		return nil, apperrors.BadRequest("invalid backup: null entry", nil)
	}
	return doc, nil
}

func hasNull[T any](entries []*T) bool {
	for _, e := range entries {
		if e == nil {
			return true
		}
	}
	return false
}

func absent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
