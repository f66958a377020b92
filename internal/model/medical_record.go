package model

import "time"

// MedicalRecord documents one clinical encounter.
type MedicalRecord struct {
	Base
	PatientID      int64     `json:"patientId" db:"patient_id"`
	UserID         int64     `json:"userId" db:"user_id"`
	Date           time.Time `json:"date" db:"date"`
	ChiefComplaint string    `json:"chiefComplaint" db:"chief_complaint"`
	PresentIllness string    `json:"presentIllness" db:"present_illness"`
	PhysicalExam   string    `json:"physicalExam" db:"physical_exam"`
	Diagnosis      string    `json:"diagnosis" db:"diagnosis"`
	Treatment      string    `json:"treatment" db:"treatment"`
	Notes          string    `json:"notes,omitempty" db:"notes"`
	Prescriptions  string    `json:"prescriptions,omitempty" db:"prescriptions"`
	FollowUp       string    `json:"followUp,omitempty" db:"follow_up"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

type MedicalRecordInput struct {
	PatientID      int64     `json:"patientId"`
	Date           time.Time `json:"date" binding:"required"`
	ChiefComplaint string    `json:"chiefComplaint" binding:"required"`
	PresentIllness string    `json:"presentIllness" binding:"required"`
	PhysicalExam   string    `json:"physicalExam" binding:"required"`
	Diagnosis      string    `json:"diagnosis" binding:"required"`
	Treatment      string    `json:"treatment" binding:"required"`
	Notes          string    `json:"notes"`
	Prescriptions  string    `json:"prescriptions"`
	FollowUp       string    `json:"followUp"`
}

// MedicalRecordUpdate enumerates the mutable content fields of a record.
type MedicalRecordUpdate struct {
	Date           *time.Time `json:"date"`
	ChiefComplaint *string    `json:"chiefComplaint"`
	PresentIllness *string    `json:"presentIllness"`
	PhysicalExam   *string    `json:"physicalExam"`
	Diagnosis      *string    `json:"diagnosis"`
	Treatment      *string    `json:"treatment"`
	Notes          *string    `json:"notes"`
	Prescriptions  *string    `json:"prescriptions"`
	FollowUp       *string    `json:"followUp"`
}

func (u *MedicalRecordUpdate) Apply(r *MedicalRecord) {
	if u.Date != nil {
		r.Date = UTC(*u.Date)
	}
	setString(&r.ChiefComplaint, u.ChiefComplaint)
	setString(&r.PresentIllness, u.PresentIllness)
	setString(&r.PhysicalExam, u.PhysicalExam)
	setString(&r.Diagnosis, u.Diagnosis)
	setString(&r.Treatment, u.Treatment)
	setString(&r.Notes, u.Notes)
	setString(&r.Prescriptions, u.Prescriptions)
	setString(&r.FollowUp, u.FollowUp)
}
