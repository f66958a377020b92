package model

import "time"

// Patient genders as stored in backups.
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "Other"
)

type Patient struct {
	Base
	DocumentNumber   string    `json:"documentNumber" db:"document_number"`
	FirstName        string    `json:"firstName" db:"first_name"`
	LastName         string    `json:"lastName" db:"last_name"`
	BirthDate        time.Time `json:"birthDate" db:"birth_date"`
	Gender           string    `json:"gender" db:"gender"`
	Phone            string    `json:"phone" db:"phone"`
	Email            string    `json:"email" db:"email"`
	Address          string    `json:"address" db:"address"`
	EmergencyContact string    `json:"emergencyContact" db:"emergency_contact"`
	EmergencyPhone   string    `json:"emergencyPhone" db:"emergency_phone"`
	BloodType        string    `json:"bloodType,omitempty" db:"blood_type"`
	Allergies        string    `json:"allergies,omitempty" db:"allergies"`
	MedicalHistory   string    `json:"medicalHistory,omitempty" db:"medical_history"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
	UserID           int64     `json:"userId" db:"user_id"`
}

// PatientInput holds the caller-supplied fields of a new patient.
type PatientInput struct {
	DocumentNumber   string    `json:"documentNumber" binding:"required"`
	FirstName        string    `json:"firstName" binding:"required"`
	LastName         string    `json:"lastName" binding:"required"`
	BirthDate        time.Time `json:"birthDate" binding:"required"`
	Gender           string    `json:"gender" binding:"required,oneof=M F Other"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email" binding:"omitempty,email"`
	Address          string    `json:"address"`
	EmergencyContact string    `json:"emergencyContact"`
	EmergencyPhone   string    `json:"emergencyPhone"`
	BloodType        string    `json:"bloodType"`
	Allergies        string    `json:"allergies"`
	MedicalHistory   string    `json:"medicalHistory"`
}

// PatientUpdate enumerates the mutable patient fields; nil leaves a field as is.
type PatientUpdate struct {
	DocumentNumber   *string    `json:"documentNumber"`
	FirstName        *string    `json:"firstName"`
	LastName         *string    `json:"lastName"`
	BirthDate        *time.Time `json:"birthDate"`
	Gender           *string    `json:"gender" binding:"omitempty,oneof=M F Other"`
	Phone            *string    `json:"phone"`
	Email            *string    `json:"email" binding:"omitempty,email"`
	Address          *string    `json:"address"`
	EmergencyContact *string    `json:"emergencyContact"`
	EmergencyPhone   *string    `json:"emergencyPhone"`
	BloodType        *string    `json:"bloodType"`
	Allergies        *string    `json:"allergies"`
	MedicalHistory   *string    `json:"medicalHistory"`
}

// Apply merges the set fields of u into p.
func (u *PatientUpdate) Apply(p *Patient) {
	setString(&p.DocumentNumber, u.DocumentNumber)
	setString(&p.FirstName, u.FirstName)
	setString(&p.LastName, u.LastName)
	if u.BirthDate != nil {
		p.BirthDate = UTC(*u.BirthDate)
	}
	setString(&p.Gender, u.Gender)
	setString(&p.Phone, u.Phone)
	setString(&p.Email, u.Email)
	setString(&p.Address, u.Address)
	setString(&p.EmergencyContact, u.EmergencyContact)
	setString(&p.EmergencyPhone, u.EmergencyPhone)
	setString(&p.BloodType, u.BloodType)
	setString(&p.Allergies, u.Allergies)
	setString(&p.MedicalHistory, u.MedicalHistory)
}

// FullName is "First Last".
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
