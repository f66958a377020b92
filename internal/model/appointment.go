package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no-show"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

type Appointment struct {
	Base
	PatientID int64             `json:"patientId" db:"patient_id"`
	UserID    int64             `json:"userId" db:"user_id"`
	Date      time.Time         `json:"date" db:"date"`
	Time      string            `json:"time" db:"time"`
	Reason    string            `json:"reason" db:"reason"`
	Status    AppointmentStatus `json:"status" db:"status"`
	Notes     string            `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time         `json:"createdAt" db:"created_at"`
}

type AppointmentInput struct {
	PatientID int64     `json:"patientId"`
	Date      time.Time `json:"date" binding:"required"`
	Time      string    `json:"time" binding:"required"`
	Reason    string    `json:"reason" binding:"required"`
	Notes     string    `json:"notes"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=scheduled completed cancelled no-show"`
}
