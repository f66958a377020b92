package clinical

import (
	"context"
	"fmt"

	"github.com/jwalitptl/servir-hc/internal/model"
	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
)

// AddAppointment schedules a visit for one of the current user's patients.
func (s *Service) AddAppointment(ctx context.Context, patientID int64, in *model.AppointmentInput) (*model.Appointment, error) {
	userID, err := s.currentUserID()
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedPatient(ctx, userID, patientID); err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		PatientID: patientID,
		UserID:    userID,
		Date:      model.UTC(in.Date),
		Time:      in.Time,
		Reason:    in.Reason,
		Status:    model.AppointmentStatusScheduled,
		Notes:     in.Notes,
	}
	if _, err := s.appointments.Create(ctx, appointment); err != nil {
		s.log.Error(err, "failed to add appointment", "patient_id", patientID)
		return nil, err
	}
	return appointment, nil
}

func (s *Service) ListAppointments(ctx context.Context, patientID int64) ([]*model.Appointment, error) {
	userID, err := s.currentUserID()
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedPatient(ctx, userID, patientID); err != nil {
		return nil, err
	}

	appointments, err := s.appointments.ListByPatient(ctx, patientID)
	if err != nil {
		s.log.Error(err, "failed to list appointments", "patient_id", patientID)
		return nil, err
	}
	return appointments, nil
}

// UpdateAppointmentStatus moves an appointment to any of the known statuses.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, id int64, status model.AppointmentStatus) (*model.Appointment, error) {
	userID, err := s.currentUserID()
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown appointment status %q", status), nil)
	}

	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.UserID != userID {
		return nil, apperrors.NotFound("appointment", nil)
	}

	if err := s.appointments.UpdateStatus(ctx, id, status); err != nil {
		s.log.Error(err, "failed to update appointment status", "appointment_id", id)
		return nil, err
	}
	appointment.Status = status
	return appointment, nil
}
