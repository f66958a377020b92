package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/servir-hc/internal/model"
)

type appointmentRepository struct {
	BaseRepository
}

const appointmentColumns = `id, patient_id, user_id, date, time, reason, status, notes, created_at`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) (int64, error) {
	query := `
		INSERT INTO appointments (
			patient_id, user_id, date, time, reason, status, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = time.Now()
	}
	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusScheduled
	}

	id, err := r.insert(ctx, query,
		appointment.PatientID,
		appointment.UserID,
		model.UTC(appointment.Date),
		appointment.Time,
		appointment.Reason,
		appointment.Status,
		appointment.Notes,
		model.UTC(appointment.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create appointment: %w", err)
	}

	appointment.ID = id
	return id, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	var appointment model.Appointment
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ?`
	if err := r.get(ctx, &appointment, query, id); err != nil {
		return nil, notFound("appointment", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error {
	return r.execOne(ctx, "appointment", `UPDATE appointments SET status = ? WHERE id = ?`, status, id)
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE patient_id = ? ORDER BY date, id`
	appointments := []*model.Appointment{}
	if err := r.selectAll(ctx, &appointments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE user_id = ? ORDER BY id`
	appointments := []*model.Appointment{}
	if err := r.selectAll(ctx, &appointments, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
