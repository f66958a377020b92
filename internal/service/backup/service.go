// Package backup exports a practitioner's data to a portable JSON document
// and imports such documents additively.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwalitptl/servir-hc/internal/model"
	"github.com/jwalitptl/servir-hc/internal/repository"
	"github.com/jwalitptl/servir-hc/internal/session"
	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
	"github.com/jwalitptl/servir-hc/pkg/logger"
	"github.com/jwalitptl/servir-hc/pkg/metrics"
	"github.com/jwalitptl/servir-hc/pkg/validator"
)

// ImportResult counts the entities created by one import.
type ImportResult struct {
	Patients       int `json:"patients"`
	MedicalRecords int `json:"medicalRecords"`
	Appointments   int `json:"appointments"`
}

type Service struct {
	store     repository.Store
	session   *session.Session
	validator validator.Validator
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       func() time.Time
}

func NewService(store repository.Store, sess *session.Session, v validator.Validator, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		session:   sess,
		validator: v,
		metrics:   m,
		log:       log.With("service", "backup"),
		now:       time.Now,
	}
}

// BackupFilename is the download name of an export taken at t.
func BackupFilename(appName string, t time.Time) string {
	return fmt.Sprintf("%s-backup-%s.json", appName, t.Format("2006-01-02"))
}

// Export collects everything the current user owns.
func (s *Service) Export(ctx context.Context) (doc *model.BackupDocument, err error) {
	defer func() { s.metrics.ObserveBackup("export", err) }()

	user := s.session.Current()
	if user == nil {
		return nil, apperrors.NoSession()
	}

	repos := s.store.Repos()
	patients, err := repos.Patients.ListByUser(ctx, user.ID)
	if err != nil {
		s.log.Error(err, "failed to export patients", "user_id", user.ID)
		return nil, err
	}
	records, err := repos.MedicalRecords.ListByUser(ctx, user.ID)
	if err != nil {
		s.log.Error(err, "failed to export medical records", "user_id", user.ID)
		return nil, err
	}
	appointments, err := repos.Appointments.ListByUser(ctx, user.ID)
	if err != nil {
		s.log.Error(err, "failed to export appointments", "user_id", user.ID)
		return nil, err
	}

	s.log.Info("data exported",
		"user_id", user.ID,
		"patients", len(patients),
		"medical_records", len(records),
		"appointments", len(appointments),
	)
	return &model.BackupDocument{
		Version:        model.BackupVersion,
		ExportDate:     s.now().UTC(),
		User:           user.Summary(),
		Patients:       patients,
		MedicalRecords: records,
		Appointments:   appointments,
	}, nil
}

// ExportJSON is Export serialized with two-space indentation.
func (s *Service) ExportJSON(ctx context.Context) ([]byte, error) {
	doc, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.log.Error(err, "failed to encode backup")
		return nil, apperrors.Internal(err)
	}
	return data, nil
}

// Import adds every entity of data to the current user's store. Nothing is
// written unless every entry is valid.
func (s *Service) Import(ctx context.Context, data []byte) (result *ImportResult, err error) {
	defer func() { s.metrics.ObserveBackup("import", err) }()

	userID := s.session.UserID()
	if userID == 0 {
		return nil, apperrors.NoSession()
	}

	doc, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := s.validate(doc); err != nil {
		return nil, err
	}

	result = &ImportResult{}
	err = s.store.WithTx(ctx, func(repos repository.Repositories) error {
		return s.insert(ctx, repos, userID, doc, result)
	})
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.ErrCodeBadRequest {
			s.log.Error(err, "import rolled back", "user_id", userID)
		}
		return nil, err
	}

	s.metrics.AddImported("patients", result.Patients)
	s.metrics.AddImported("medical_records", result.MedicalRecords)
	s.metrics.AddImported("appointments", result.Appointments)
	s.log.Info("data imported",
		"user_id", userID,
		"patients", result.Patients,
		"medical_records", result.MedicalRecords,
		"appointments", result.Appointments,
	)
	return result, nil
}

func (s *Service) validate(doc *document) error {
	for i, p := range doc.Patients {
		if err := s.validator.Validate(p); err != nil {
			return malformed("patients", i, err)
		}
	}
	for i, r := range doc.MedicalRecords {
		if err := s.validator.Validate(r); err != nil {
			return malformed("medicalRecords", i, err)
		}
		if r.Date.IsZero() {
			return malformed("medicalRecords", i, fmt.Errorf("date is required"))
		}
	}
	for i, a := range doc.Appointments {
		if err := s.validator.Validate(a); err != nil {
			return malformed("appointments", i, err)
		}
		if a.Date.IsZero() {
			return malformed("appointments", i, fmt.Errorf("date is required"))
		}
	}
	return nil
}

func (s *Service) insert(ctx context.Context, repos repository.Repositories, userID int64, doc *document, result *ImportResult) error {
	now := s.now().UTC()
	created := func(t model.FlexibleTime) time.Time {
		if t.IsZero() {
			return now
		}
		return t.Time
	}

	patientIDs := make(map[int64]int64, len(doc.Patients))
	for i, e := range doc.Patients {
		if _, dup := patientIDs[e.ID]; dup && e.ID != 0 {
			return malformed("patients", i, fmt.Errorf("duplicate id %d", e.ID))
		}
		patient := e.toModel(userID)
		patient.CreatedAt = created(e.CreatedAt)
		patient.UpdatedAt = now

		id, err := repos.Patients.Create(ctx, patient)
		if err != nil {
			return fmt.Errorf("failed to import patient %d: %w", i, err)
		}
		if e.ID != 0 {
			patientIDs[e.ID] = id
		}
		result.Patients++
	}

	for i, e := range doc.MedicalRecords {
		patientID, ok := patientIDs[e.PatientID]
		if !ok {
			return malformed("medicalRecords", i, fmt.Errorf("unknown patientId %d", e.PatientID))
		}
		record := e.toModel(userID, patientID)
		record.CreatedAt = created(e.CreatedAt)
		record.UpdatedAt = now

		if _, err := repos.MedicalRecords.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to import medical record %d: %w", i, err)
		}
		result.MedicalRecords++
	}

	for i, e := range doc.Appointments {
		patientID, ok := patientIDs[e.PatientID]
		if !ok {
			return malformed("appointments", i, fmt.Errorf("unknown patientId %d", e.PatientID))
		}
		appointment := e.toModel(userID, patientID)
		appointment.CreatedAt = created(e.CreatedAt)

		if _, err := repos.Appointments.Create(ctx, appointment); err != nil {
			return fmt.Errorf("failed to import appointment %d: %w", i, err)
		}
		result.Appointments++
	}
	return nil
}

func malformed(section string, index int, err error) error {
	return apperrors.BadRequest(fmt.Sprintf("invalid backup: %s[%d]: %v", section, index, err), nil)
}
