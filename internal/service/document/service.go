// Package document produces downloadable clinical histories.
package document

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/servir-hc/internal/model"
	"github.com/jwalitptl/servir-hc/internal/render"
	"github.com/jwalitptl/servir-hc/internal/repository"
	"github.com/jwalitptl/servir-hc/internal/session"
	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
	"github.com/jwalitptl/servir-hc/pkg/logger"
	"github.com/jwalitptl/servir-hc/pkg/metrics"
)

const ContentType = "application/pdf"

// Document is a rendered file ready for download.
type Document struct {
	Filename string
	Content  []byte
}

type Service struct {
	patients repository.PatientRepository
	records  repository.MedicalRecordRepository
	session  *session.Session
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

func NewService(repos repository.Repositories, sess *session.Session, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		patients: repos.Patients,
		records:  repos.MedicalRecords,
		session:  sess,
		metrics:  m,
		log:      log.With("service", "document"),
		now:      time.Now,
	}
}

// Filename is the download name of a clinical history generated at t.
func Filename(p *model.Patient, t time.Time) string {
	return fmt.Sprintf("historia_clinica_%s_%s_%s.pdf", p.FirstName, p.LastName, t.Format("2006-01-02"))
}

// GenerateClinicalDocument renders the clinical history of one of the
// current user's patients.
func (s *Service) GenerateClinicalDocument(ctx context.Context, patientID int64) (doc *Document, err error) {
	defer func() { s.metrics.ObserveDocument(err) }()

	user := s.session.Current()
	if user == nil {
		return nil, apperrors.NoSession()
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.UserID != user.ID {
		return nil, apperrors.NotFound("patient", nil)
	}

	records, err := s.records.ListByPatient(ctx, patientID)
	if err != nil {
		s.log.Error(err, "failed to load medical records", "patient_id", patientID)
		return nil, err
	}

	now := s.now()
	var buf bytes.Buffer
	err = render.ClinicalHistory(&buf, render.History{
		Patient:      patient,
		Practitioner: user.Summary(),
		Records:      records,
		GeneratedAt:  now,
	})
	if err != nil {
		s.log.Error(err, "failed to render clinical history", "patient_id", patientID)
		return nil, apperrors.Internal(err)
	}

	return &Document{
		Filename: Filename(patient, now),
		Content:  buf.Bytes(),
	}, nil
}
