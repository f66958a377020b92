package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/servir-hc/internal/model"
)

var pageObject = regexp.MustCompile(`/Type /Page\b`)

func history(records int) History {
	h := History{
		Patient: &model.Patient{
			DocumentNumber: "12345678",
			FirstName:      "María",
			LastName:       "González",
			BirthDate:      time.Date(1960, 2, 2, 0, 0, 0, 0, time.UTC),
			Phone:          "555-0100",
			Email:          "maria@example.com",
			BloodType:      "O+",
			Allergies:      "Penicilina",
		},
		Practitioner: model.UserSummary{
			FullName:      "Dr. Pedro Pérez",
			Specialty:     "Cardiología",
			LicenseNumber: "MP-1234",
		},
		GeneratedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	for i := 0; i < records; i++ {
		h.Records = append(h.Records, &model.MedicalRecord{
			Date:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -i),
			ChiefComplaint: fmt.Sprintf("Consulta %d", i),
			Diagnosis:      "Hipertensión",
			Treatment:      "Enalapril 10mg",
		})
	}
	return h
}

func render(t *testing.T, h History) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, ClinicalHistory(&buf, h))
	return buf.Bytes()
}

func TestClinicalHistoryIsPDF(t *testing.T) {
	out := render(t, history(1))
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Len(t, pageObject.FindAll(out, -1), 1)
}

func TestClinicalHistoryPaginates(t *testing.T) {
	short := pageObject.FindAll(render(t, history(0)), -1)
	long := pageObject.FindAll(render(t, history(20)), -1)

	assert.Len(t, short, 1)
	assert.Greater(t, len(long), 1)
}

func TestClinicalHistoryRequiresPatient(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, ClinicalHistory(&buf, History{}))
}

func TestClinicalHistoryWrapsLongText(t *testing.T) {
	h := history(1)
	h.Records[0].Treatment = strings.Repeat("Reposo relativo y control de presión arterial. ", 30)

	short := pageObject.FindAll(render(t, history(1)), -1)
	long := pageObject.FindAll(render(t, h), -1)
	assert.Len(t, short, 1)
	assert.Greater(t, len(long), 1)
}
