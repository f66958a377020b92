// Package render lays out printable clinical documents.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/jwalitptl/servir-hc/internal/model"
)

// Page geometry in millimetres.
const (
	marginLeft  = 20.0
	textWidth   = 170.0
	topY        = 30.0
	pageLimitY  = 270.0
	lineHeight  = 10.0
	entryGap    = 10.0
	displayDate = "02/01/2006"
)

// History is everything printed on a clinical history.
type History struct {
	Patient      *model.Patient
	Practitioner model.UserSummary
	// Records are printed in the given order, most recent first by convention.
	Records     []*model.MedicalRecord
	GeneratedAt time.Time
}

type page struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	y   float64
}

// line writes txt at the cursor, wrapping it to the text width and starting
// a new page whenever the cursor passes the page limit.
func (p *page) line(txt string) {
	for _, chunk := range p.wrap(p.tr(txt)) {
		if p.y > pageLimitY {
			p.pdf.AddPage()
			p.y = topY
		}
		p.pdf.Text(marginLeft, p.y, chunk)
		p.y += lineHeight
	}
}

// wrap breaks translated text on spaces. Widths are measured per byte, which
// matches the single-byte core fonts. A word wider than a line is kept whole.
func (p *page) wrap(txt string) []string {
	words := strings.Split(txt, " ")
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if strings.TrimSpace(cur) != "" && p.pdf.GetStringWidth(cur+" "+w) > textWidth {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(lines, cur)
}

// ClinicalHistory writes h to w as an A4 PDF.
func ClinicalHistory(w io.Writer, h History) error {
	if h.Patient == nil {
		return fmt.Errorf("render: patient is required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Historia Clínica", true)
	pdf.SetAuthor(h.Practitioner.FullName, true)
	pdf.SetCreator("ser-vir-hc", false)
	if !h.GeneratedAt.IsZero() {
		pdf.SetCreationDate(h.GeneratedAt)
	}
	pdf.AddPage()

	p := &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), y: topY}

	pdf.SetFont("Helvetica", "B", 20)
	p.line("Historia Clínica")
	p.y += lineHeight

	pt := h.Patient
	pdf.SetFont("Helvetica", "", 14)
	p.line("Paciente: " + pt.FullName())
	p.line("Documento: " + pt.DocumentNumber)
	p.line("Fecha de Nacimiento: " + formatDate(pt.BirthDate))
	p.line("Teléfono: " + pt.Phone)
	p.line("Email: " + pt.Email)
	if pt.BloodType != "" {
		p.line("Tipo de Sangre: " + pt.BloodType)
	}
	if pt.Allergies != "" {
		p.line("Alergias: " + pt.Allergies)
	}
	p.y += lineHeight

	p.line("Médico: " + h.Practitioner.FullName)
	p.line("Especialidad: " + h.Practitioner.Specialty)
	p.line("Licencia: " + h.Practitioner.LicenseNumber)
	p.y += lineHeight

	pdf.SetFont("Helvetica", "B", 16)
	p.line("Registros Médicos:")
	p.y += entryGap

	pdf.SetFont("Helvetica", "", 12)
	for i, r := range h.Records {
		p.line(fmt.Sprintf("%d. Fecha: %s", i+1, formatDate(r.Date)))
		p.line("   Motivo: " + r.ChiefComplaint)
		p.line("   Diagnóstico: " + r.Diagnosis)
		p.line("   Tratamiento: " + r.Treatment)
		p.y += entryGap
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayDate)
}
