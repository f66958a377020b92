package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// BackupVersion is the only backup format version written and understood.
const BackupVersion = "1.0"

// BackupDocument is the portable export of one practitioner's data.
type BackupDocument struct {
	Version        string           `json:"version"`
	ExportDate     time.Time        `json:"exportDate"`
	User           UserSummary      `json:"user"`
	Patients       []*Patient       `json:"patients"`
	MedicalRecords []*MedicalRecord `json:"medicalRecords"`
	Appointments   []*Appointment   `json:"appointments"`
}

// FlexibleTime accepts RFC 3339 timestamps and bare YYYY-MM-DD dates.
type FlexibleTime struct {
	time.Time
}

var flexibleLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (f *FlexibleTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		f.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		f.Time = time.Time{}
		return nil
	}
	for _, layout := range flexibleLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			f.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized date %q", s)
}

func (f FlexibleTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Time)
}
