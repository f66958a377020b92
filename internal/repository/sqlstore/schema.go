package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SchemaVersion is the only schema this build knows how to use.
const SchemaVersion = 1

type dialect struct {
	id        string
	timestamp string
}

var dialects = map[string]dialect{
	DriverSQLite:   {id: "INTEGER PRIMARY KEY AUTOINCREMENT", timestamp: "TIMESTAMP"},
	DriverPostgres: {id: "BIGSERIAL PRIMARY KEY", timestamp: "TIMESTAMPTZ"},
}

// schemaV1 is formatted with the dialect's id column type (%[1]s) and
// timestamp type (%[2]s).
const schemaV1 = `
CREATE TABLE IF NOT EXISTS users (
	id                %[1]s,
	username          TEXT NOT NULL UNIQUE,
	full_name         TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL UNIQUE,
	specialty         TEXT NOT NULL DEFAULT '',
	license_number    TEXT NOT NULL DEFAULT '',
	password_hash     TEXT NOT NULL,
	security_question TEXT NOT NULL DEFAULT '',
	security_answer   TEXT NOT NULL DEFAULT '',
	created_at        %[2]s NOT NULL
);

CREATE TABLE IF NOT EXISTS patients (
	id                %[1]s,
	user_id           BIGINT NOT NULL REFERENCES users (id),
	document_number   TEXT NOT NULL DEFAULT '',
	first_name        TEXT NOT NULL DEFAULT '',
	last_name         TEXT NOT NULL DEFAULT '',
	birth_date        %[2]s,
	gender            TEXT NOT NULL DEFAULT '',
	phone             TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL DEFAULT '',
	address           TEXT NOT NULL DEFAULT '',
	emergency_contact TEXT NOT NULL DEFAULT '',
	emergency_phone   TEXT NOT NULL DEFAULT '',
	blood_type        TEXT NOT NULL DEFAULT '',
	allergies         TEXT NOT NULL DEFAULT '',
	medical_history   TEXT NOT NULL DEFAULT '',
	created_at        %[2]s NOT NULL,
	updated_at        %[2]s NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_patients_user_id ON patients (user_id);
CREATE INDEX IF NOT EXISTS idx_patients_first_name ON patients (first_name);
CREATE INDEX IF NOT EXISTS idx_patients_last_name ON patients (last_name);
CREATE INDEX IF NOT EXISTS idx_patients_document_number ON patients (document_number);

CREATE TABLE IF NOT EXISTS medical_records (
	id              %[1]s,
	patient_id      BIGINT NOT NULL REFERENCES patients (id),
	user_id         BIGINT NOT NULL REFERENCES users (id),
	date            %[2]s NOT NULL,
	chief_complaint TEXT NOT NULL DEFAULT '',
	present_illness TEXT NOT NULL DEFAULT '',
	physical_exam   TEXT NOT NULL DEFAULT '',
	diagnosis       TEXT NOT NULL DEFAULT '',
	treatment       TEXT NOT NULL DEFAULT '',
	notes           TEXT NOT NULL DEFAULT '',
	prescriptions   TEXT NOT NULL DEFAULT '',
	follow_up       TEXT NOT NULL DEFAULT '',
	created_at      %[2]s NOT NULL,
	updated_at      %[2]s NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_medical_records_patient_id ON medical_records (patient_id);
CREATE INDEX IF NOT EXISTS idx_medical_records_user_id ON medical_records (user_id);
CREATE INDEX IF NOT EXISTS idx_medical_records_date ON medical_records (date);

CREATE TABLE IF NOT EXISTS appointments (
	id         %[1]s,
	patient_id BIGINT NOT NULL REFERENCES patients (id),
	user_id    BIGINT NOT NULL REFERENCES users (id),
	date       %[2]s NOT NULL,
	time       TEXT NOT NULL DEFAULT '',
	reason     TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'scheduled',
	notes      TEXT NOT NULL DEFAULT '',
	created_at %[2]s NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_appointments_patient_id ON appointments (patient_id);
CREATE INDEX IF NOT EXISTS idx_appointments_user_id ON appointments (user_id);
CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments (date);
`

func migrate(ctx context.Context, db *sqlx.DB) error {
	d, ok := dialects[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	var current int
	if err := db.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	switch {
	case current > SchemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, SchemaVersion)
	case current == SchemaVersion:
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(schemaV1, d.id, d.timestamp)); err != nil {
		return fmt.Errorf("failed to apply schema version %d: %w", SchemaVersion, err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_version (version) VALUES (?)`), SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}
