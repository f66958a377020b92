package sqlstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/jwalitptl/servir-hc/internal/config"
	"github.com/jwalitptl/servir-hc/internal/repository"
	"github.com/jwalitptl/servir-hc/pkg/logger"
)

// Driver names as registered with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// DB is the Local Store backed by a SQL database.
type DB struct {
	BaseRepository
	log *logger.Logger
}

var _ repository.Store = (*DB)(nil)

// NewDB opens the configured database and brings the schema to the current
// version.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	driver := strings.ToLower(cfg.Driver)

	dsn, err := dataSourceName(driver, cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// :memory: databases live and die with their connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database ready", "driver", driver, "schema_version", SchemaVersion)
	return &DB{BaseRepository: NewBaseRepository(db), log: log}, nil
}

func dataSourceName(driver string, cfg config.DatabaseConfig) (string, error) {
	switch driver {
	case DriverSQLite:
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
				return "", fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return cfg.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", nil
	case DriverPostgres:
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func (d *DB) Repos() repository.Repositories {
	return newRepositories(d.db)
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}

func newRepositories(q sqlx.ExtContext) repository.Repositories {
	base := BaseRepository{q: q}
	return repository.Repositories{
		Users:          &userRepository{base},
		Patients:       &patientRepository{base},
		MedicalRecords: &medicalRecordRepository{base},
		Appointments:   &appointmentRepository{base},
	}
}
