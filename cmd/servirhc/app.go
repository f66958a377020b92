package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/servir-hc/internal/config"
	"github.com/jwalitptl/servir-hc/internal/repository/sqlstore"
	"github.com/jwalitptl/servir-hc/internal/service/auth"
	"github.com/jwalitptl/servir-hc/internal/service/backup"
	"github.com/jwalitptl/servir-hc/internal/service/clinical"
	"github.com/jwalitptl/servir-hc/internal/service/document"
	"github.com/jwalitptl/servir-hc/internal/session"
	jwtauth "github.com/jwalitptl/servir-hc/pkg/auth"
	"github.com/jwalitptl/servir-hc/pkg/logger"
	"github.com/jwalitptl/servir-hc/pkg/metrics"
	"github.com/jwalitptl/servir-hc/pkg/security"
	"github.com/jwalitptl/servir-hc/pkg/validator"
)

const metricsNamespace = "servirhc"

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *sqlstore.DB
	pointers session.PointerStore
	session  *session.Session
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	auth     *auth.Service
	clinical *clinical.Service
	backup   *backup.Service
	document *document.Service
}

func newLogger(cfg config.LogConfig) *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Level),
		Format: cfg.Format,
	})
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg.Log)

	db, err := sqlstore.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, db: db}
	if err := a.wire(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg := a.cfg

	hasher, err := security.NewHasher(cfg.Auth.Hasher, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	secret := cfg.Session.Secret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		a.log.Warn("session.secret is empty, using a per-process secret; sessions will not survive a restart")
	}
	tokens, err := jwtauth.NewJWTService(secret)
	if err != nil {
		return err
	}

	pointers, err := newPointerStore(ctx, cfg.Session)
	if err != nil {
		return err
	}
	a.pointers = pointers
	a.session = session.New(tokens, a.pointers, cfg.Session.TTL, a.log)

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.NewMetrics(a.registry, metricsNamespace)

	v := validator.New()
	repos := a.db.Repos()

	a.auth = auth.NewService(repos.Users, hasher, a.session, v, a.metrics, a.log, auth.Config{
		MinPasswordLength: cfg.Auth.MinPasswordLength,
	})
	a.clinical = clinical.NewService(repos, a.session, a.log)
	a.backup = backup.NewService(a.db, a.session, v, a.metrics, a.log)
	a.document = document.NewService(repos, a.session, a.metrics, a.log)
	return nil
}

func newPointerStore(ctx context.Context, cfg config.SessionConfig) (session.PointerStore, error) {
	switch strings.ToLower(cfg.Store) {
	case "redis":
		return session.NewRedisStore(ctx, cfg.RedisURL)
	default:
		return session.NewMemoryStore(cfg.File)
	}
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (a *app) close() {
	if c, ok := a.pointers.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Error(err, "failed to close session store")
		}
	}
	if err := a.db.Close(); err != nil {
		a.log.Error(err, "failed to close database")
	}
}

// login authenticates a command-line invocation. Callers defer the returned
// func to end the session when the command finishes.
func (a *app) login(ctx context.Context, username, password string) (func(), error) {
	if username == "" || password == "" {
		return nil, errors.New("--username and --password are required")
	}
	if _, err := a.auth.Login(ctx, username, password); err != nil {
		return nil, err
	}
	return func() { a.auth.Logout(ctx) }, nil
}
