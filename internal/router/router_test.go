package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/servir-hc/internal/config"
	authhandler "github.com/jwalitptl/servir-hc/internal/handler/auth"
	backuphandler "github.com/jwalitptl/servir-hc/internal/handler/backup"
	"github.com/jwalitptl/servir-hc/internal/handler/health"
	patienthandler "github.com/jwalitptl/servir-hc/internal/handler/patient"
	promhandler "github.com/jwalitptl/servir-hc/internal/handler/prometheus"
	"github.com/jwalitptl/servir-hc/internal/middleware"
	"github.com/jwalitptl/servir-hc/internal/router"
	"github.com/jwalitptl/servir-hc/internal/service/auth"
	"github.com/jwalitptl/servir-hc/internal/service/backup"
	"github.com/jwalitptl/servir-hc/internal/service/clinical"
	"github.com/jwalitptl/servir-hc/internal/service/document"
	"github.com/jwalitptl/servir-hc/internal/testutil"
	"github.com/jwalitptl/servir-hc/pkg/logger"
	"github.com/jwalitptl/servir-hc/pkg/metrics"
	"github.com/jwalitptl/servir-hc/pkg/security"
	"github.com/jwalitptl/servir-hc/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newEngine(t *testing.T, limits config.RateLimitConfig) *gin.Engine {
	t.Helper()

	db := testutil.NewStore(t)
	sess := testutil.NewSession(t)
	log := logger.Nop()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg, "test")
	v := validator.New()
	repos := db.Repos()

	authSvc := auth.NewService(repos.Users, security.NewSHA256Hasher(), sess, v, m, log, auth.Config{})
	clinicalSvc := clinical.NewService(repos, sess, log)
	docSvc := document.NewService(repos, sess, m, log)
	backupSvc := backup.NewService(db, sess, v, m, log)

	r := router.NewRouter(
		sess,
		health.NewHandler(db),
		authhandler.NewHandler(authSvc, middleware.NewRateLimiter(limits).RateLimit()),
		patienthandler.NewHandler(clinicalSvc, docSvc),
		backuphandler.NewHandler(backupSvc, "ser-vir-hc"),
		promhandler.New(reg, m),
		log,
		router.RouterConfig{MaxBodyBytes: 1 << 20, AllowedOrigins: []string{"http://localhost:5173"}},
	)
	r.Setup()
	return r.Engine()
}

func do(t *testing.T, engine *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func registration(username string) map[string]string {
	return map[string]string{
		"username":         username,
		"password":         "secret123",
		"email":            username + "@example.com",
		"fullName":         "Dr. " + username,
		"specialty":        "Pediatrics",
		"licenseNumber":    "LIC-" + username,
		"securityQuestion": "First pet?",
		"securityAnswer":   "Firulais",
	}
}

var patientBody = map[string]string{
	"documentNumber": "12345678",
	"firstName":      "Lucía",
	"lastName":       "García",
	"birthDate":      "1985-03-14T00:00:00Z",
	"gender":         "F",
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	engine := newEngine(t, config.RateLimitConfig{})

	for _, path := range []string{"/api/v1/patients", "/api/v1/backup/export", "/api/v1/auth/me"} {
		w, env := do(t, engine, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, "error", env.Status, path)
	}
}

func TestPatientFlow(t *testing.T) {
	engine := newEngine(t, config.RateLimitConfig{})

	w, _ := do(t, engine, http.MethodPost, "/api/v1/auth/register", registration("drperez"))
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, engine, http.MethodPost, "/api/v1/patients", patientBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotZero(t, created.ID)

	w, env = do(t, engine, http.MethodGet, "/api/v1/patients?q=garcía", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &found))
	assert.Len(t, found, 1)

	record := map[string]string{
		"date":           "2024-05-02T10:00:00Z",
		"chiefComplaint": "Headache",
		"presentIllness": "Three days",
		"physicalExam":   "Normal",
		"diagnosis":      "Tension headache",
		"treatment":      "Rest",
	}
	w, _ = do(t, engine, http.MethodPost, fmt.Sprintf("/api/v1/patients/%d/records", created.ID), record)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = do(t, engine, http.MethodGet, fmt.Sprintf("/api/v1/patients/%d/document", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "historia_clinica_Lucía_García_")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w, _ = do(t, engine, http.MethodGet, "/api/v1/backup/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ser-vir-hc-backup-")

	w, _ = do(t, engine, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, engine, http.MethodGet, "/api/v1/patients", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestForeignPatientIsNotFound(t *testing.T) {
	engine := newEngine(t, config.RateLimitConfig{})

	do(t, engine, http.MethodPost, "/api/v1/auth/register", registration("owner"))
	w, env := do(t, engine, http.MethodPost, "/api/v1/patients", patientBody)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	do(t, engine, http.MethodPost, "/api/v1/auth/logout", nil)

	w, _ = do(t, engine, http.MethodPost, "/api/v1/auth/register", registration("intruder"))
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = do(t, engine, http.MethodGet, fmt.Sprintf("/api/v1/patients/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(t, engine, http.MethodGet, fmt.Sprintf("/api/v1/patients/%d/document", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	engine := newEngine(t, config.RateLimitConfig{})

	do(t, engine, http.MethodPost, "/api/v1/auth/register", registration("drperez"))

	w1, env1 := do(t, engine, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "drperez", "password": "wrong"})
	w2, env2 := do(t, engine, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "nobody", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w1.Code)
	assert.Equal(t, w1.Code, w2.Code)
	assert.Equal(t, env1.Message, env2.Message)
}

func TestLoginIsRateLimited(t *testing.T) {
	engine := newEngine(t, config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 2})

	creds := map[string]string{"username": "nobody", "password": "wrong"}
	w, _ := do(t, engine, http.MethodPost, "/api/v1/auth/login", creds)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = do(t, engine, http.MethodPost, "/api/v1/auth/login", creds)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = do(t, engine, http.MethodPost, "/api/v1/auth/login", creds)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	engine := newEngine(t, config.RateLimitConfig{})

	w, _ := do(t, engine, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, engine, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, engine, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}

func send(engine *gin.Engine, method, path, origin, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCrossOriginWritesAreRefused(t *testing.T) {
	engine := newEngine(t, config.RateLimitConfig{})

	w, _ := do(t, engine, http.MethodPost, "/api/v1/auth/register", registration("drperez"))
	require.Equal(t, http.StatusCreated, w.Code)

	patient := `{"documentNumber":"1","firstName":"Evil","lastName":"Injected","birthDate":"1990-01-01T00:00:00Z","gender":"M"}`
	backupBody := `{"patients":[{"id":1,"firstName":"A","lastName":"B"}],"medicalRecords":[]}`

	w = send(engine, http.MethodPost, "/api/v1/patients", "http://evil.example", "text/plain", patient)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = send(engine, http.MethodPost, "/api/v1/backup/import", "http://evil.example", "text/plain", backupBody)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = send(engine, http.MethodPost, "/api/v1/patients", "http://evil.example", "application/json", patient)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = send(engine, http.MethodGet, "/api/v1/patients", "http://evil.example", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = send(engine, http.MethodPost, "/api/v1/patients", "http://localhost:5173", "application/json", patient)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w, env := do(t, engine, http.MethodGet, "/api/v1/patients", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var patients []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &patients))
	assert.Len(t, patients, 1)
}

func TestWritesRequireJSON(t *testing.T) {
	engine := newEngine(t, config.RateLimitConfig{})

	w, _ := do(t, engine, http.MethodPost, "/api/v1/auth/register", registration("drperez"))
	require.Equal(t, http.StatusCreated, w.Code)

	backupBody := `{"patients":[{"id":1,"firstName":"A","lastName":"B"}],"medicalRecords":[]}`
	w = send(engine, http.MethodPost, "/api/v1/backup/import", "", "text/plain", backupBody)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	w = send(engine, http.MethodPost, "/api/v1/backup/import", "", "", backupBody)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = send(engine, http.MethodPost, "/api/v1/backup/import", "", "application/json; charset=utf-8", backupBody)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = send(engine, http.MethodPost, "/api/v1/auth/logout", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
