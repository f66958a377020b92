package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveAuth(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "test")

	m.ObserveAuth("login", nil)
	m.ObserveAuth("login", errors.New("bad password"))
	m.ObserveAuth("login", errors.New("bad password"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthAttempts.WithLabelValues("login", ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthAttempts.WithLabelValues("login", ResultFailure)))
}

func TestImportCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "test")

	m.ObserveBackup("import", nil)
	m.AddImported("patients", 3)
	m.AddImported("patients", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackupOperations.WithLabelValues("import", ResultSuccess)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ImportedEntities.WithLabelValues("patients")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAuth("login", nil)
		m.ObserveBackup("export", nil)
		m.AddImported("patients", 1)
		m.ObserveDocument(nil)
		m.ObserveHTTP("GET", "/", "200", time.Millisecond)
	})
}
