package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds all application metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// Auth related metrics
	AuthAttempts *prometheus.CounterVec

	// Backup metrics
	BackupOperations *prometheus.CounterVec
	ImportedEntities *prometheus.CounterVec

	// Document metrics
	DocumentsRendered *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

// NewMetrics creates all application metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AuthAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Total number of authentication operations",
		}, []string{"op", "result"}),

		BackupOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backup_operations_total",
			Help:      "Total number of backup exports and imports",
		}, []string{"op", "result"}),
		ImportedEntities: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backup_imported_entities_total",
			Help:      "Total number of entities created by backup imports",
		}, []string{"entity"}),

		DocumentsRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_rendered_total",
			Help:      "Total number of clinical history documents rendered",
		}, []string{"result"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "route"}),
	}
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

// ObserveAuth counts one auth operation (register, login, recover, ...).
func (m *Metrics) ObserveAuth(op string, err error) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(op, result(err)).Inc()
}

// ObserveBackup counts one export or import.
func (m *Metrics) ObserveBackup(op string, err error) {
	if m == nil {
		return
	}
	m.BackupOperations.WithLabelValues(op, result(err)).Inc()
}

// AddImported adds n imported entities of the given kind.
func (m *Metrics) AddImported(entity string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ImportedEntities.WithLabelValues(entity).Add(float64(n))
}

func (m *Metrics) ObserveDocument(err error) {
	if m == nil {
		return
	}
	m.DocumentsRendered.WithLabelValues(result(err)).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
