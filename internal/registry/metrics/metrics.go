package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the passport registry.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	ActiveAuthorities prometheus.Gauge
	PassportsIssued   prometheus.Counter
	PassportsRevoked  prometheus.Counter
	CacheLookups      *prometheus.CounterVec
}

// New registers the registry metrics on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerpass_registry_operations_total",
			Help: "Registry operations by name and outcome code",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledgerpass_registry_operation_duration_seconds",
			Help:    "Duration of registry operations including the store transaction",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		ActiveAuthorities: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledgerpass_active_authorities",
			Help: "Authorities currently active",
		}),
		PassportsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerpass_passports_issued_total",
			Help: "Total number of passports issued",
		}),
		PassportsRevoked: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerpass_passports_revoked_total",
			Help: "Total number of revoke calls that changed state",
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerpass_passport_cache_lookups_total",
			Help: "Passport cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
	}
}

// ObserveOperation records one registry call. outcome is "ok" or the error code.
func (m *Metrics) ObserveOperation(operation, outcome string, start time.Time) {
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}
