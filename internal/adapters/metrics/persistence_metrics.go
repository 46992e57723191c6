package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PersistenceMetricsCollector handles save/load metrics
type PersistenceMetricsCollector struct {
	savesTotal   *prometheus.CounterVec
	saveDuration *prometheus.HistogramVec
	keysWritten  *prometheus.CounterVec
	savesSkipped *prometheus.CounterVec
	loadIssues   *prometheus.CounterVec
}

// NewPersistenceMetricsCollector creates a new persistence metrics collector
func NewPersistenceMetricsCollector() *PersistenceMetricsCollector {
	return &PersistenceMetricsCollector{
		savesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "saves_total",
				Help:      "Total number of store round trips by kind and status",
			},
			[]string{"kind", "status"},
		),

		saveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "save_duration_seconds",
				Help:      "Store round trip duration distribution",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"kind"},
		),

		keysWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "save_keys_total",
				Help:      "Total number of keys read or written by kind",
			},
			[]string{"kind"},
		),

		savesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "saves_skipped_total",
				Help:      "Saves not attempted, by reason (throttled, circuit_open)",
			},
			[]string{"reason"},
		),

		loadIssues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "load_corrupt_values_total",
				Help:      "Corrupt stored values replaced by defaults, by entity",
			},
			[]string{"entity"},
		),
	}
}

// Register registers all persistence metrics with the Prometheus registry
func (c *PersistenceMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.savesTotal,
		c.saveDuration,
		c.keysWritten,
		c.savesSkipped,
		c.loadIssues,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordSave records one store round trip
func (c *PersistenceMetricsCollector) RecordSave(kind string, keys int, duration float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}

	c.savesTotal.WithLabelValues(kind, status).Inc()
	c.saveDuration.WithLabelValues(kind).Observe(duration)
	if success && keys > 0 {
		c.keysWritten.WithLabelValues(kind).Add(float64(keys))
	}
}

// RecordSaveSkipped records a save that never reached the store
func (c *PersistenceMetricsCollector) RecordSaveSkipped(reason string) {
	c.savesSkipped.WithLabelValues(reason).Inc()
}

// RecordLoadIssue records a corrupt value found during load
func (c *PersistenceMetricsCollector) RecordLoadIssue(entity string) {
	c.loadIssues.WithLabelValues(entity).Inc()
}
