package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DiscoveryMetricsCollector handles movement and discovery metrics
type DiscoveryMetricsCollector struct {
	movesTotal      *prometheus.CounterVec
	flushesTotal    prometheus.Counter
	nodesDiscovered prometheus.Counter
	flushBatchSize  prometheus.Histogram
}

// NewDiscoveryMetricsCollector creates a new discovery metrics collector
func NewDiscoveryMetricsCollector() *DiscoveryMetricsCollector {
	return &DiscoveryMetricsCollector{
		movesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "player_moves_total",
				Help:      "Total number of accepted player steps by direction",
			},
			[]string{"direction"},
		),

		flushesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "discovery_flushes_total",
				Help:      "Total number of debounced discovery flushes",
			},
		),

		nodesDiscovered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "nodes_discovered_total",
				Help:      "Total number of resource nodes discovered",
			},
		),

		flushBatchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "discovery_flush_batch_size",
				Help:      "Number of nodes discovered per flush",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),
	}
}

// Register registers all discovery metrics with the Prometheus registry
func (c *DiscoveryMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.movesTotal,
		c.flushesTotal,
		c.nodesDiscovered,
		c.flushBatchSize,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordMove records an accepted player step
func (c *DiscoveryMetricsCollector) RecordMove(direction string) {
	c.movesTotal.WithLabelValues(direction).Inc()
}

// RecordDiscoveryFlush records one flush and the nodes it discovered
func (c *DiscoveryMetricsCollector) RecordDiscoveryFlush(batchSize int) {
	c.flushesTotal.Inc()
	c.flushBatchSize.Observe(float64(batchSize))
	c.nodesDiscovered.Add(float64(batchSize))
}
