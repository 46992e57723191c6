package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CommandMetricsCollector tracks mediator traffic: every movement, craft
// and save request the CLI or the daemon loop sends
type CommandMetricsCollector struct {
	latency *prometheus.HistogramVec
	handled *prometheus.CounterVec
}

func NewCommandMetricsCollector() *CommandMetricsCollector {
	labels := []string{"command", "result"}
	return &CommandMetricsCollector{
		// Handlers work on in-memory state; only SaveGameCommand touches the
		// database, hence the long tail
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "command_duration_seconds",
			Help:      "Time spent in mediator handlers",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, labels),
		handled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commands_total",
			Help:      "Commands and queries handled, by outcome",
		}, labels),
	}
}

func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, m := range []prometheus.Collector{c.latency, c.handled} {
		if err := Registry.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommandExecution counts one handled request. result is "ok" or the
// name of the error type returned.
func (c *CommandMetricsCollector) RecordCommandExecution(command string, seconds float64, result string) {
	c.latency.WithLabelValues(command, result).Observe(seconds)
	c.handled.WithLabelValues(command, result).Inc()
}
