package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "outpost"
	// Subsystem for daemon metrics
	subsystem = "daemon"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalPersistenceCollector is set by SetGlobalPersistenceCollector() when metrics are enabled
	globalPersistenceCollector PersistenceMetricsRecorder

	// globalDiscoveryCollector is set by SetGlobalDiscoveryCollector() when metrics are enabled
	globalDiscoveryCollector DiscoveryMetricsRecorder

	// globalCraftingCollector is set by SetGlobalCraftingCollector() when metrics are enabled
	globalCraftingCollector CraftingMetricsRecorder
)

// PersistenceMetricsRecorder records save and load activity
type PersistenceMetricsRecorder interface {
	RecordSave(kind string, keys int, duration float64, success bool)
	RecordSaveSkipped(reason string)
	RecordLoadIssue(entity string)
}

// DiscoveryMetricsRecorder records player movement and discovery flushes
type DiscoveryMetricsRecorder interface {
	RecordMove(direction string)
	RecordDiscoveryFlush(batchSize int)
}

// CraftingMetricsRecorder records workshop events
type CraftingMetricsRecorder interface {
	RecordCraftingEvent(eventType, machineType string)
	RecordProduction(resource string, units int)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalPersistenceCollector sets the global persistence metrics collector
func SetGlobalPersistenceCollector(collector PersistenceMetricsRecorder) {
	globalPersistenceCollector = collector
}

// RecordSave records a save or load round trip globally
func RecordSave(kind string, keys int, duration float64, success bool) {
	if globalPersistenceCollector != nil {
		globalPersistenceCollector.RecordSave(kind, keys, duration, success)
	}
}

// RecordSaveSkipped records a save that was not attempted globally
func RecordSaveSkipped(reason string) {
	if globalPersistenceCollector != nil {
		globalPersistenceCollector.RecordSaveSkipped(reason)
	}
}

// RecordLoadIssue records a corrupt stored value globally
func RecordLoadIssue(entity string) {
	if globalPersistenceCollector != nil {
		globalPersistenceCollector.RecordLoadIssue(entity)
	}
}

// SetGlobalDiscoveryCollector sets the global discovery metrics collector
func SetGlobalDiscoveryCollector(collector DiscoveryMetricsRecorder) {
	globalDiscoveryCollector = collector
}

// RecordMove records an accepted player step globally
func RecordMove(direction string) {
	if globalDiscoveryCollector != nil {
		globalDiscoveryCollector.RecordMove(direction)
	}
}

// RecordDiscoveryFlush records a discovery flush globally
func RecordDiscoveryFlush(batchSize int) {
	if globalDiscoveryCollector != nil {
		globalDiscoveryCollector.RecordDiscoveryFlush(batchSize)
	}
}

// SetGlobalCraftingCollector sets the global crafting metrics collector
func SetGlobalCraftingCollector(collector CraftingMetricsRecorder) {
	globalCraftingCollector = collector
}

// RecordCraftingEvent records a workshop event globally
func RecordCraftingEvent(eventType, machineType string) {
	if globalCraftingCollector != nil {
		globalCraftingCollector.RecordCraftingEvent(eventType, machineType)
	}
}

// RecordProduction records credited output globally
func RecordProduction(resource string, units int) {
	if globalCraftingCollector != nil {
		globalCraftingCollector.RecordProduction(resource, units)
	}
}
