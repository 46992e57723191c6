package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// WorkshopSource is what the crafting collector polls
type WorkshopSource interface {
	MachineStatus() []crafting.MachineStatus
	InventorySnapshot() map[shared.ResourceType]int
}

// CraftingMetricsCollector handles machine, job and inventory metrics
type CraftingMetricsCollector struct {
	source WorkshopSource

	// Polled gauges
	machinesTotal  *prometheus.GaugeVec
	inventoryUnits *prometheus.GaugeVec

	// Event counters
	craftingEvents *prometheus.CounterVec
	unitsProduced  *prometheus.CounterVec

	// Lifecycle
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewCraftingMetricsCollector creates a new crafting metrics collector.
// source may be nil, in which case only the event counters are kept.
func NewCraftingMetricsCollector(source WorkshopSource) *CraftingMetricsCollector {
	return &CraftingMetricsCollector{
		source: source,

		machinesTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "machines_total",
				Help:      "Number of placed machines by type and state",
			},
			[]string{"machine_type", "state"},
		),

		inventoryUnits: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "inventory_units",
				Help:      "Units held in the inventory by resource",
			},
			[]string{"resource"},
		),

		craftingEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "crafting_events_total",
				Help:      "Total number of workshop events by type and machine type",
			},
			[]string{"event", "machine_type"},
		),

		unitsProduced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "units_produced_total",
				Help:      "Total number of units credited by completed jobs, by resource",
			},
			[]string{"resource"},
		),
	}
}

// Register registers all crafting metrics with the Prometheus registry
func (c *CraftingMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.machinesTotal,
		c.inventoryUnits,
		c.craftingEvents,
		c.unitsProduced,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// Start begins polling the workshop
func (c *CraftingMetricsCollector) Start(ctx context.Context, interval time.Duration) {
	if c.source == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	c.ctx, c.cancelFunc = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.poll(interval)
}

// Stop gracefully stops the metrics collection
func (c *CraftingMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

func (c *CraftingMetricsCollector) poll(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Collect()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.Collect()
		}
	}
}

// Collect refreshes the polled gauges once
func (c *CraftingMetricsCollector) Collect() {
	if c.source == nil {
		return
	}

	// Reset gauges so removed machines and spent resources disappear
	c.machinesTotal.Reset()
	c.inventoryUnits.Reset()

	counts := make(map[[2]string]int)
	for _, m := range c.source.MachineStatus() {
		counts[[2]string{string(m.MachineType), string(m.State)}]++
	}
	for labels, n := range counts {
		c.machinesTotal.WithLabelValues(labels[0], labels[1]).Set(float64(n))
	}

	for resource, units := range c.source.InventorySnapshot() {
		c.inventoryUnits.WithLabelValues(string(resource)).Set(float64(units))
	}
}

// RecordCraftingEvent records one workshop event
func (c *CraftingMetricsCollector) RecordCraftingEvent(eventType, machineType string) {
	c.craftingEvents.WithLabelValues(eventType, machineType).Inc()
}

// RecordProduction records credited output
func (c *CraftingMetricsCollector) RecordProduction(resource string, units int) {
	if units > 0 {
		c.unitsProduced.WithLabelValues(resource).Add(float64(units))
	}
}
