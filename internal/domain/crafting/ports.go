package crafting

import "github.com/andrescamacho/outpost-go/internal/domain/world"

// NodeRegistry resolves and depletes resource nodes for extractors.
// world.NodeRegistry implements it.
type NodeRegistry interface {
	Lookup(nodeID string) (world.ResourceNode, error)
	Deplete(nodeID string, qty int) (world.ResourceNode, error)
}

// IDGenerator names newly placed machines
type IDGenerator func(t MachineType) string

// EventListener receives workshop events after the workshop lock is released
type EventListener interface {
	OnCraftingEvent(event Event)
}

// EventListenerFunc adapts a function to EventListener
type EventListenerFunc func(event Event)

func (f EventListenerFunc) OnCraftingEvent(event Event) {
	f(event)
}
