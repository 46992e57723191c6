package discovery

import (
	"time"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

// NodeSource supplies discovery candidates around a position.
// world.ChunkIndexer satisfies it for generated worlds.
type NodeSource interface {
	NodesWithin(center shared.Position, radius int) []world.ResourceNode
}

// StaticNodeSource is a fixed node list, for hand-placed maps and tests
type StaticNodeSource []world.ResourceNode

// NodesWithin filters the list by radius
func (s StaticNodeSource) NodesWithin(center shared.Position, radius int) []world.ResourceNode {
	var out []world.ResourceNode
	for _, node := range s {
		if center.WithinRadius(node.Position, radius) {
			out = append(out, node)
		}
	}
	return out
}

// Flush is one batched discovered-set update
type Flush struct {
	// NodeIDs are the nodes newly discovered by this flush, sorted
	NodeIDs  []string
	Position shared.Position
	Pinned   string
	At       time.Time
}

// FlushListener is notified after every non-empty flush, outside the
// engine lock, in flush order
type FlushListener interface {
	OnDiscoveryFlush(flush Flush)
}

// FlushListenerFunc adapts a function to FlushListener
type FlushListenerFunc func(flush Flush)

func (f FlushListenerFunc) OnDiscoveryFlush(flush Flush) {
	f(flush)
}

// MoveListener is called synchronously on every accepted step
type MoveListener func(from, to shared.Position, dir Direction)
