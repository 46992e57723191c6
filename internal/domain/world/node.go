package world

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

const nodeIDPrefix = "node"

// ResourceNode is a harvestable deposit on a single tile.
// ID, Type and Position are fixed by the generator; RemainingAmount is
// overlaid from the depletion ledger and never drops below zero.
type ResourceNode struct {
	ID              string              `json:"id"`
	Type            shared.ResourceType `json:"type"`
	DisplayName     string              `json:"displayName"`
	Position        shared.Position     `json:"position"`
	Capacity        int                 `json:"capacity"`
	RemainingAmount int                 `json:"remainingAmount"`
}

// IsExhausted reports whether nothing is left to extract.
// Exhausted nodes are still discoverable.
func (n ResourceNode) IsExhausted() bool {
	return n.RemainingAmount <= 0
}

// NodeID builds the identifier of the node on a tile. IDs encode the
// coordinate so any node can be regenerated from its ID.
func NodeID(pos shared.Position) string {
	return fmt.Sprintf("%s:%d:%d", nodeIDPrefix, pos.X, pos.Y)
}

// ParseNodeID recovers the tile coordinate from a node ID
func ParseNodeID(id string) (shared.Position, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != nodeIDPrefix {
		return shared.Position{}, shared.NewValidationError("node_id", fmt.Sprintf("malformed node id %q", id))
	}

	x, errX := strconv.ParseInt(parts[1], 10, 64)
	y, errY := strconv.ParseInt(parts[2], 10, 64)
	if errX != nil || errY != nil {
		return shared.Position{}, shared.NewValidationError("node_id", fmt.Sprintf("malformed node id %q", id))
	}

	return shared.NewPosition(x, y), nil
}

// paletteEntry is one weighted slot of the node type palette
type paletteEntry struct {
	resource shared.ResourceType
	weight   uint64
}

// nodePalette is fixed; reordering it changes every generated world
var nodePalette = []paletteEntry{
	{shared.IronOre, 30},
	{shared.CopperOre, 25},
	{shared.Coal, 25},
	{shared.Stone, 15},
	{shared.Quartz, 5},
}

var paletteTotal = func() uint64 {
	var total uint64
	for _, e := range nodePalette {
		total += e.weight
	}
	return total
}()

// pickNodeType selects a palette entry from a hash value
func pickNodeType(h uint64) shared.ResourceType {
	roll := h % paletteTotal
	for _, e := range nodePalette {
		if roll < e.weight {
			return e.resource
		}
		roll -= e.weight
	}
	return nodePalette[len(nodePalette)-1].resource
}

// NodeTypes lists the palette in generation order
func NodeTypes() []shared.ResourceType {
	types := make([]shared.ResourceType, 0, len(nodePalette))
	for _, e := range nodePalette {
		types = append(types, e.resource)
	}
	return types
}
