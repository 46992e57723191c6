package world

import "github.com/andrescamacho/outpost-go/internal/domain/shared"

// NodeRegistry resolves node IDs back to live nodes by regenerating the
// tile and overlaying the ledger
type NodeRegistry struct {
	gen    *Generator
	ledger *DepletionLedger
}

// NewNodeRegistry creates a registry over gen and ledger
func NewNodeRegistry(gen *Generator, ledger *DepletionLedger) *NodeRegistry {
	if ledger == nil {
		ledger = NewDepletionLedger()
	}
	return &NodeRegistry{gen: gen, ledger: ledger}
}

// Lookup returns the node with the given ID
func (r *NodeRegistry) Lookup(nodeID string) (ResourceNode, error) {
	pos, err := ParseNodeID(nodeID)
	if err != nil {
		return ResourceNode{}, err
	}

	node, ok := r.gen.NodeAt(pos)
	if !ok {
		return ResourceNode{}, shared.NewNotFoundError("resource node", nodeID)
	}

	return r.ledger.Apply(node), nil
}

// Deplete removes qty from the node and returns the node afterwards
func (r *NodeRegistry) Deplete(nodeID string, qty int) (ResourceNode, error) {
	node, err := r.Lookup(nodeID)
	if err != nil {
		return ResourceNode{}, err
	}

	node.RemainingAmount = r.ledger.Deplete(node, qty)
	return node, nil
}

// Ledger exposes the depletion ledger for persistence
func (r *NodeRegistry) Ledger() *DepletionLedger {
	return r.ledger
}
