package crafting

import (
	"time"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

// Capability is the kind-specific part of the job lifecycle. The Workshop
// handles state, inventory and timers; a capability only decides what a
// start costs, what a completion yields and what a cancel gives back.
type Capability interface {
	// Start checks kind-specific preconditions and returns the inputs to debit
	Start(m *Machine, recipe Recipe, batch int) (map[shared.ResourceType]int, error)
	Progress(job *CraftingJob, now time.Time) float64
	// Complete returns outputs to credit plus the node touched, if any
	Complete(m *Machine, job *CraftingJob, recipe Recipe) (map[shared.ResourceType]int, *world.ResourceNode, error)
	// Cancel returns the resources handed back under the refund policy
	Cancel(job *CraftingJob, refund bool) map[shared.ResourceType]int
}

// capabilityFor resolves a machine kind to its behavior
func capabilityFor(kind MachineKind, nodes NodeRegistry) Capability {
	switch kind {
	case KindExtractor:
		return extractorCapability{nodes: nodes}
	default:
		return fabricatorCapability{}
	}
}

// jobBasics is shared by both kinds
type jobBasics struct{}

func (jobBasics) Progress(job *CraftingJob, now time.Time) float64 {
	return job.Progress(now)
}

func (jobBasics) Cancel(job *CraftingJob, refund bool) map[shared.ResourceType]int {
	if !refund {
		return nil
	}
	return job.Consumed()
}

// fabricatorCapability converts inventory inputs into outputs
type fabricatorCapability struct {
	jobBasics
}

func (fabricatorCapability) Start(m *Machine, recipe Recipe, batch int) (map[shared.ResourceType]int, error) {
	return recipe.InputsFor(batch), nil
}

func (fabricatorCapability) Complete(m *Machine, job *CraftingJob, recipe Recipe) (map[shared.ResourceType]int, *world.ResourceNode, error) {
	return recipe.OutputsFor(job.Batch()), nil, nil
}

// extractorCapability pulls raw resources out of the assigned node.
// Depletion is charged once, at completion: the start only requires a
// non-empty node, and a node that empties mid-job still lets the job finish,
// yielding no more than the node still holds.
type extractorCapability struct {
	jobBasics
	nodes NodeRegistry
}

func (c extractorCapability) Start(m *Machine, recipe Recipe, batch int) (map[shared.ResourceType]int, error) {
	if !m.HasNode() {
		return nil, shared.NewNoNodeAssignedError(m.ID())
	}
	if c.nodes == nil {
		return nil, shared.NewNotFoundError("resource node", m.AssignedNodeID())
	}

	node, err := c.nodes.Lookup(m.AssignedNodeID())
	if err != nil {
		return nil, err
	}
	if recipe.SourceNodeType != "" && node.Type != recipe.SourceNodeType {
		return nil, shared.NewInvalidRecipeForMachineError(
			recipe.ID, string(m.Type())+" on "+string(node.Type), string(recipe.RequiredMachineType)+" on "+string(recipe.SourceNodeType))
	}
	if node.IsExhausted() {
		return nil, shared.NewNodeExhaustedError(node.ID)
	}

	return recipe.InputsFor(batch), nil
}

func (c extractorCapability) Complete(m *Machine, job *CraftingJob, recipe Recipe) (map[shared.ResourceType]int, *world.ResourceNode, error) {
	if c.nodes == nil || !m.HasNode() {
		return recipe.OutputsFor(job.Batch()), nil, nil
	}

	node, err := c.nodes.Lookup(m.AssignedNodeID())
	if err != nil {
		return nil, nil, err
	}
	yield := min(recipe.OutputUnits(job.Batch()), node.RemainingAmount)
	if yield <= 0 {
		return nil, &node, nil
	}

	node, err = c.nodes.Deplete(node.ID, yield)
	if err != nil {
		return nil, nil, err
	}
	return capOutputs(recipe.Outputs, job.Batch(), yield), &node, nil
}

// capOutputs scales outputs by batch and then hands out at most limit units,
// in recipe order
func capOutputs(outputs []Quantity, batch, limit int) map[shared.ResourceType]int {
	out := make(map[shared.ResourceType]int, len(outputs))
	for _, q := range outputs {
		n := min(q.Amount*batch, limit)
		if n <= 0 {
			break
		}
		out[q.Resource] += n
		limit -= n
	}
	return out
}
