package crafting

import (
	"fmt"
	"strings"
	"time"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// MachineType is the buildable machine model. Recipes name the type they
// need; the type resolves to a MachineKind for behavior.
type MachineType string

const (
	MachineMiner     MachineType = "MINER"
	MachineSmelter   MachineType = "SMELTER"
	MachineAssembler MachineType = "ASSEMBLER"
)

// MachineKind selects the capability implementation
type MachineKind int

const (
	KindExtractor MachineKind = iota
	KindFabricator
)

func (k MachineKind) String() string {
	switch k {
	case KindExtractor:
		return "EXTRACTOR"
	case KindFabricator:
		return "FABRICATOR"
	default:
		return fmt.Sprintf("MachineKind(%d)", int(k))
	}
}

// Kind resolves the machine type to its kind
func (t MachineType) Kind() (MachineKind, error) {
	switch t {
	case MachineMiner:
		return KindExtractor, nil
	case MachineSmelter, MachineAssembler:
		return KindFabricator, nil
	default:
		return 0, shared.NewValidationError("machine_type", fmt.Sprintf("unknown machine type %q", string(t)))
	}
}

// ParseMachineType accepts a machine type name case-insensitively
func ParseMachineType(s string) (MachineType, error) {
	t := MachineType(strings.ToUpper(strings.TrimSpace(s)))
	if _, err := t.Kind(); err != nil {
		return "", err
	}
	return t, nil
}

// MachineState is the lifecycle state of a machine
type MachineState string

const (
	StateIdle               MachineState = "IDLE"
	StateAwaitingAssignment MachineState = "AWAITING_ASSIGNMENT"
	StateProcessing         MachineState = "PROCESSING"
	StatePaused             MachineState = "PAUSED"
)

// CraftRequest is a queued craft waiting for the machine to free up
type CraftRequest struct {
	RecipeID string `json:"recipeId"`
	Batch    int    `json:"batch"`
}

// Machine owns at most one CraftingJob. All mutation goes through the
// Workshop, which serializes transitions.
type Machine struct {
	id             string
	machineType    MachineType
	kind           MachineKind
	assignedNodeID string
	recipeID       string
	state          MachineState
	job            *CraftingJob
	queue          []CraftRequest
	placedAt       time.Time
}

// NewMachine creates a machine in its initial state: extractors wait for a
// node, fabricators start idle
func NewMachine(id string, machineType MachineType, placedAt time.Time) (*Machine, error) {
	if id == "" {
		return nil, shared.NewValidationError("machine.id", "cannot be empty")
	}
	kind, err := machineType.Kind()
	if err != nil {
		return nil, err
	}

	state := StateIdle
	if kind == KindExtractor {
		state = StateAwaitingAssignment
	}

	return &Machine{
		id:          id,
		machineType: machineType,
		kind:        kind,
		state:       state,
		placedAt:    placedAt,
	}, nil
}

func (m *Machine) ID() string { return m.id }
func (m *Machine) Type() MachineType { return m.machineType }
func (m *Machine) Kind() MachineKind { return m.kind }
func (m *Machine) AssignedNodeID() string { return m.assignedNodeID }
func (m *Machine) RecipeID() string { return m.recipeID }
func (m *Machine) State() MachineState { return m.state }
func (m *Machine) Job() *CraftingJob { return m.job }
func (m *Machine) PlacedAt() time.Time { return m.placedAt }
func (m *Machine) QueueLength() int { return len(m.queue) }
func (m *Machine) Queue() []CraftRequest { return append([]CraftRequest(nil), m.queue...) }
func (m *Machine) IsBusy() bool { return m.state == StateProcessing || m.state == StatePaused }
func (m *Machine) HasNode() bool { return m.assignedNodeID != "" }

func (m *Machine) assignNode(nodeID string) error {
	if m.kind != KindExtractor {
		return shared.NewInvalidTransitionError(m.id, string(m.state), "node assignment on a "+string(m.machineType))
	}
	if m.IsBusy() {
		return shared.NewInvalidTransitionError(m.id, string(m.state), string(StateIdle))
	}
	m.assignedNodeID = nodeID
	m.state = StateIdle
	return nil
}

func (m *Machine) startJob(job *CraftingJob) {
	m.job = job
	m.recipeID = job.recipeID
	m.state = StateProcessing
}

func (m *Machine) pause(now time.Time) error {
	if m.state != StateProcessing {
		return shared.NewInvalidTransitionError(m.id, string(m.state), string(StatePaused))
	}
	m.job.pause(now)
	m.state = StatePaused
	return nil
}

func (m *Machine) resume(now time.Time) error {
	if m.state != StatePaused {
		return shared.NewInvalidTransitionError(m.id, string(m.state), string(StateProcessing))
	}
	m.job.resume(now)
	m.state = StateProcessing
	return nil
}

// endJob destroys the job and returns the machine to Idle
func (m *Machine) endJob() *CraftingJob {
	job := m.job
	m.job = nil
	m.state = StateIdle
	return job
}

func (m *Machine) enqueue(req CraftRequest) int {
	m.queue = append(m.queue, req)
	return len(m.queue)
}

func (m *Machine) dequeue() (CraftRequest, bool) {
	if len(m.queue) == 0 {
		return CraftRequest{}, false
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	return next, true
}

func (m *Machine) clearQueue() {
	m.queue = nil
}
