package crafting

import (
	"time"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

// EventType names a workshop event
type EventType string

const (
	EventMachinePlaced   EventType = "MACHINE_PLACED"
	EventNodeAssigned    EventType = "NODE_ASSIGNED"
	EventJobStarted      EventType = "JOB_STARTED"
	EventJobPaused       EventType = "JOB_PAUSED"
	EventJobResumed      EventType = "JOB_RESUMED"
	EventJobCompleted    EventType = "JOB_COMPLETED"
	EventJobCancelled    EventType = "JOB_CANCELLED"
	EventRequestQueued   EventType = "REQUEST_QUEUED"
	EventQueuedStartFail EventType = "QUEUED_START_FAILED"
)

// Event describes something that happened in the workshop
type Event struct {
	Type        EventType
	MachineID   string
	MachineType MachineType
	RecipeID    string
	Batch       int
	// Resources holds credited outputs on completion, refunds on cancel and
	// debited inputs on start
	Resources map[shared.ResourceType]int
	Node      *world.ResourceNode
	Err       error
	At        time.Time
}
