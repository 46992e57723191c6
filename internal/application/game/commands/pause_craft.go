package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
)

// PauseCraftCommand freezes the job on a machine
type PauseCraftCommand struct {
	MachineID string
}

// ResumeCraftCommand continues a paused job
type ResumeCraftCommand struct {
	MachineID string
}

// PauseCraftHandler handles both PauseCraft and ResumeCraft
type PauseCraftHandler struct {
	session *game.Session
}

// NewPauseCraftHandler creates a new PauseCraftHandler
func NewPauseCraftHandler(session *game.Session) *PauseCraftHandler {
	return &PauseCraftHandler{session: session}
}

// Handle pauses or resumes depending on the request type
func (h *PauseCraftHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	rt, err := h.session.Runtime()
	if err != nil {
		return nil, err
	}

	var machineID string
	switch cmd := request.(type) {
	case *PauseCraftCommand:
		machineID = cmd.MachineID
		err = rt.Workshop.Pause(machineID)
	case *ResumeCraftCommand:
		machineID = cmd.MachineID
		err = rt.Workshop.Resume(machineID)
	default:
		return nil, fmt.Errorf("invalid request type: expected *PauseCraftCommand or *ResumeCraftCommand")
	}
	if err != nil {
		return nil, err
	}

	status, err := rt.Workshop.Machine(machineID)
	if err != nil {
		return nil, err
	}
	return &status, nil
}
