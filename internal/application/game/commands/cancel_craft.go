package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
)

// CancelCraftCommand discards the job on a machine. ClearQueue also drops
// the machine's queued requests.
type CancelCraftCommand struct {
	MachineID  string
	ClearQueue bool
}

// CancelCraftHandler handles the CancelCraft command
type CancelCraftHandler struct {
	session *game.Session
}

// NewCancelCraftHandler creates a new CancelCraftHandler
func NewCancelCraftHandler(session *game.Session) *CancelCraftHandler {
	return &CancelCraftHandler{session: session}
}

// Handle executes the CancelCraft command
func (h *CancelCraftHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CancelCraftCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CancelCraftCommand")
	}

	rt, err := h.session.Runtime()
	if err != nil {
		return nil, err
	}

	if cmd.ClearQueue {
		if err := rt.Workshop.ClearQueue(cmd.MachineID); err != nil {
			return nil, err
		}
	}
	result, err := rt.Workshop.Cancel(cmd.MachineID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
