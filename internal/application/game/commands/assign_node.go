package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
)

// AssignNodeCommand points an extractor at a resource node
type AssignNodeCommand struct {
	MachineID string
	NodeID    string
}

// AssignNodeHandler handles the AssignNode command
type AssignNodeHandler struct {
	session *game.Session
}

// NewAssignNodeHandler creates a new AssignNodeHandler
func NewAssignNodeHandler(session *game.Session) *AssignNodeHandler {
	return &AssignNodeHandler{session: session}
}

// Handle executes the AssignNode command
func (h *AssignNodeHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*AssignNodeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AssignNodeCommand")
	}

	rt, err := h.session.Runtime()
	if err != nil {
		return nil, err
	}
	if err := rt.Workshop.AssignNode(cmd.MachineID, cmd.NodeID); err != nil {
		return nil, err
	}

	status, err := rt.Workshop.Machine(cmd.MachineID)
	if err != nil {
		return nil, err
	}
	return &status, nil
}
