package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// PlaceMachineCommand builds a new machine
type PlaceMachineCommand struct {
	MachineType string
	// NodeID optionally assigns an extractor right away
	NodeID string
}

// PlaceMachineHandler handles the PlaceMachine command
type PlaceMachineHandler struct {
	session *game.Session
}

// NewPlaceMachineHandler creates a new PlaceMachineHandler
func NewPlaceMachineHandler(session *game.Session) *PlaceMachineHandler {
	return &PlaceMachineHandler{session: session}
}

// Handle executes the PlaceMachine command and returns the machine view
func (h *PlaceMachineHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*PlaceMachineCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PlaceMachineCommand")
	}

	machineType, err := crafting.ParseMachineType(cmd.MachineType)
	if err != nil {
		return nil, err
	}

	rt, err := h.session.Runtime()
	if err != nil {
		return nil, err
	}

	// check the node before building so a bad request leaves nothing behind
	if cmd.NodeID != "" {
		if kind, _ := machineType.Kind(); kind != crafting.KindExtractor {
			return nil, shared.NewValidationError("node_id", fmt.Sprintf("%s machines do not take a node", machineType))
		}
		if _, err := rt.Nodes.Lookup(cmd.NodeID); err != nil {
			return nil, err
		}
	}

	status, err := rt.Workshop.PlaceMachine(machineType)
	if err != nil {
		return nil, err
	}
	if cmd.NodeID != "" {
		if err := rt.Workshop.AssignNode(status.MachineID, cmd.NodeID); err != nil {
			return nil, err
		}
		if status, err = rt.Workshop.Machine(status.MachineID); err != nil {
			return nil, err
		}
	}

	return &status, nil
}
