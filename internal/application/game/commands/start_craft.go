package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
)

// StartCraftCommand starts a recipe on a machine. With Queue set, a busy
// machine takes the request into its queue instead of failing.
type StartCraftCommand struct {
	MachineID string
	RecipeID  string
	Batch     int // defaults to 1
	Queue     bool
}

// StartCraftResponse reports whether the craft started or was queued
type StartCraftResponse struct {
	Started       bool
	QueuePosition int
	Start         *crafting.StartResult
}

// StartCraftHandler handles the StartCraft command
type StartCraftHandler struct {
	session *game.Session
}

// NewStartCraftHandler creates a new StartCraftHandler
func NewStartCraftHandler(session *game.Session) *StartCraftHandler {
	return &StartCraftHandler{session: session}
}

// Handle executes the StartCraft command
func (h *StartCraftHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StartCraftCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartCraftCommand")
	}

	batch := cmd.Batch
	if batch == 0 {
		batch = 1
	}

	rt, err := h.session.Runtime()
	if err != nil {
		return nil, err
	}

	if cmd.Queue {
		result, err := rt.Workshop.Enqueue(cmd.MachineID, cmd.RecipeID, batch)
		if err != nil {
			return nil, err
		}
		return &StartCraftResponse{
			Started:       result.Started,
			QueuePosition: result.QueuePosition,
			Start:         result.Start,
		}, nil
	}

	result, err := rt.Workshop.StartCraft(cmd.MachineID, cmd.RecipeID, batch)
	if err != nil {
		return nil, err
	}
	return &StartCraftResponse{Started: true, Start: &result}, nil
}
