package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
	"github.com/andrescamacho/outpost-go/internal/domain/discovery"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// MaxStepsPerMove bounds a single move request
const MaxStepsPerMove = 64

// MovePlayerCommand walks the player one or more steps in a direction
type MovePlayerCommand struct {
	Direction string
	Steps     int // defaults to 1
}

// MovePlayerResponse is the position after the last accepted step
type MovePlayerResponse struct {
	Position     shared.Position
	NewlyPending int
	Pinned       string
}

// MovePlayerHandler handles the MovePlayer command
type MovePlayerHandler struct {
	session *game.Session
}

// NewMovePlayerHandler creates a new MovePlayerHandler
func NewMovePlayerHandler(session *game.Session) *MovePlayerHandler {
	return &MovePlayerHandler{session: session}
}

// Handle applies every step in order. Each step is a separate position
// update, so discovery sees the whole path.
func (h *MovePlayerHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*MovePlayerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *MovePlayerCommand")
	}

	dir, err := discovery.ParseDirection(cmd.Direction)
	if err != nil {
		return nil, err
	}
	steps := cmd.Steps
	if steps == 0 {
		steps = 1
	}
	if steps < 0 || steps > MaxStepsPerMove {
		return nil, shared.NewValidationError("steps", fmt.Sprintf("must be between 1 and %d", MaxStepsPerMove))
	}

	rt, err := h.session.Runtime()
	if err != nil {
		return nil, err
	}

	resp := &MovePlayerResponse{}
	for i := 0; i < steps; i++ {
		result, err := rt.Discovery.Move(dir)
		if err != nil {
			return nil, err
		}
		resp.Position = result.Position
		resp.NewlyPending += result.NewlyPending
		resp.Pinned = result.Pinned
	}
	return resp, nil
}
