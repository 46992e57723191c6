package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// SetPositionCommand places the player on a tile directly, as a continuous
// movement source would
type SetPositionCommand struct {
	Position shared.Position
}

// SetPositionResponse reports the discovery outcome of the update
type SetPositionResponse struct {
	Position     shared.Position
	Candidates   int
	NewlyPending int
	Pinned       string
}

// SetPositionHandler handles the SetPosition command
type SetPositionHandler struct {
	session *game.Session
}

// NewSetPositionHandler creates a new SetPositionHandler
func NewSetPositionHandler(session *game.Session) *SetPositionHandler {
	return &SetPositionHandler{session: session}
}

// Handle executes the SetPosition command
func (h *SetPositionHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SetPositionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SetPositionCommand")
	}

	rt, err := h.session.Runtime()
	if err != nil {
		return nil, err
	}

	result, err := rt.Discovery.UpdatePosition(cmd.Position)
	if err != nil {
		return nil, err
	}
	return &SetPositionResponse{
		Position:     result.Position,
		Candidates:   result.Candidates,
		NewlyPending: result.NewlyPending,
		Pinned:       result.Pinned,
	}, nil
}
