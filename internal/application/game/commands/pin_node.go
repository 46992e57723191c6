package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
)

// PinNodeCommand pins a discovered node until the nearest node changes
type PinNodeCommand struct {
	NodeID string
}

// PinNodeHandler handles the PinNode command
type PinNodeHandler struct {
	session *game.Session
}

// NewPinNodeHandler creates a new PinNodeHandler
func NewPinNodeHandler(session *game.Session) *PinNodeHandler {
	return &PinNodeHandler{session: session}
}

// Handle executes the PinNode command
func (h *PinNodeHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*PinNodeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PinNodeCommand")
	}

	rt, err := h.session.Runtime()
	if err != nil {
		return nil, err
	}
	if err := rt.Discovery.Pin(cmd.NodeID); err != nil {
		return nil, err
	}
	return &game.Ack{Message: "pinned " + cmd.NodeID}, nil
}
