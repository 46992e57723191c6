package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
	"github.com/andrescamacho/outpost-go/internal/domain/progression"
)

// AcknowledgeToastCommand marks a milestone toast as shown
type AcknowledgeToastCommand struct {
	MilestoneID string
}

// AcknowledgeToastHandler handles the AcknowledgeToast command
type AcknowledgeToastHandler struct {
	session *game.Session
}

// NewAcknowledgeToastHandler creates a new AcknowledgeToastHandler
func NewAcknowledgeToastHandler(session *game.Session) *AcknowledgeToastHandler {
	return &AcknowledgeToastHandler{session: session}
}

// Handle executes the AcknowledgeToast command
func (h *AcknowledgeToastHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*AcknowledgeToastCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AcknowledgeToastCommand")
	}

	if err := h.session.AcknowledgeToast(progression.MilestoneID(cmd.MilestoneID)); err != nil {
		return nil, err
	}
	return &game.Ack{Message: "acknowledged " + cmd.MilestoneID}, nil
}
