package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
)

// SaveGameCommand writes the full game state now
type SaveGameCommand struct{}

// SaveGameHandler handles the SaveGame command
type SaveGameHandler struct {
	session *game.Session
}

// NewSaveGameHandler creates a new SaveGameHandler
func NewSaveGameHandler(session *game.Session) *SaveGameHandler {
	return &SaveGameHandler{session: session}
}

// Handle executes the SaveGame command
func (h *SaveGameHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*SaveGameCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *SaveGameCommand")
	}

	if err := h.session.Save(ctx); err != nil {
		return nil, err
	}
	return &game.Ack{Message: "saved"}, nil
}
