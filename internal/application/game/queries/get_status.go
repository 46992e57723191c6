package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
)

// GetStatusQuery returns the presentation view of the game
type GetStatusQuery struct{}

// GetStatusHandler handles the GetStatus query
type GetStatusHandler struct {
	session *game.Session
}

// NewGetStatusHandler creates a new GetStatusHandler
func NewGetStatusHandler(session *game.Session) *GetStatusHandler {
	return &GetStatusHandler{session: session}
}

// Handle executes the GetStatus query
func (h *GetStatusHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*GetStatusQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetStatusQuery")
	}

	view, err := h.session.Status()
	if err != nil {
		return nil, err
	}
	return &view, nil
}
