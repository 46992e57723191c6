package queries

import (
	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
)

// RegisterHandlers wires every game query to the mediator
func RegisterHandlers(m mediator.Mediator, session *game.Session) error {
	if err := mediator.RegisterHandler[*GetStatusQuery](m, NewGetStatusHandler(session)); err != nil {
		return err
	}
	if err := mediator.RegisterHandler[*GetChunkQuery](m, NewGetChunkHandler(session)); err != nil {
		return err
	}
	return mediator.RegisterHandler[*ListRecipesQuery](m, NewListRecipesHandler(session))
}
