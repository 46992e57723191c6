package commands

import (
	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
)

// RegisterHandlers wires every game command to the mediator
func RegisterHandlers(m mediator.Mediator, session *game.Session) error {
	pause := NewPauseCraftHandler(session)

	registrations := []error{
		mediator.RegisterHandler[*MovePlayerCommand](m, NewMovePlayerHandler(session)),
		mediator.RegisterHandler[*SetPositionCommand](m, NewSetPositionHandler(session)),
		mediator.RegisterHandler[*PinNodeCommand](m, NewPinNodeHandler(session)),
		mediator.RegisterHandler[*PlaceMachineCommand](m, NewPlaceMachineHandler(session)),
		mediator.RegisterHandler[*AssignNodeCommand](m, NewAssignNodeHandler(session)),
		mediator.RegisterHandler[*StartCraftCommand](m, NewStartCraftHandler(session)),
		mediator.RegisterHandler[*CancelCraftCommand](m, NewCancelCraftHandler(session)),
		mediator.RegisterHandler[*PauseCraftCommand](m, pause),
		mediator.RegisterHandler[*ResumeCraftCommand](m, pause),
		mediator.RegisterHandler[*AcknowledgeToastCommand](m, NewAcknowledgeToastHandler(session)),
		mediator.RegisterHandler[*SaveGameCommand](m, NewSaveGameHandler(session)),
	}
	for _, err := range registrations {
		if err != nil {
			return err
		}
	}
	return nil
}
