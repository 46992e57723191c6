package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
)

// ListRecipesQuery lists the catalog, optionally for one machine type
type ListRecipesQuery struct {
	MachineType string
}

// ListRecipesResponse holds the matching recipes in catalog order
type ListRecipesResponse struct {
	Recipes []crafting.Recipe
}

// ListRecipesHandler handles the ListRecipes query
type ListRecipesHandler struct {
	session *game.Session
}

// NewListRecipesHandler creates a new ListRecipesHandler
func NewListRecipesHandler(session *game.Session) *ListRecipesHandler {
	return &ListRecipesHandler{session: session}
}

// Handle executes the ListRecipes query
func (h *ListRecipesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListRecipesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListRecipesQuery")
	}

	catalog := h.session.Catalog()
	if query.MachineType == "" {
		return &ListRecipesResponse{Recipes: catalog.All()}, nil
	}

	machineType, err := crafting.ParseMachineType(query.MachineType)
	if err != nil {
		return nil, err
	}
	return &ListRecipesResponse{Recipes: catalog.ForMachine(machineType)}, nil
}
