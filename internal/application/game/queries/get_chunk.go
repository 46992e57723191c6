package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

// MaxChunkRadius bounds how many chunks one query renders
const MaxChunkRadius = 2

// GetChunkQuery renders the chunks around the player, or around Center
// when it is set
type GetChunkQuery struct {
	Center *world.ChunkCoord
	Radius int
}

// GetChunkResponse holds the rendered chunks in row-major order
type GetChunkResponse struct {
	Chunks []game.ChunkView
}

// GetChunkHandler handles the GetChunk query
type GetChunkHandler struct {
	session *game.Session
}

// NewGetChunkHandler creates a new GetChunkHandler
func NewGetChunkHandler(session *game.Session) *GetChunkHandler {
	return &GetChunkHandler{session: session}
}

// Handle executes the GetChunk query
func (h *GetChunkHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetChunkQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetChunkQuery")
	}
	if query.Radius < 0 || query.Radius > MaxChunkRadius {
		return nil, shared.NewValidationError("radius", fmt.Sprintf("must be between 0 and %d", MaxChunkRadius))
	}

	rt, err := h.session.Runtime()
	if err != nil {
		return nil, err
	}

	center := rt.Indexer.ChunkOf(rt.Discovery.Position())
	if query.Center != nil {
		center = *query.Center
	}

	resp := &GetChunkResponse{}
	for _, coord := range rt.Indexer.ChunksVisibleAround(center, query.Radius) {
		view, err := h.session.Chunk(coord)
		if err != nil {
			return nil, err
		}
		resp.Chunks = append(resp.Chunks, view)
	}
	return resp, nil
}
