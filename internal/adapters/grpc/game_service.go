package grpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/game/commands"
	"github.com/andrescamacho/outpost-go/internal/application/game/queries"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// GameService implements GameServiceServer by sending every call through
// the mediator as a game command or query
type GameService struct {
	mediator mediator.Mediator
}

// NewGameService creates the service over a mediator that has the game
// handlers registered
func NewGameService(m mediator.Mediator) *GameService {
	return &GameService{mediator: m}
}

func send[T any](ctx context.Context, m mediator.Mediator, request mediator.Request) (*T, error) {
	response, err := m.Send(ctx, request)
	if err != nil {
		return nil, toStatus(err)
	}
	typed, ok := response.(*T)
	if !ok {
		return nil, status.Errorf(codes.Internal, "unexpected response type %T", response)
	}
	return typed, nil
}

func (s *GameService) Move(ctx context.Context, req *MoveRequest) (*PositionReply, error) {
	resp, err := send[commands.MovePlayerResponse](ctx, s.mediator, &commands.MovePlayerCommand{
		Direction: req.Direction,
		Steps:     req.Steps,
	})
	if err != nil {
		return nil, err
	}
	return &PositionReply{Position: resp.Position, NewlyPending: resp.NewlyPending, Pinned: resp.Pinned}, nil
}

func (s *GameService) SetPosition(ctx context.Context, req *SetPositionRequest) (*PositionReply, error) {
	resp, err := send[commands.SetPositionResponse](ctx, s.mediator, &commands.SetPositionCommand{
		Position: shared.NewPosition(req.X, req.Y),
	})
	if err != nil {
		return nil, err
	}
	return &PositionReply{Position: resp.Position, NewlyPending: resp.NewlyPending, Pinned: resp.Pinned}, nil
}

func (s *GameService) Pin(ctx context.Context, req *PinRequest) (*game.Ack, error) {
	return send[game.Ack](ctx, s.mediator, &commands.PinNodeCommand{NodeID: req.NodeID})
}

func (s *GameService) PlaceMachine(ctx context.Context, req *PlaceMachineRequest) (*game.MachineView, error) {
	return machineReply(send[crafting.MachineStatus](ctx, s.mediator, &commands.PlaceMachineCommand{
		MachineType: req.MachineType,
		NodeID:      req.NodeID,
	}))
}

func (s *GameService) AssignNode(ctx context.Context, req *AssignNodeRequest) (*game.MachineView, error) {
	return machineReply(send[crafting.MachineStatus](ctx, s.mediator, &commands.AssignNodeCommand{
		MachineID: req.MachineID,
		NodeID:    req.NodeID,
	}))
}

func (s *GameService) StartCraft(ctx context.Context, req *StartCraftRequest) (*CraftReply, error) {
	resp, err := send[commands.StartCraftResponse](ctx, s.mediator, &commands.StartCraftCommand{
		MachineID: req.MachineID,
		RecipeID:  req.RecipeID,
		Batch:     req.Batch,
		Queue:     req.Queue,
	})
	if err != nil {
		return nil, err
	}

	// Reply with the machine as it is now, so the client sees progress and
	// queue length without a second call
	view, err := s.machine(ctx, req.MachineID)
	if err != nil {
		return nil, err
	}
	return &CraftReply{Started: resp.Started, QueuePosition: resp.QueuePosition, Machine: *view}, nil
}

func (s *GameService) CancelCraft(ctx context.Context, req *MachineRequest) (*CancelReply, error) {
	resp, err := send[crafting.CancelResult](ctx, s.mediator, &commands.CancelCraftCommand{
		MachineID:  req.MachineID,
		ClearQueue: req.ClearQueue,
	})
	if err != nil {
		return nil, err
	}
	return &CancelReply{MachineID: resp.MachineID, RecipeID: resp.RecipeID, Refunded: resourceMap(resp.Refunded), NextStarted: resp.NextStarted}, nil
}

func (s *GameService) PauseCraft(ctx context.Context, req *MachineRequest) (*game.MachineView, error) {
	return machineReply(send[crafting.MachineStatus](ctx, s.mediator, &commands.PauseCraftCommand{MachineID: req.MachineID}))
}

func (s *GameService) ResumeCraft(ctx context.Context, req *MachineRequest) (*game.MachineView, error) {
	return machineReply(send[crafting.MachineStatus](ctx, s.mediator, &commands.ResumeCraftCommand{MachineID: req.MachineID}))
}

func (s *GameService) AcknowledgeToast(ctx context.Context, req *ToastRequest) (*game.Ack, error) {
	return send[game.Ack](ctx, s.mediator, &commands.AcknowledgeToastCommand{MilestoneID: req.MilestoneID})
}

func (s *GameService) Save(ctx context.Context, _ *Empty) (*game.Ack, error) {
	return send[game.Ack](ctx, s.mediator, &commands.SaveGameCommand{})
}

func (s *GameService) Status(ctx context.Context, _ *Empty) (*game.StatusView, error) {
	return send[game.StatusView](ctx, s.mediator, &queries.GetStatusQuery{})
}

func (s *GameService) Chunks(ctx context.Context, req *ChunkRequest) (*ChunkReply, error) {
	resp, err := send[queries.GetChunkResponse](ctx, s.mediator, &queries.GetChunkQuery{
		Center: req.Center,
		Radius: req.Radius,
	})
	if err != nil {
		return nil, err
	}
	return &ChunkReply{Chunks: resp.Chunks}, nil
}

func (s *GameService) Recipes(ctx context.Context, req *RecipesRequest) (*RecipesReply, error) {
	resp, err := send[queries.ListRecipesResponse](ctx, s.mediator, &queries.ListRecipesQuery{MachineType: req.MachineType})
	if err != nil {
		return nil, err
	}

	reply := &RecipesReply{Recipes: make([]RecipeInfo, 0, len(resp.Recipes))}
	for _, r := range resp.Recipes {
		reply.Recipes = append(reply.Recipes, RecipeInfo{
			ID:                r.ID,
			Name:              r.DisplayName,
			MachineType:       string(r.RequiredMachineType),
			ProcessingSeconds: r.ProcessingTimeSeconds,
			SourceNodeType:    string(r.SourceNodeType),
			Inputs:            quantities(r.Inputs),
			Outputs:           quantities(r.Outputs),
		})
	}
	return reply, nil
}

func (s *GameService) machine(ctx context.Context, machineID string) (*game.MachineView, error) {
	view, err := send[game.StatusView](ctx, s.mediator, &queries.GetStatusQuery{})
	if err != nil {
		return nil, err
	}
	for _, m := range view.Machines {
		if m.ID == machineID {
			return &m, nil
		}
	}
	return nil, status.Errorf(codes.NotFound, "machine %s not found", machineID)
}

func machineReply(st *crafting.MachineStatus, err error) (*game.MachineView, error) {
	if err != nil {
		return nil, err
	}
	view := game.NewMachineView(*st)
	return &view, nil
}

func quantities(qs []crafting.Quantity) map[string]int {
	if len(qs) == 0 {
		return nil
	}
	out := make(map[string]int, len(qs))
	for _, q := range qs {
		out[string(q.Resource)] += q.Amount
	}
	return out
}

func resourceMap(m map[shared.ResourceType]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for r, n := range m {
		out[string(r)] = n
	}
	return out
}

// toStatus maps domain errors onto gRPC codes so the client can tell a bad
// request from a refused transition or an unavailable store
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		validation   *shared.ValidationError
		notFound     *shared.NotFoundError
		transition   *shared.InvalidTransitionError
		insufficient *shared.InsufficientResourcesError
		wrongMachine *shared.InvalidRecipeForMachineError
		noNode       *shared.NoNodeAssignedError
		exhausted    *shared.NodeExhaustedError
		readErr      *shared.PersistenceReadError
		writeErr     *shared.PersistenceWriteError
	)

	switch {
	case errors.As(err, &validation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &notFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &transition),
		errors.As(err, &insufficient),
		errors.As(err, &wrongMachine),
		errors.As(err, &noNode),
		errors.As(err, &exhausted):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &readErr),
		errors.As(err, &writeErr),
		errors.Is(err, game.ErrNotLoaded),
		errors.Is(err, game.ErrClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, fmt.Sprintf("internal error: %v", err))
	}
}
