package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/andrescamacho/outpost-go/internal/application/game"
)

// ServiceName is the fully qualified GameService name, also used for
// health checks
const ServiceName = "outpost.v1.GameService"

// GameServiceServer is the server API for GameService
type GameServiceServer interface {
	Move(context.Context, *MoveRequest) (*PositionReply, error)
	SetPosition(context.Context, *SetPositionRequest) (*PositionReply, error)
	Pin(context.Context, *PinRequest) (*game.Ack, error)
	PlaceMachine(context.Context, *PlaceMachineRequest) (*game.MachineView, error)
	AssignNode(context.Context, *AssignNodeRequest) (*game.MachineView, error)
	StartCraft(context.Context, *StartCraftRequest) (*CraftReply, error)
	CancelCraft(context.Context, *MachineRequest) (*CancelReply, error)
	PauseCraft(context.Context, *MachineRequest) (*game.MachineView, error)
	ResumeCraft(context.Context, *MachineRequest) (*game.MachineView, error)
	AcknowledgeToast(context.Context, *ToastRequest) (*game.Ack, error)
	Save(context.Context, *Empty) (*game.Ack, error)
	Status(context.Context, *Empty) (*game.StatusView, error)
	Chunks(context.Context, *ChunkRequest) (*ChunkReply, error)
	Recipes(context.Context, *RecipesRequest) (*RecipesReply, error)
}

// unary builds the method handler for one RPC the way generated code does:
// decode the request, then run it through the interceptor chain if any
func unary[Req any, Resp any](method string, call func(GameServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GameServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(method),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(GameServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// GameServiceDesc describes GameService for grpc.Server.RegisterService
var GameServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Move", GameServiceServer.Move),
		unary("SetPosition", GameServiceServer.SetPosition),
		unary("Pin", GameServiceServer.Pin),
		unary("PlaceMachine", GameServiceServer.PlaceMachine),
		unary("AssignNode", GameServiceServer.AssignNode),
		unary("StartCraft", GameServiceServer.StartCraft),
		unary("CancelCraft", GameServiceServer.CancelCraft),
		unary("PauseCraft", GameServiceServer.PauseCraft),
		unary("ResumeCraft", GameServiceServer.ResumeCraft),
		unary("AcknowledgeToast", GameServiceServer.AcknowledgeToast),
		unary("Save", GameServiceServer.Save),
		unary("Status", GameServiceServer.Status),
		unary("Chunks", GameServiceServer.Chunks),
		unary("Recipes", GameServiceServer.Recipes),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "outpost/v1/game.proto",
}

// RegisterGameServiceServer registers srv on s
func RegisterGameServiceServer(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&GameServiceDesc, srv)
}
