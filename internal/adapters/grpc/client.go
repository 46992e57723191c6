package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/andrescamacho/outpost-go/internal/application/game"
)

// DaemonClient talks to a running daemon over its unix socket
type DaemonClient struct {
	conn *grpc.ClientConn
}

// NewDaemonClient creates a client for the daemon listening on socketPath.
// The connection is made lazily on the first call.
func NewDaemonClient(socketPath string) (*DaemonClient, error) {
	conn, err := grpc.NewClient(
		"unix:"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket: %w", err)
	}
	return NewDaemonClientWithConn(conn), nil
}

// NewDaemonClientWithConn wraps an existing connection
func NewDaemonClientWithConn(conn *grpc.ClientConn) *DaemonClient {
	return &DaemonClient{conn: conn}
}

// Close closes the gRPC connection
func (c *DaemonClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func invoke[Resp any](ctx context.Context, c *DaemonClient, method string, req any) (*Resp, error) {
	resp := new(Resp)
	if err := c.conn.Invoke(ctx, fullMethod(method), req, resp, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	return resp, nil
}

// Health asks the daemon's health service whether GameService is serving
func (c *DaemonClient) Health(ctx context.Context) (string, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return "", fmt.Errorf("health check failed: %w", err)
	}
	return resp.GetStatus().String(), nil
}

func (c *DaemonClient) Move(ctx context.Context, direction string, steps int) (*PositionReply, error) {
	resp, err := invoke[PositionReply](ctx, c, "Move", &MoveRequest{Direction: direction, Steps: steps})
	if err != nil {
		return nil, fmt.Errorf("failed to move: %w", err)
	}
	return resp, nil
}

func (c *DaemonClient) SetPosition(ctx context.Context, x, y int64) (*PositionReply, error) {
	resp, err := invoke[PositionReply](ctx, c, "SetPosition", &SetPositionRequest{X: x, Y: y})
	if err != nil {
		return nil, fmt.Errorf("failed to set position: %w", err)
	}
	return resp, nil
}

func (c *DaemonClient) Pin(ctx context.Context, nodeID string) (*game.Ack, error) {
	resp, err := invoke[game.Ack](ctx, c, "Pin", &PinRequest{NodeID: nodeID})
	if err != nil {
		return nil, fmt.Errorf("failed to pin node: %w", err)
	}
	return resp, nil
}

func (c *DaemonClient) PlaceMachine(ctx context.Context, machineType, nodeID string) (*game.MachineView, error) {
	resp, err := invoke[game.MachineView](ctx, c, "PlaceMachine", &PlaceMachineRequest{MachineType: machineType, NodeID: nodeID})
	if err != nil {
		return nil, fmt.Errorf("failed to place machine: %w", err)
	}
	return resp, nil
}

func (c *DaemonClient) AssignNode(ctx context.Context, machineID, nodeID string) (*game.MachineView, error) {
	resp, err := invoke[game.MachineView](ctx, c, "AssignNode", &AssignNodeRequest{MachineID: machineID, NodeID: nodeID})
	if err != nil {
		return nil, fmt.Errorf("failed to assign node: %w", err)
	}
	return resp, nil
}

func (c *DaemonClient) StartCraft(ctx context.Context, req *StartCraftRequest) (*CraftReply, error) {
	resp, err := invoke[CraftReply](ctx, c, "StartCraft", req)
	if err != nil {
		return nil, fmt.Errorf("failed to start craft: %w", err)
	}
	return resp, nil
}

func (c *DaemonClient) CancelCraft(ctx context.Context, machineID string, clearQueue bool) (*CancelReply, error) {
	resp, err := invoke[CancelReply](ctx, c, "CancelCraft", &MachineRequest{MachineID: machineID, ClearQueue: clearQueue})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel craft: %w", err)
	}
	return resp, nil
}

func (c *DaemonClient) PauseCraft(ctx context.Context, machineID string) (*game.MachineView, error) {
	resp, err := invoke[game.MachineView](ctx, c, "PauseCraft", &MachineRequest{MachineID: machineID})
	if err != nil {
		return nil, fmt.Errorf("failed to pause craft: %w", err)
	}
	return resp, nil
}

func (c *DaemonClient) ResumeCraft(ctx context.Context, machineID string) (*game.MachineView, error) {
	resp, err := invoke[game.MachineView](ctx, c, "ResumeCraft", &MachineRequest{MachineID: machineID})
	if err != nil {
		return nil, fmt.Errorf("failed to resume craft: %w", err)
	}
	return resp, nil
}

func (c *DaemonClient) AcknowledgeToast(ctx context.Context, milestoneID string) (*game.Ack, error) {
	resp, err := invoke[game.Ack](ctx, c, "AcknowledgeToast", &ToastRequest{MilestoneID: milestoneID})
	if err != nil {
		return nil, fmt.Errorf("failed to acknowledge toast: %w", err)
	}
	return resp, nil
}

func (c *DaemonClient) Save(ctx context.Context) (*game.Ack, error) {
	resp, err := invoke[game.Ack](ctx, c, "Save", &Empty{})
	if err != nil {
		return nil, fmt.Errorf("failed to save: %w", err)
	}
	return resp, nil
}

func (c *DaemonClient) Status(ctx context.Context) (*game.StatusView, error) {
	resp, err := invoke[game.StatusView](ctx, c, "Status", &Empty{})
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return resp, nil
}

func (c *DaemonClient) Chunks(ctx context.Context, req *ChunkRequest) (*ChunkReply, error) {
	resp, err := invoke[ChunkReply](ctx, c, "Chunks", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get chunks: %w", err)
	}
	return resp, nil
}

func (c *DaemonClient) Recipes(ctx context.Context, machineType string) (*RecipesReply, error) {
	resp, err := invoke[RecipesReply](ctx, c, "Recipes", &RecipesRequest{MachineType: machineType})
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return resp, nil
}
