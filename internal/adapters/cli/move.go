package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	grpcadapter "github.com/andrescamacho/outpost-go/internal/adapters/grpc"
)

// NewMoveCommand creates the move command
func NewMoveCommand() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "move <up|down|left|right>",
		Short: "Walk the player",
		Long: `Walk the player one or more tiles in a direction.

Every step is a separate position update, so nodes along the whole path
are discovered once the player stops.

Examples:
  outpost move up
  outpost move left --steps 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				reply, err := client.Move(ctx, args[0], steps)
				if err != nil {
					return err
				}
				return printResult(reply, func() { printPosition(reply) })
			})
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "Number of tiles to walk")

	return cmd
}

// NewGotoCommand creates the goto command
func NewGotoCommand() *cobra.Command {
	var x, y int64

	cmd := &cobra.Command{
		Use:   "goto",
		Short: "Place the player on a tile",
		Long: `Place the player directly on a tile, as a continuous movement source
would. Nodes are only discovered around the destination.

Example:
  outpost goto --x 40 --y -12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("x") || !cmd.Flags().Changed("y") {
				return fmt.Errorf("--x and --y flags are required")
			}
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				reply, err := client.SetPosition(ctx, x, y)
				if err != nil {
					return err
				}
				return printResult(reply, func() { printPosition(reply) })
			})
		},
	}

	cmd.Flags().Int64Var(&x, "x", 0, "Tile X coordinate (required)")
	cmd.Flags().Int64Var(&y, "y", 0, "Tile Y coordinate (required)")

	return cmd
}

// NewPinCommand creates the pin command
func NewPinCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin <node-id>",
		Short: "Pin a discovered node",
		Long: `Pin a discovered node so it stays selected. The pin is released as
soon as a different node becomes the nearest one.

Example:
  outpost pin node:12:-4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				ack, err := client.Pin(ctx, args[0])
				if err != nil {
					return err
				}
				return printResult(ack, func() { fmt.Printf("✓ %s\n", ack.Message) })
			})
		},
	}

	return cmd
}

func printPosition(reply *grpcadapter.PositionReply) {
	fmt.Printf("Position:        (%d, %d)\n", reply.Position.X, reply.Position.Y)
	if reply.NewlyPending > 0 {
		fmt.Printf("Newly in range:  %d node(s), discovered once you stop\n", reply.NewlyPending)
	}
	if reply.Pinned != "" {
		fmt.Printf("Pinned:          %s\n", reply.Pinned)
	}
}
