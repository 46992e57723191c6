package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	grpcadapter "github.com/andrescamacho/outpost-go/internal/adapters/grpc"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

// NewMapCommand creates the map command
func NewMapCommand() *cobra.Command {
	var (
		radius   int
		chunkX   int64
		chunkY   int64
		showKeys bool
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Render the chunks around the player",
		Long: `Render chunks as text. '@' is the player; discovered nodes show their
resource letter (I iron, C copper, K coal, S stone, Q quartz) and 'x'
once exhausted. Undiscovered nodes look like plain terrain.

Examples:
  outpost map
  outpost map --radius 1
  outpost map --chunk-x 2 --chunk-y -1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &grpcadapter.ChunkRequest{Radius: radius}
			if cmd.Flags().Changed("chunk-x") || cmd.Flags().Changed("chunk-y") {
				req.Center = &world.ChunkCoord{X: chunkX, Y: chunkY}
			}

			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				reply, err := client.Chunks(ctx, req)
				if err != nil {
					return err
				}
				return printResult(reply, func() {
					for _, chunk := range reply.Chunks {
						fmt.Printf("chunk (%d, %d)\n", chunk.Coord.X, chunk.Coord.Y)
						for _, row := range chunk.Rows {
							fmt.Println(row)
						}
						if showKeys {
							for _, n := range chunk.Nodes {
								fmt.Printf("  %s  %s  %d left\n", n.ID, n.Type, n.RemainingAmount)
							}
						}
						fmt.Println()
					}
				})
			})
		},
	}

	cmd.Flags().IntVar(&radius, "radius", 0, "Chunks to render around the center")
	cmd.Flags().Int64Var(&chunkX, "chunk-x", 0, "Center chunk X (defaults to the player's chunk)")
	cmd.Flags().Int64Var(&chunkY, "chunk-y", 0, "Center chunk Y (defaults to the player's chunk)")
	cmd.Flags().BoolVar(&showKeys, "nodes", false, "List the discovered nodes under each chunk")

	return cmd
}
