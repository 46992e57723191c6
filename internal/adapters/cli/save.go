package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	grpcadapter "github.com/andrescamacho/outpost-go/internal/adapters/grpc"
)

// NewSaveCommand creates the save command
func NewSaveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the game now",
		Long: `Write the full game state immediately. The daemon also autosaves
on an interval and on shutdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				ack, err := client.Save(ctx)
				if err != nil {
					return err
				}
				return printResult(ack, func() { fmt.Printf("✓ %s\n", ack.Message) })
			})
		},
	}

	return cmd
}
