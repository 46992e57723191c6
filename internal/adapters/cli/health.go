package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	grpcadapter "github.com/andrescamacho/outpost-go/internal/adapters/grpc"
)

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check daemon health status",
		Long:  `Verify that the daemon is running and serving the game.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				state, err := client.Health(ctx)
				if err != nil {
					return err
				}

				view, err := client.Status(ctx)
				if err != nil {
					return err
				}

				fmt.Println("✓ Daemon is healthy")
				fmt.Printf("  Status:       %s\n", state)
				fmt.Printf("  Socket:       %s\n", socketPath)
				fmt.Printf("  Profile:      %s\n", view.Profile)
				fmt.Printf("  Save breaker: %s\n", view.SaveBreaker)
				return nil
			})
		},
	}

	return cmd
}
