package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	grpcadapter "github.com/andrescamacho/outpost-go/internal/adapters/grpc"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the player, machines and inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				view, err := client.Status(ctx)
				if err != nil {
					return err
				}
				return printResult(view, func() {
					useColors := !noColor && os.Getenv("NO_COLOR") == ""
					fmt.Print(NewTreeFormatter(useColors).FormatStatus(view))
				})
			})
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

// NewToastCommand creates the toast command with subcommands
func NewToastCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toast",
		Short: "Manage milestone toasts",
	}

	ack := &cobra.Command{
		Use:   "ack <milestone-id>",
		Short: "Mark a milestone toast as shown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				reply, err := client.AcknowledgeToast(ctx, args[0])
				if err != nil {
					return err
				}
				return printResult(reply, func() { fmt.Printf("✓ %s\n", reply.Message) })
			})
		},
	}

	cmd.AddCommand(ack)
	return cmd
}
