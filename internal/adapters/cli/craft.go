package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	grpcadapter "github.com/andrescamacho/outpost-go/internal/adapters/grpc"
)

// NewCraftCommand creates the craft command with subcommands
func NewCraftCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "craft",
		Short: "Run recipes on machines",
		Long: `Start, cancel, pause and resume jobs.

Inputs are debited when a job starts and outputs are credited when it
completes. A cancelled job refunds its inputs only if the daemon is
configured to.

Examples:
  outpost craft start --machine smelter-1a2b3c4d --recipe smelt_iron --batch 4
  outpost craft start --machine smelter-1a2b3c4d --recipe smelt_copper --queue
  outpost craft pause --machine smelter-1a2b3c4d
  outpost craft cancel --machine smelter-1a2b3c4d --clear-queue`,
	}

	cmd.AddCommand(newCraftStartCommand())
	cmd.AddCommand(newCraftCancelCommand())
	cmd.AddCommand(newCraftToggleCommand("pause", "Pause the job on a machine"))
	cmd.AddCommand(newCraftToggleCommand("resume", "Resume a paused job"))

	return cmd
}

func newCraftStartCommand() *cobra.Command {
	req := &grpcadapter.StartCraftRequest{}

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a recipe on a machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.MachineID == "" || req.RecipeID == "" {
				return fmt.Errorf("--machine and --recipe flags are required")
			}
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				reply, err := client.StartCraft(ctx, req)
				if err != nil {
					return err
				}
				return printResult(reply, func() {
					if reply.Started {
						fmt.Println("✓ Craft started")
					} else {
						fmt.Printf("✓ Craft queued at position %d\n", reply.QueuePosition)
					}
					printMachine(reply.Machine)
				})
			})
		},
	}

	cmd.Flags().StringVar(&req.MachineID, "machine", "", "Machine ID (required)")
	cmd.Flags().StringVar(&req.RecipeID, "recipe", "", "Recipe ID (required)")
	cmd.Flags().IntVar(&req.Batch, "batch", 1, "Number of recipe runs")
	cmd.Flags().BoolVar(&req.Queue, "queue", false, "Queue the request if the machine is busy")

	return cmd
}

func newCraftCancelCommand() *cobra.Command {
	var (
		machineID  string
		clearQueue bool
	)

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the job on a machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if machineID == "" {
				return fmt.Errorf("--machine flag is required")
			}
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				reply, err := client.CancelCraft(ctx, machineID, clearQueue)
				if err != nil {
					return err
				}
				return printResult(reply, func() {
					fmt.Printf("✓ Cancelled %s on %s\n", reply.RecipeID, reply.MachineID)
					if len(reply.Refunded) > 0 {
						fmt.Printf("  Refunded: %s\n", formatCounts(reply.Refunded))
					}
					if reply.NextStarted {
						fmt.Println("  Next queued request started")
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&machineID, "machine", "", "Machine ID (required)")
	cmd.Flags().BoolVar(&clearQueue, "clear-queue", false, "Also drop the machine's queued requests")

	return cmd
}

func newCraftToggleCommand(action, short string) *cobra.Command {
	var machineID string

	cmd := &cobra.Command{
		Use:   action,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if machineID == "" {
				return fmt.Errorf("--machine flag is required")
			}
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				call := client.PauseCraft
				if action == "resume" {
					call = client.ResumeCraft
				}
				machine, err := call(ctx, machineID)
				if err != nil {
					return err
				}
				return printResult(machine, func() { printMachine(*machine) })
			})
		},
	}

	cmd.Flags().StringVar(&machineID, "machine", "", "Machine ID (required)")

	return cmd
}

// NewRecipesCommand creates the recipes command
func NewRecipesCommand() *cobra.Command {
	var machineType string

	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List the recipe catalog",
		Long: `List the recipes the daemon knows, optionally for one machine type.

Examples:
  outpost recipes
  outpost recipes --machine-type smelter`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				reply, err := client.Recipes(ctx, machineType)
				if err != nil {
					return err
				}
				return printResult(reply, func() {
					for _, r := range reply.Recipes {
						fmt.Printf("%-16s %-10s %5.1fs  %s -> %s\n",
							r.ID, r.MachineType, r.ProcessingSeconds, formatCounts(r.Inputs), formatCounts(r.Outputs))
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&machineType, "machine-type", "", "Only list recipes for this machine type")

	return cmd
}
