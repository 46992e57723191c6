package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	grpcadapter "github.com/andrescamacho/outpost-go/internal/adapters/grpc"
	"github.com/andrescamacho/outpost-go/internal/application/game"
)

// NewMachineCommand creates the machine command with subcommands
func NewMachineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "machine",
		Short: "Place and manage machines",
		Long: `Place machines and assign extractors to resource nodes.

Machine types:
  MINER      extracts raw resources from an assigned node
  SMELTER    turns ores into ingots, glass and bricks
  ASSEMBLER  turns ingots into parts

Examples:
  outpost machine place --type smelter
  outpost machine place --type miner --node node:12:-4
  outpost machine assign --machine miner-1a2b3c4d --node node:13:-4
  outpost machine list`,
	}

	cmd.AddCommand(newMachinePlaceCommand())
	cmd.AddCommand(newMachineAssignCommand())
	cmd.AddCommand(newMachineListCommand())

	return cmd
}

func newMachinePlaceCommand() *cobra.Command {
	var machineType, nodeID string

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place a new machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if machineType == "" {
				return fmt.Errorf("--type flag is required")
			}
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				machine, err := client.PlaceMachine(ctx, machineType, nodeID)
				if err != nil {
					return err
				}
				return printResult(machine, func() {
					fmt.Println("✓ Machine placed")
					printMachine(*machine)
				})
			})
		},
	}

	cmd.Flags().StringVar(&machineType, "type", "", "Machine type (required)")
	cmd.Flags().StringVar(&nodeID, "node", "", "Resource node to assign right away (extractors only)")

	return cmd
}

func newMachineAssignCommand() *cobra.Command {
	var machineID, nodeID string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign an extractor to a resource node",
		RunE: func(cmd *cobra.Command, args []string) error {
			if machineID == "" || nodeID == "" {
				return fmt.Errorf("--machine and --node flags are required")
			}
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				machine, err := client.AssignNode(ctx, machineID, nodeID)
				if err != nil {
					return err
				}
				return printResult(machine, func() {
					fmt.Println("✓ Node assigned")
					printMachine(*machine)
				})
			})
		},
	}

	cmd.Flags().StringVar(&machineID, "machine", "", "Machine ID (required)")
	cmd.Flags().StringVar(&nodeID, "node", "", "Resource node ID (required)")

	return cmd
}

func newMachineListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List placed machines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, client *grpcadapter.DaemonClient) error {
				view, err := client.Status(ctx)
				if err != nil {
					return err
				}
				return printResult(view.Machines, func() {
					if len(view.Machines) == 0 {
						fmt.Println("No machines placed")
						return
					}
					for i, m := range view.Machines {
						if i > 0 {
							fmt.Println()
						}
						printMachine(m)
					}
				})
			})
		},
	}

	return cmd
}

func printMachine(m game.MachineView) {
	fmt.Printf("  ID:        %s\n", m.ID)
	fmt.Printf("  Type:      %s\n", m.Type)
	fmt.Printf("  State:     %s\n", m.State)
	if m.AssignedNodeID != "" {
		fmt.Printf("  Node:      %s\n", m.AssignedNodeID)
	}
	if m.RecipeID != "" {
		fmt.Printf("  Recipe:    %s x%d\n", m.RecipeID, m.Batch)
		fmt.Printf("  Progress:  %s %3.0f%% (%d/%d)", progressBar(m.Progress, 20), m.Progress*100, m.UnitsDone, m.UnitsTotal)
		if m.Remaining != "" {
			fmt.Printf(", %s left", m.Remaining)
		}
		fmt.Println()
	}
	if m.QueueLength > 0 {
		fmt.Printf("  Queued:    %d\n", m.QueueLength)
	}
}
