package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/outpost-go/internal/infrastructure/config"
)

var (
	// Global flags
	socketPath string
	jsonOutput bool
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "outpost",
		Short: "Outpost CLI - Explore the world and run your machines",
		Long: `Outpost CLI drives a running outpost daemon.
The CLI communicates with the daemon via Unix socket; the daemon owns the
world, the machines and the save.

Examples:
  outpost move up --steps 3
  outpost map --radius 1
  outpost machine place --type miner --node node:12:-4
  outpost craft start --machine smelter-1a2b3c4d --recipe smelt_iron --batch 2
  outpost status
  outpost profile list`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("socket") {
				return nil
			}
			// A socket saved in the user config wins over the built-in default
			if handler, err := config.NewUserConfigHandler(); err == nil {
				if userCfg, err := handler.Load(); err == nil && userCfg.SocketPath != "" && os.Getenv("OUTPOST_SOCKET") == "" {
					socketPath = userCfg.SocketPath
				}
			}
			return nil
		},
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", getDefaultSocketPath(),
		"Path to daemon Unix socket")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Print raw JSON replies")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewProfileCommand())
	rootCmd.AddCommand(NewHealthCommand())
	rootCmd.AddCommand(NewMoveCommand())
	rootCmd.AddCommand(NewGotoCommand())
	rootCmd.AddCommand(NewPinCommand())
	rootCmd.AddCommand(NewMapCommand())
	rootCmd.AddCommand(NewMachineCommand())
	rootCmd.AddCommand(NewCraftCommand())
	rootCmd.AddCommand(NewRecipesCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewToastCommand())
	rootCmd.AddCommand(NewSaveCommand())

	return rootCmd
}

// getDefaultSocketPath returns the default socket path
func getDefaultSocketPath() string {
	if path := os.Getenv("OUTPOST_SOCKET"); path != "" {
		return path
	}
	return "/tmp/outpost-daemon.sock"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
