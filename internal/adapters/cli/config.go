package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/outpost-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage Outpost configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (OUTPOST_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (default profile, socket) are stored in ~/.outpost/preferences.yaml

Examples:
  outpost config show
  outpost config set-profile alpha
  outpost config set-socket /run/user/1000/outpost.sock
  outpost config clear-profile`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetProfileCommand())
	cmd.AddCommand(newConfigClearProfileCommand())
	cmd.AddCommand(newConfigSetSocketCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig("")
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Printf("Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			if jsonOutput {
				return printResult(map[string]any{"config": cfg, "user": userCfg}, nil)
			}

			fmt.Println("Outpost Configuration")
			fmt.Println("=====================")

			fmt.Println("User Preferences:")
			fmt.Printf("  Config file:      %s\n", userConfigHandler.GetConfigPath())
			fmt.Printf("  Default Profile:  %s\n", orNotSet(userCfg.DefaultProfile))
			fmt.Printf("  Socket:           %s\n", orNotSet(userCfg.SocketPath))
			fmt.Printf("  Active Profile:   %s\n", config.ResolveProfile("", cfg, userCfg))

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Printf("  Host:             %s\n", cfg.Database.Host)
				fmt.Printf("  Port:             %d\n", cfg.Database.Port)
				fmt.Printf("  Database:         %s\n", cfg.Database.Name)
				fmt.Printf("  User:             %s\n", cfg.Database.User)
			}

			fmt.Println("\nDaemon:")
			fmt.Printf("  Socket Path:      %s\n", cfg.Daemon.SocketPath)
			fmt.Printf("  PID File:         %s\n", cfg.Daemon.PIDFile)
			fmt.Printf("  Shutdown Timeout: %s\n", cfg.Daemon.ShutdownTimeout)

			fmt.Println("\nWorld:")
			if cfg.World.Seed != 0 {
				fmt.Printf("  Seed:             %d\n", cfg.World.Seed)
			} else {
				fmt.Printf("  Seed:             (saved or generated)\n")
			}
			fmt.Printf("  Chunk Size:       %d\n", cfg.World.ChunkSize)
			fmt.Printf("  View Radius:      %d\n", cfg.World.ViewRadius)
			fmt.Printf("  Node Density:     %d‰\n", cfg.World.NodeDensityPermille)

			fmt.Println("\nDiscovery:")
			fmt.Printf("  Radius:           %d\n", cfg.Discovery.Radius)
			fmt.Printf("  Debounce:         %s\n", cfg.Discovery.Debounce)
			fmt.Printf("  Shutdown Policy:  %s\n", cfg.Discovery.ShutdownPolicy)

			fmt.Println("\nCrafting:")
			fmt.Printf("  Cancel Refund:    %t\n", cfg.Crafting.CancelRefund)
			fmt.Printf("  Recipe Catalog:   %s\n", orNotSet(cfg.Crafting.RecipeCatalog))

			fmt.Println("\nSave:")
			fmt.Printf("  Autosave:         %s\n", cfg.Save.AutosaveInterval)
			fmt.Printf("  Min Interval:     %s\n", cfg.Save.MinSaveInterval)
			fmt.Printf("  Breaker:          %d failures, %s open\n", cfg.Save.BreakerMaxFailures, cfg.Save.BreakerTimeout)

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}

	return cmd
}

func newConfigSetProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-profile <profile>",
		Short: "Set the default save profile",
		Long: `Set the save profile the daemon loads when no --profile flag is given.
Restart the daemon for the change to take effect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := args[0]
			if err := config.NewValidator().Validate(&struct {
				Profile string `validate:"profile"`
			}{Profile: profile}); err != nil {
				return err
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultProfile(profile); err != nil {
				return fmt.Errorf("failed to set default profile: %w", err)
			}

			fmt.Println("✓ Default profile set")
			fmt.Printf("  Profile: %s\n", profile)
			return nil
		},
	}

	return cmd
}

func newConfigClearProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-profile",
		Short: "Clear the default save profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.ClearDefaultProfile(); err != nil {
				return fmt.Errorf("failed to clear default profile: %w", err)
			}

			fmt.Println("✓ Default profile cleared")
			return nil
		},
	}

	return cmd
}

func newConfigSetSocketCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-socket <path>",
		Short: "Remember the daemon socket path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				return err
			}
			userCfg.SocketPath = args[0]
			if err := userConfigHandler.Save(userCfg); err != nil {
				return err
			}

			fmt.Printf("✓ Socket set to %s\n", args[0])
			return nil
		},
	}

	return cmd
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
