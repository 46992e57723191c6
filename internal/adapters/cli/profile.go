package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/outpost-go/internal/adapters/persistence"
	appsave "github.com/andrescamacho/outpost-go/internal/application/savegame"
	"github.com/andrescamacho/outpost-go/internal/domain/savegame"
	"github.com/andrescamacho/outpost-go/internal/infrastructure/config"
	"github.com/andrescamacho/outpost-go/internal/infrastructure/database"
	"github.com/andrescamacho/outpost-go/internal/infrastructure/logging"
	"github.com/andrescamacho/outpost-go/internal/infrastructure/pidfile"
)

// NewProfileCommand creates the profile command with subcommands. Profile
// commands work on the database directly and do not need the daemon.
func NewProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and reset save profiles",
		Long: `Each profile is an independent save stored under its own keys.

Examples:
  outpost profile list
  outpost profile reset alpha --yes`,
	}

	cmd.AddCommand(newProfileListCommand())
	cmd.AddCommand(newProfileResetCommand())

	return cmd
}

type profileInfo struct {
	Profile     string `json:"profile"`
	LastSavedAt string `json:"lastSavedAt,omitempty"`
}

func newProfileListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles with saved data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, cfg *config.Config, store *persistence.GormKeyValueStore) error {
				profiles, err := appsave.ListProfiles(ctx, store)
				if err != nil {
					return err
				}

				infos := make([]profileInfo, 0, len(profiles))
				for _, p := range profiles {
					info := profileInfo{Profile: p}
					if keys, err := savegame.NewKeys(p); err == nil {
						if at, ok, err := store.UpdatedAt(ctx, keys.Key(savegame.EntityLastSavedAt)); err == nil && ok {
							info.LastSavedAt = at.Format("2006-01-02 15:04:05")
						}
					}
					infos = append(infos, info)
				}

				return printResult(infos, func() {
					if len(infos) == 0 {
						fmt.Println("No saved profiles")
						return
					}
					for _, info := range infos {
						fmt.Printf("%-20s %s\n", info.Profile, orNotSet(info.LastSavedAt))
					}
				})
			})
		},
	}

	return cmd
}

func newProfileResetCommand() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset [profile]",
		Short: "Delete every saved key of a profile",
		Long: `Delete the save of a profile. The next daemon start on that profile
begins a new world. Refused while the daemon is running.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to reset without --yes")
			}

			return withStore(func(ctx context.Context, cfg *config.Config, store *persistence.GormKeyValueStore) error {
				if pid, err := pidfile.New(cfg.Daemon.PIDFile).Running(); err == nil {
					return fmt.Errorf("daemon is running (pid %d); stop it before resetting a profile", pid)
				} else if !errors.Is(err, pidfile.ErrNotRunning) {
					return err
				}

				var explicit string
				if len(args) == 1 {
					explicit = args[0]
				}
				userCfg := &config.UserConfig{}
				if handler, err := config.NewUserConfigHandler(); err == nil {
					if loaded, err := handler.Load(); err == nil {
						userCfg = loaded
					}
				}
				profile := config.ResolveProfile(explicit, cfg, userCfg)

				logger, err := logging.NewLogger(cfg.Logging)
				if err != nil {
					return err
				}
				defer logger.Close()

				svc, err := appsave.NewService(store, appsave.Config{
					Profile:            profile,
					BreakerMaxFailures: cfg.Save.BreakerMaxFailures,
					BreakerTimeout:     cfg.Save.BreakerTimeout,
				}, nil, logger)
				if err != nil {
					return err
				}
				if err := svc.Reset(ctx); err != nil {
					return err
				}

				fmt.Printf("✓ Profile %s reset\n", profile)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the reset")

	return cmd
}

// withStore opens the configured database for commands that bypass the
// daemon
func withStore(fn func(ctx context.Context, cfg *config.Config, store *persistence.GormKeyValueStore) error) error {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return fn(context.Background(), cfg, persistence.NewGormKeyValueStore(db, nil))
}

