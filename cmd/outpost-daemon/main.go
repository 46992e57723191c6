package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrescamacho/outpost-go/internal/adapters/catalog"
	grpcadapter "github.com/andrescamacho/outpost-go/internal/adapters/grpc"
	"github.com/andrescamacho/outpost-go/internal/adapters/metrics"
	"github.com/andrescamacho/outpost-go/internal/adapters/persistence"
	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/game/commands"
	"github.com/andrescamacho/outpost-go/internal/application/game/queries"
	applogging "github.com/andrescamacho/outpost-go/internal/application/logging"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
	appsave "github.com/andrescamacho/outpost-go/internal/application/savegame"
	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
	"github.com/andrescamacho/outpost-go/internal/domain/discovery"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
	"github.com/andrescamacho/outpost-go/internal/infrastructure/config"
	"github.com/andrescamacho/outpost-go/internal/infrastructure/database"
	"github.com/andrescamacho/outpost-go/internal/infrastructure/logging"
	"github.com/andrescamacho/outpost-go/internal/infrastructure/pidfile"
	"github.com/andrescamacho/outpost-go/pkg/utils"
)

// chunkCacheSize bounds the generated-chunk memo of the daemon's world
const chunkCacheSize = 256

func main() {
	configPath := flag.String("config", "", "Path to config file (default: search ./, ./configs, ~/.outpost, /etc/outpost)")
	profileFlag := flag.String("profile", "", "Save profile to load (default: user default, then save.profile)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		logger.Log("ERROR", "Failed to acquire PID file lock", map[string]interface{}{
			"pid_file": pf.Path(),
			"error":    err.Error(),
		})
		logger.Close()
		os.Exit(1)
	}

	profile := config.ResolveProfile(*profileFlag, cfg, loadUserConfig())
	exitCode := 0
	if err := run(cfg, profile, logger); err != nil {
		logger.Log("ERROR", "Daemon stopped with error", map[string]interface{}{"error": err.Error()})
		exitCode = 1
	}

	if err := pf.Release(); err != nil {
		logger.Log("WARNING", "Failed to release PID file", map[string]interface{}{"error": err.Error()})
	}
	logger.Close()
	os.Exit(exitCode)
}

func loadUserConfig() *config.UserConfig {
	handler, err := config.NewUserConfigHandler()
	if err != nil {
		return nil
	}
	userCfg, err := handler.Load()
	if err != nil {
		return nil
	}
	return userCfg
}

func run(cfg *config.Config, profile string, logger applogging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Database and key-value store
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	store := persistence.NewGormKeyValueStore(db, nil)
	logger.Log("INFO", "Database connected", map[string]interface{}{"type": cfg.Database.Type})

	// 2. Recipe catalog
	recipes, err := catalog.Load(cfg.Crafting.RecipeCatalog)
	if err != nil {
		return fmt.Errorf("failed to load recipe catalog: %w", err)
	}

	// 3. Game session
	session, err := game.NewSession(game.Options{
		Config:  gameConfig(cfg, profile),
		Store:   store,
		Catalog: recipes,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	// 4. Metrics, before Load so the load itself is recorded
	var commandCollector *metrics.CommandMetricsCollector
	if cfg.Metrics.Enabled {
		commandCollector, err = startMetrics(ctx, cfg, session, logger)
		if err != nil {
			return err
		}
	}

	report, err := session.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load game: %w", err)
	}
	logger.Log("INFO", "Game loaded", map[string]interface{}{
		"session":   utils.GenerateSessionID(),
		"profile":   profile,
		"seed":      report.Seed,
		"new_world": report.NewWorld,
		"issues":    len(report.Issues),
	})

	// 5. Mediator
	med := mediator.NewMediator()
	med.RegisterMiddleware(applogging.Middleware(logger))
	if commandCollector != nil {
		med.RegisterMiddleware(metrics.PrometheusMiddleware(commandCollector))
	}
	if err := commands.RegisterHandlers(med, session); err != nil {
		return fmt.Errorf("failed to register command handlers: %w", err)
	}
	if err := queries.RegisterHandlers(med, session); err != nil {
		return fmt.Errorf("failed to register query handlers: %w", err)
	}

	// 6. Background tick and autosave
	tickDone := make(chan struct{})
	go func() {
		defer close(tickDone)
		runTicker(ctx, session, cfg.Crafting.TickInterval, cfg.Save.AutosaveInterval, logger)
	}()

	// 7. gRPC server, blocks until a signal arrives
	server, err := grpcadapter.NewDaemonServer(med, cfg.Daemon.SocketPath, logger)
	if err != nil {
		stop()
		<-tickDone
		closeSession(session, cfg.Daemon.ShutdownTimeout, logger)
		return err
	}
	serveErr := server.Start(ctx, cfg.Daemon.ShutdownTimeout)

	stop()
	<-tickDone
	closeSession(session, cfg.Daemon.ShutdownTimeout, logger)
	return serveErr
}

func gameConfig(cfg *config.Config, profile string) game.Config {
	opts := world.DefaultOptions()
	opts.DensityPermille = cfg.World.NodeDensityPermille
	opts.MinCapacity = cfg.World.MinNodeCapacity
	opts.MaxCapacity = cfg.World.MaxNodeCapacity

	return game.Config{
		Seed:       cfg.World.Seed,
		ChunkSize:  cfg.World.ChunkSize,
		ViewRadius: cfg.World.ViewRadius,
		ChunkCache: chunkCacheSize,
		World:      opts,
		Discovery: discovery.Config{
			Radius:         cfg.Discovery.Radius,
			Debounce:       cfg.Discovery.Debounce,
			ShutdownPolicy: discovery.ShutdownPolicy(cfg.Discovery.ShutdownPolicy),
		},
		Crafting: crafting.Policy{RefundOnCancel: cfg.Crafting.CancelRefund},
		Save: appsave.Config{
			Profile:            profile,
			MinSaveInterval:    cfg.Save.MinSaveInterval,
			BreakerMaxFailures: cfg.Save.BreakerMaxFailures,
			BreakerTimeout:     cfg.Save.BreakerTimeout,
		},
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, session *game.Session, logger applogging.Logger) (*metrics.CommandMetricsCollector, error) {
	metrics.InitRegistry()

	persistenceCollector := metrics.NewPersistenceMetricsCollector()
	discoveryCollector := metrics.NewDiscoveryMetricsCollector()
	craftingCollector := metrics.NewCraftingMetricsCollector(session)
	commandCollector := metrics.NewCommandMetricsCollector()

	for _, register := range []func() error{
		persistenceCollector.Register,
		discoveryCollector.Register,
		craftingCollector.Register,
		commandCollector.Register,
	} {
		if err := register(); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	metrics.SetGlobalPersistenceCollector(persistenceCollector)
	metrics.SetGlobalDiscoveryCollector(discoveryCollector)
	metrics.SetGlobalCraftingCollector(craftingCollector)

	server, err := metrics.NewServer(cfg.Metrics.Addr(), cfg.Metrics.Path)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := server.Serve(); err != nil {
			logger.Log("ERROR", "Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
	craftingCollector.Start(ctx, cfg.Metrics.CollectInterval)

	go func() {
		<-ctx.Done()
		craftingCollector.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Log("INFO", "Metrics server listening", map[string]interface{}{
		"address": server.Addr(),
		"path":    cfg.Metrics.Path,
	})
	return commandCollector, nil
}

// runTicker sweeps finished jobs every tick and writes a full save every
// autosave interval until ctx is cancelled
func runTicker(ctx context.Context, session *game.Session, tick, autosave time.Duration, logger applogging.Logger) {
	tickTicker := time.NewTicker(tick)
	defer tickTicker.Stop()

	var autosaveC <-chan time.Time
	if autosave > 0 {
		autosaveTicker := time.NewTicker(autosave)
		defer autosaveTicker.Stop()
		autosaveC = autosaveTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tickTicker.C:
			report, err := session.Tick(ctx)
			if err != nil {
				continue
			}
			if report.FlushedErr != nil {
				logger.Log("WARNING", "Deferred discovery save failed", map[string]interface{}{
					"error": report.FlushedErr.Error(),
				})
			}
		case <-autosaveC:
			if err := session.Save(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log("WARNING", "Autosave failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

func closeSession(session *game.Session, timeout time.Duration, logger applogging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	report, err := session.Close(ctx)
	if err != nil {
		logger.Log("ERROR", "Failed to close game session", map[string]interface{}{"error": err.Error()})
		return
	}
	if report.SaveErr != nil {
		logger.Log("ERROR", "Final save failed", map[string]interface{}{"error": report.SaveErr.Error()})
	}
}
