package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/andrescamacho/outpost-go/internal/adapters/metrics"
	"github.com/andrescamacho/outpost-go/internal/application/logging"
	appsave "github.com/andrescamacho/outpost-go/internal/application/savegame"
	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
	"github.com/andrescamacho/outpost-go/internal/domain/discovery"
	"github.com/andrescamacho/outpost-go/internal/domain/progression"
	"github.com/andrescamacho/outpost-go/internal/domain/savegame"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
	"github.com/andrescamacho/outpost-go/pkg/utils"
)

// ErrNotLoaded is returned by operations that need a loaded world
var ErrNotLoaded = errors.New("game session is not loaded")

// ErrClosed is returned after Close
var ErrClosed = errors.New("game session is closed")

// Config gathers the tunables of every engine the session owns
type Config struct {
	// Seed pins the world seed; zero uses the saved seed or creates one
	Seed       int64
	ChunkSize  int
	ViewRadius int
	// ChunkCache bounds the generated-chunk memo; zero disables it
	ChunkCache int
	World      world.Options
	Discovery  discovery.Config
	Crafting   crafting.Policy
	Save       appsave.Config
}

// Options are the session dependencies. Clock, Scheduler and Logger are
// optional.
type Options struct {
	Config    Config
	Store     savegame.KeyValueStore
	Catalog   *crafting.RecipeCatalog
	Clock     shared.Clock
	Scheduler shared.Scheduler
	Logger    logging.Logger
	// NewSeed creates the seed of a fresh world; defaults to the clock
	NewSeed func() int64
}

// Runtime is the set of engines built by Load
type Runtime struct {
	Seed      int64
	Generator *world.Generator
	Indexer   *world.ChunkIndexer
	Nodes     *world.NodeRegistry
	Discovery *discovery.Engine
	Workshop  *crafting.Workshop
	Tracker   *progression.Tracker
}

// LoadReport describes what Load found
type LoadReport struct {
	Found    bool
	Seed     int64
	NewWorld bool
	Issues   []savegame.DecodeIssue
	// ReadErr is set when the store could not be read and a fresh game
	// was started instead
	ReadErr error
	// RestoreErr lists saved machines that could not be restored
	RestoreErr error
}

// CloseReport describes what Close did with in-flight state
type CloseReport struct {
	Discovery discovery.ShutdownReport
	SaveErr   error
}

// Session is one running game: the world, the discovery and crafting
// engines, milestones and the save service for one profile
type Session struct {
	cfg       Config
	catalog   *crafting.RecipeCatalog
	clock     shared.Clock
	scheduler shared.Scheduler
	logger    logging.Logger
	newSeed   func() int64
	save      *appsave.Service

	mu      sync.RWMutex
	runtime *Runtime
	closed  bool
}

// NewSession validates the options and creates the save service. The world
// is built by Load.
func NewSession(opts Options) (*Session, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("recipe catalog cannot be nil")
	}
	if opts.Clock == nil {
		opts.Clock = shared.NewRealClock()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = shared.NewRealScheduler()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOp()
	}
	if opts.Config.ChunkSize <= 0 {
		opts.Config.ChunkSize = world.DefaultChunkSize
	}
	if opts.Config.World == (world.Options{}) {
		opts.Config.World = world.DefaultOptions()
	}
	if opts.NewSeed == nil {
		clock := opts.Clock
		opts.NewSeed = func() int64 { return clock.Now().UnixNano() }
	}

	save, err := appsave.NewService(opts.Store, opts.Config.Save, opts.Clock, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create save service: %w", err)
	}

	return &Session{
		cfg:       opts.Config,
		catalog:   opts.Catalog,
		clock:     opts.Clock,
		scheduler: opts.Scheduler,
		logger:    opts.Logger,
		newSeed:   opts.NewSeed,
		save:      save,
	}, nil
}

// Load reads the profile and builds the world around it. Store failures do
// not fail Load: the session starts from defaults and the report says why.
func (s *Session) Load(ctx context.Context) (LoadReport, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return LoadReport{}, ErrClosed
	}
	if s.runtime != nil {
		s.mu.Unlock()
		return LoadReport{}, fmt.Errorf("game session is already loaded")
	}

	result := s.save.Load(ctx)
	state := result.State
	report := LoadReport{Found: result.Found, Issues: result.Issues, ReadErr: result.Err}

	seed, newWorld := s.resolveSeed(state)
	report.Seed, report.NewWorld = seed, newWorld

	rt, err := s.buildRuntime(seed, state)
	report.RestoreErr = err
	s.runtime = rt
	s.mu.Unlock()

	if err != nil {
		s.logger.Log("WARNING", "Some saved machines could not be restored", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// nodes inside the radius at the saved position start their debounce now
	if _, err := rt.Discovery.UpdatePosition(state.PlayerPosition); err != nil {
		return report, err
	}

	s.logger.Log("INFO", "Game loaded", map[string]interface{}{
		"profile":    s.save.Keys().Profile(),
		"seed":       seed,
		"new_world":  newWorld,
		"discovered": len(state.Discovered),
		"machines":   rt.Workshop.MachineCount(),
	})

	if newWorld {
		// the seed must outlive this process even if nothing else is saved
		if err := s.Save(ctx); err != nil {
			s.logger.Log("WARNING", "Could not persist new world seed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return report, nil
}

func (s *Session) resolveSeed(state savegame.GameState) (int64, bool) {
	switch {
	case s.cfg.Seed != 0:
		if state.HasWorldSeed && state.WorldSeed != s.cfg.Seed {
			s.logger.Log("WARNING", "Configured seed overrides saved seed", map[string]interface{}{
				"saved":      state.WorldSeed,
				"configured": s.cfg.Seed,
			})
		}
		return s.cfg.Seed, !state.HasWorldSeed || state.WorldSeed != s.cfg.Seed
	case state.HasWorldSeed:
		return state.WorldSeed, false
	default:
		seed := s.newSeed()
		if seed == 0 {
			seed = 1
		}
		return seed, true
	}
}

func (s *Session) buildRuntime(seed int64, state savegame.GameState) (*Runtime, error) {
	gen := world.NewGenerator(seed, s.cfg.World)
	ledger := world.NewDepletionLedger()
	ledger.Restore(state.NodeAmounts)

	indexerOpts := []world.IndexerOption{world.WithLedger(ledger)}
	if s.cfg.ChunkCache > 0 {
		indexerOpts = append(indexerOpts, world.WithChunkCache(s.cfg.ChunkCache))
	}
	indexer := world.NewChunkIndexer(gen, s.cfg.ChunkSize, indexerOpts...)
	nodes := world.NewNodeRegistry(gen, ledger)

	engine := discovery.NewEngine(indexer, s.cfg.Discovery, s.scheduler, s.clock)
	engine.Restore(state.PlayerPosition, state.Discovered)

	workshop := crafting.NewWorkshop(s.catalog, crafting.NewInventory(state.Inventory), nodes, s.cfg.Crafting, s.scheduler, s.clock)
	workshop.SetIDGenerator(func(t crafting.MachineType) string {
		return utils.GenerateMachineID(string(t))
	})
	restoreErr := workshop.Restore(state.Machines, state.CraftingQueues)

	tracker := progression.NewTracker(s.clock)
	tracker.Restore(state.Milestones, state.ToastFlags)
	exhausted := 0
	for _, remaining := range state.NodeAmounts {
		if remaining <= 0 {
			exhausted++
		}
	}
	tracker.Observe(progression.Stats{
		Discovered:     len(engine.Discovered()),
		MachinesPlaced: workshop.MachineCount(),
		ExhaustedNodes: exhausted,
	})

	rt := &Runtime{
		Seed:      seed,
		Generator: gen,
		Indexer:   indexer,
		Nodes:     nodes,
		Discovery: engine,
		Workshop:  workshop,
		Tracker:   tracker,
	}

	engine.SetFlushListener(discovery.FlushListenerFunc(func(f discovery.Flush) {
		s.onDiscoveryFlush(rt, f)
	}))
	engine.OnMove(func(from, to shared.Position, dir discovery.Direction) {
		metrics.RecordMove(string(dir))
	})
	workshop.SetEventListener(crafting.EventListenerFunc(func(e crafting.Event) {
		s.onCraftingEvent(rt, e)
	}))

	return rt, restoreErr
}

// Runtime returns the loaded engines
func (s *Session) Runtime() (*Runtime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.runtime == nil {
		return nil, ErrNotLoaded
	}
	return s.runtime, nil
}

// Catalog returns the recipe catalog
func (s *Session) Catalog() *crafting.RecipeCatalog {
	return s.catalog
}

// SaveService exposes the save service for status and maintenance
func (s *Session) SaveService() *appsave.Service {
	return s.save
}

// State captures the current game as a savable state
func (s *Session) State() (savegame.GameState, error) {
	rt, err := s.Runtime()
	if err != nil {
		return savegame.GameState{}, err
	}
	return s.stateOf(rt), nil
}

func (s *Session) stateOf(rt *Runtime) savegame.GameState {
	return savegame.GameState{
		WorldSeed:      rt.Seed,
		HasWorldSeed:   true,
		PlayerPosition: rt.Discovery.Position(),
		Discovered:     rt.Discovery.Discovered(),
		Machines:       rt.Workshop.Snapshot(),
		CraftingQueues: rt.Workshop.Queues(),
		Inventory:      rt.Workshop.Inventory().Snapshot(),
		NodeAmounts:    rt.Nodes.Ledger().Snapshot(),
		Milestones:     rt.Tracker.Achieved(),
		ToastFlags:     rt.Tracker.ShownToasts(),
	}
}

// Save writes the full game state
func (s *Session) Save(ctx context.Context) error {
	s.mu.RLock()
	rt := s.runtime
	s.mu.RUnlock()
	if rt == nil {
		return ErrNotLoaded
	}
	return s.save.Save(ctx, s.stateOf(rt))
}

// TickReport lists what a tick did
type TickReport struct {
	Completed  []crafting.CompletionResult
	FlushedErr error
}

// Tick sweeps finished crafting jobs and writes a deferred discovery save
func (s *Session) Tick(ctx context.Context) (TickReport, error) {
	rt, err := s.Runtime()
	if err != nil {
		return TickReport{}, err
	}

	report := TickReport{Completed: rt.Workshop.Tick()}
	report.FlushedErr = s.save.FlushPending(ctx)
	return report, nil
}

// InventorySnapshot returns the inventory counts, empty before Load
func (s *Session) InventorySnapshot() map[shared.ResourceType]int {
	rt, err := s.Runtime()
	if err != nil {
		return map[shared.ResourceType]int{}
	}
	return rt.Workshop.Inventory().Snapshot()
}

// MachineStatus returns the per-machine status, empty before Load
func (s *Session) MachineStatus() []crafting.MachineStatus {
	rt, err := s.Runtime()
	if err != nil {
		return nil
	}
	return rt.Workshop.Status()
}

// Close applies the discovery shutdown policy, stops crafting timers and
// writes a final save. It is safe to call more than once.
func (s *Session) Close(ctx context.Context) (CloseReport, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return CloseReport{}, nil
	}
	s.closed = true
	rt := s.runtime
	s.mu.Unlock()

	if rt == nil {
		return CloseReport{}, nil
	}

	report := CloseReport{Discovery: rt.Discovery.Shutdown()}
	rt.Workshop.Shutdown()
	report.SaveErr = s.save.Save(ctx, s.stateOf(rt))

	s.logger.Log("INFO", "Game closed", map[string]interface{}{
		"policy":  string(report.Discovery.Policy),
		"flushed": len(report.Discovery.Flushed),
		"dropped": len(report.Discovery.Dropped),
		"saved":   report.SaveErr == nil,
	})
	return report, report.SaveErr
}

func (s *Session) onDiscoveryFlush(rt *Runtime, f discovery.Flush) {
	metrics.RecordDiscoveryFlush(len(f.NodeIDs))
	s.award(rt.Tracker.Record(progression.Stats{Discovered: len(f.NodeIDs)}))

	progress := appsave.DiscoveryProgress{Position: f.Position, Discovered: rt.Discovery.Discovered()}
	if _, err := s.save.SaveDiscovery(context.Background(), progress); err != nil {
		s.logger.Log("WARNING", "Discovery save failed, will retry with the next save", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.logger.Log("DEBUG", "Nodes discovered", map[string]interface{}{
		"count":    len(f.NodeIDs),
		"position": f.Position.String(),
		"pinned":   f.Pinned,
	})
}

func (s *Session) onCraftingEvent(rt *Runtime, e crafting.Event) {
	metrics.RecordCraftingEvent(string(e.Type), string(e.MachineType))

	switch e.Type {
	case crafting.EventMachinePlaced:
		s.award(rt.Tracker.Record(progression.Stats{MachinesPlaced: 1}))
	case crafting.EventJobCompleted:
		for resource, units := range e.Resources {
			metrics.RecordProduction(string(resource), units)
		}
		delta := progression.Stats{CraftsCompleted: 1}
		if kind, err := e.MachineType.Kind(); err == nil && kind == crafting.KindExtractor {
			delta.Extractions = 1
		}
		if e.Node != nil && e.Node.IsExhausted() {
			delta.ExhaustedNodes = 1
		}
		s.award(rt.Tracker.Record(delta))
	case crafting.EventQueuedStartFail:
		s.logger.Log("WARNING", "Queued craft dropped", map[string]interface{}{
			"machine": e.MachineID,
			"recipe":  e.RecipeID,
			"error":   errString(e.Err),
		})
	}
}

func (s *Session) award(ids []progression.MilestoneID) {
	for _, id := range ids {
		m, _ := progression.Lookup(id)
		s.logger.Log("INFO", "Milestone reached", map[string]interface{}{
			"milestone": string(id),
			"title":     m.Title,
		})
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
