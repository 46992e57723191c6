package helpers

import (
	"testing"
	"time"

	"github.com/andrescamacho/outpost-go/internal/adapters/catalog"
	"github.com/andrescamacho/outpost-go/internal/application/game"
	appsave "github.com/andrescamacho/outpost-go/internal/application/savegame"
	"github.com/andrescamacho/outpost-go/internal/domain/discovery"
	"github.com/andrescamacho/outpost-go/internal/domain/savegame"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

// TestEpoch is the start time of every test clock
var TestEpoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// TestSeed is the world seed used by session fixtures
const TestSeed int64 = 20250301

// DefaultGameConfig is a small deterministic configuration
func DefaultGameConfig() game.Config {
	return game.Config{
		ChunkSize:  16,
		ViewRadius: 1,
		World:      world.DefaultOptions(),
		Discovery: discovery.Config{
			Radius:         3,
			Debounce:       50 * time.Millisecond,
			ShutdownPolicy: discovery.ShutdownFlush,
		},
		Save: appsave.Config{
			Profile:            "test",
			BreakerMaxFailures: 3,
			BreakerTimeout:     30 * time.Second,
		},
	}
}

// GameFixture is a session driven by a manual scheduler
type GameFixture struct {
	Session   *game.Session
	Scheduler *shared.ManualScheduler
	Clock     *shared.MockClock
	Logger    *RecordingLogger
}

// NewGameFixture builds an unloaded session over store with the default
// recipe catalog. A nil store gets a fresh MockKeyValueStore.
func NewGameFixture(t testing.TB, store savegame.KeyValueStore, cfg game.Config) *GameFixture {
	t.Helper()
	if store == nil {
		store = NewMockKeyValueStore()
	}

	recipes, err := catalog.Default()
	if err != nil {
		t.Fatalf("failed to load default recipes: %v", err)
	}

	clock := shared.NewMockClock(TestEpoch)
	scheduler := shared.NewManualScheduler(clock)
	logger := NewRecordingLogger()

	session, err := game.NewSession(game.Options{
		Config:    cfg,
		Store:     store,
		Catalog:   recipes,
		Clock:     clock,
		Scheduler: scheduler,
		Logger:    logger,
		NewSeed:   func() int64 { return TestSeed },
	})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	return &GameFixture{Session: session, Scheduler: scheduler, Clock: clock, Logger: logger}
}

// FindNodeNear scans growing squares around pos and returns the first node
func FindNodeNear(seed int64, cfg game.Config, pos shared.Position) world.ResourceNode {
	gen := world.NewGenerator(seed, cfg.World)
	for r := int64(0); ; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if node, ok := gen.NodeAt(pos.Offset(dx, dy)); ok {
					return node
				}
			}
		}
	}
}
