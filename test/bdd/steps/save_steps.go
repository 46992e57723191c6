package steps

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/outpost-go/internal/adapters/catalog"
	"github.com/andrescamacho/outpost-go/internal/adapters/persistence"
	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/test/helpers"
)

type saveState struct {
	profile   string
	session   *game.Session
	scheduler *shared.ManualScheduler
	clock     *shared.MockClock
	seeds     []int64
	machineID string
}

func (ss *saveState) reset() {
	*ss = saveState{}
}

// close shuts the running session down, which writes a final save
func (ss *saveState) close(ctx context.Context) {
	if ss.session != nil {
		_, _ = ss.session.Close(ctx)
		ss.session = nil
	}
}

// start opens a session for profile on the shared database. The clock
// continues from the previous session so saved jobs keep their timing.
func (ss *saveState) start(ctx context.Context, profile string) error {
	now := helpers.TestEpoch
	if ss.clock != nil {
		now = ss.clock.Now()
	}
	ss.close(ctx)

	recipes, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to load default recipes: %w", err)
	}

	cfg := helpers.DefaultGameConfig()
	cfg.Save.Profile = profile

	ss.clock = shared.NewMockClock(now)
	ss.scheduler = shared.NewManualScheduler(ss.clock)
	session, err := game.NewSession(game.Options{
		Config:    cfg,
		Store:     persistence.NewGormKeyValueStore(helpers.SharedTestDB, ss.clock),
		Catalog:   recipes,
		Clock:     ss.clock,
		Scheduler: ss.scheduler,
		Logger:    helpers.NewRecordingLogger(),
		NewSeed:   func() int64 { return helpers.TestSeed },
	})
	if err != nil {
		return err
	}

	report, err := session.Load(ctx)
	if err != nil {
		return err
	}
	if report.ReadErr != nil {
		return fmt.Errorf("save could not be read: %w", report.ReadErr)
	}

	ss.session = session
	ss.profile = profile
	ss.seeds = append(ss.seeds, report.Seed)
	return nil
}

func (ss *saveState) runtime() (*game.Runtime, error) {
	if ss.session == nil {
		return nil, fmt.Errorf("no session has been started")
	}
	return ss.session.Runtime()
}

// Given steps

func (oc *outpostContext) aFreshDatabase() error {
	return helpers.TruncateAllTables()
}

func (oc *outpostContext) aSessionForProfileIsStarted(ctx context.Context, profile string) error {
	return oc.save.start(ctx, profile)
}

func (oc *outpostContext) theSessionInventoryHolds(a int, resA string, b int, resB string) error {
	return oc.creditSession(map[shared.ResourceType]int{
		shared.ResourceType(resA): a,
		shared.ResourceType(resB): b,
	})
}

func (oc *outpostContext) theSessionInventoryHoldsOne(amount int, resource string) error {
	return oc.creditSession(map[shared.ResourceType]int{shared.ResourceType(resource): amount})
}

func (oc *outpostContext) creditSession(gains map[shared.ResourceType]int) error {
	rt, err := oc.save.runtime()
	if err != nil {
		return err
	}
	rt.Workshop.Inventory().Credit(gains)
	return nil
}

func (oc *outpostContext) aMachineIsPlacedInTheSession(machineType string) error {
	rt, err := oc.save.runtime()
	if err != nil {
		return err
	}
	t, err := crafting.ParseMachineType(machineType)
	if err != nil {
		return err
	}
	status, err := rt.Workshop.PlaceMachine(t)
	if err != nil {
		return err
	}
	oc.save.machineID = status.MachineID
	return nil
}

func (oc *outpostContext) aRecipeIsStartedInTheSession(recipeID string) error {
	rt, err := oc.save.runtime()
	if err != nil {
		return err
	}
	_, err = rt.Workshop.StartCraft(oc.save.machineID, recipeID, 1)
	return err
}

// When steps

func (oc *outpostContext) secondsPassInTheSession(ctx context.Context, seconds int) error {
	if oc.save.session == nil {
		return fmt.Errorf("no session has been started")
	}
	oc.save.scheduler.Advance(time.Duration(seconds) * time.Second)
	_, err := oc.save.session.Tick(ctx)
	return err
}

func (oc *outpostContext) theSessionIsSaved(ctx context.Context) error {
	if oc.save.session == nil {
		return fmt.Errorf("no session has been started")
	}
	return oc.save.session.Save(ctx)
}

func (oc *outpostContext) theSessionIsRestarted(ctx context.Context) error {
	if oc.save.session == nil {
		return fmt.Errorf("no session has been started")
	}
	return oc.save.start(ctx, oc.save.profile)
}

// Then steps

func (oc *outpostContext) theWorldSeedShouldBeTheSame() error {
	seeds := oc.save.seeds
	if len(seeds) < 2 {
		return fmt.Errorf("expected at least two loads, got %d", len(seeds))
	}
	if seeds[len(seeds)-1] != seeds[0] {
		return fmt.Errorf("expected seed %d after restart, got %d", seeds[0], seeds[len(seeds)-1])
	}
	return nil
}

func (oc *outpostContext) theSessionMachineShouldBe(state string, percent int) error {
	if oc.save.session == nil {
		return fmt.Errorf("no session has been started")
	}
	for _, status := range oc.save.session.MachineStatus() {
		if status.MachineID != oc.save.machineID {
			continue
		}
		if string(status.State) != state {
			return fmt.Errorf("expected machine %s to be %s, got %s", status.MachineID, state, status.State)
		}
		if got := int(math.Round(status.Progress * 100)); got != percent {
			return fmt.Errorf("expected progress %d%%, got %d%%", percent, got)
		}
		return nil
	}
	return fmt.Errorf("machine %s was not restored", oc.save.machineID)
}

func (oc *outpostContext) theSessionInventoryShouldHold(expected int, resource string) error {
	if oc.save.session == nil {
		return fmt.Errorf("no session has been started")
	}
	if got := oc.save.session.InventorySnapshot()[shared.ResourceType(resource)]; got != expected {
		return fmt.Errorf("expected %d %s in the session inventory, got %d", expected, resource, got)
	}
	return nil
}

func registerSaveSteps(ctx *godog.ScenarioContext, oc *outpostContext) {
	ctx.Step(`^a fresh database$`, oc.aFreshDatabase)
	ctx.Step(`^a session for profile "([^"]*)" is started$`, oc.aSessionForProfileIsStarted)
	ctx.Step(`^the session inventory holds (\d+) "([^"]*)" and (\d+) "([^"]*)"$`, oc.theSessionInventoryHolds)
	ctx.Step(`^the session inventory holds (\d+) "([^"]*)"$`, oc.theSessionInventoryHoldsOne)
	ctx.Step(`^a "([^"]*)" is placed in the session$`, oc.aMachineIsPlacedInTheSession)
	ctx.Step(`^"([^"]*)" is started in the session$`, oc.aRecipeIsStartedInTheSession)

	ctx.Step(`^(\d+) seconds pass in the session$`, oc.secondsPassInTheSession)
	ctx.Step(`^the session is saved$`, oc.theSessionIsSaved)
	ctx.Step(`^the session is restarted$`, oc.theSessionIsRestarted)

	ctx.Step(`^the world seed should be the same as before$`, oc.theWorldSeedShouldBeTheSame)
	ctx.Step(`^the session machine should be "([^"]*)" with progress (\d+) percent$`, oc.theSessionMachineShouldBe)
	ctx.Step(`^the session inventory should hold (\d+) "([^"]*)"$`, oc.theSessionInventoryShouldHold)
}
