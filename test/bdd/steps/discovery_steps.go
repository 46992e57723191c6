package steps

import (
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/outpost-go/internal/domain/discovery"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

type discoveryState struct {
	cfg      discovery.Config
	engine   *discovery.Engine
	flushes  []discovery.Flush
	shutdown *discovery.ShutdownReport
}

// engine builds the discovery engine on first use so the Given steps can
// still change its configuration
func (oc *outpostContext) engine() *discovery.Engine {
	ds := &oc.discovery
	if ds.engine == nil {
		ds.engine = discovery.NewEngine(oc.nodes, ds.cfg, oc.scheduler, oc.clock)
		ds.engine.SetFlushListener(discovery.FlushListenerFunc(func(f discovery.Flush) {
			ds.flushes = append(ds.flushes, f)
		}))
	}
	return ds.engine
}

// Given steps

func (oc *outpostContext) aDiscoveryRadiusAndDebounce(radius, debounceMs int) error {
	oc.discovery.cfg.Radius = radius
	oc.discovery.cfg.Debounce = time.Duration(debounceMs) * time.Millisecond
	return nil
}

func (oc *outpostContext) theShutdownPolicyIs(policy string) error {
	switch discovery.ShutdownPolicy(policy) {
	case discovery.ShutdownFlush, discovery.ShutdownDrop:
		oc.discovery.cfg.ShutdownPolicy = discovery.ShutdownPolicy(policy)
		return nil
	default:
		return fmt.Errorf("unknown shutdown policy: %s", policy)
	}
}

// When steps

func (oc *outpostContext) thePlayerPositionIsSetTo(x, y int64) error {
	_, err := oc.engine().UpdatePosition(shared.NewPosition(x, y))
	return err
}

func (oc *outpostContext) millisecondsPass(ms int) error {
	oc.engine()
	oc.scheduler.Advance(time.Duration(ms) * time.Millisecond)
	return nil
}

func (oc *outpostContext) thePlayerWalks(direction string, steps int) error {
	dir, err := discovery.ParseDirection(direction)
	if err != nil {
		return err
	}
	for i := 0; i < steps; i++ {
		if _, err := oc.engine().Move(dir); err != nil {
			return err
		}
	}
	return nil
}

func (oc *outpostContext) discoveryShutsDown() error {
	report := oc.engine().Shutdown()
	oc.discovery.shutdown = &report
	return nil
}

// Then steps

func (oc *outpostContext) nodeShouldBeDiscovered(id string) error {
	if !oc.engine().IsDiscovered(id) {
		return fmt.Errorf("expected node %s to be discovered, discovered: %v", id, oc.engine().Discovered())
	}
	return nil
}

func (oc *outpostContext) nodeShouldNotBeDiscovered(id string) error {
	if oc.engine().IsDiscovered(id) {
		return fmt.Errorf("expected node %s not to be discovered", id)
	}
	return nil
}

func (oc *outpostContext) flushesShouldHaveBeenPublished(expected int) error {
	if got := len(oc.discovery.flushes); got != expected {
		return fmt.Errorf("expected %d discovery flushes, got %d", expected, got)
	}
	return nil
}

func (oc *outpostContext) nodesShouldBePending(expected int) error {
	if got := oc.engine().PendingCount(); got != expected {
		return fmt.Errorf("expected %d pending nodes, got %d", expected, got)
	}
	return nil
}

func (oc *outpostContext) nodesShouldHaveBeenDropped(expected int) error {
	if oc.discovery.shutdown == nil {
		return fmt.Errorf("discovery was not shut down")
	}
	if got := len(oc.discovery.shutdown.Dropped); got != expected {
		return fmt.Errorf("expected %d dropped nodes, got %d", expected, got)
	}
	return nil
}

func (oc *outpostContext) thePlayerShouldBeAt(x, y int64) error {
	if got := oc.engine().Position(); got != shared.NewPosition(x, y) {
		return fmt.Errorf("expected player at %d,%d, got %s", x, y, got)
	}
	return nil
}

func registerDiscoverySteps(ctx *godog.ScenarioContext, oc *outpostContext) {
	ctx.Step(`^a discovery radius of (\d+) and a debounce of (\d+) milliseconds$`, oc.aDiscoveryRadiusAndDebounce)
	ctx.Step(`^the discovery shutdown policy is "([^"]*)"$`, oc.theShutdownPolicyIs)

	ctx.Step(`^the player position is set to (-?\d+),(-?\d+)$`, oc.thePlayerPositionIsSetTo)
	ctx.Step(`^(\d+) milliseconds pass$`, oc.millisecondsPass)
	ctx.Step(`^the player walks "([^"]*)" (\d+) times$`, oc.thePlayerWalks)
	ctx.Step(`^discovery shuts down$`, oc.discoveryShutsDown)

	ctx.Step(`^node "([^"]*)" should be discovered$`, oc.nodeShouldBeDiscovered)
	ctx.Step(`^node "([^"]*)" should not be discovered$`, oc.nodeShouldNotBeDiscovered)
	ctx.Step(`^(\d+) discovery flush(?:es)? should have been published$`, oc.flushesShouldHaveBeenPublished)
	ctx.Step(`^(\d+) nodes? should be pending discovery$`, oc.nodesShouldBePending)
	ctx.Step(`^(\d+) nodes? should have been dropped at shutdown$`, oc.nodesShouldHaveBeenDropped)
	ctx.Step(`^the player should be at (-?\d+),(-?\d+)$`, oc.thePlayerShouldBeAt)
}
