package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
	"github.com/andrescamacho/outpost-go/test/helpers"
)

// handPlacedNodes is a fixed map of resource nodes. It serves as the
// discovery source and as the crafting node registry.
type handPlacedNodes struct {
	mu    sync.Mutex
	nodes map[string]world.ResourceNode
	order []string
}

func newHandPlacedNodes() *handPlacedNodes {
	return &handPlacedNodes{nodes: make(map[string]world.ResourceNode)}
}

func (h *handPlacedNodes) add(node world.ResourceNode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.nodes[node.ID]; !ok {
		h.order = append(h.order, node.ID)
	}
	h.nodes[node.ID] = node
}

func (h *handPlacedNodes) NodesWithin(center shared.Position, radius int) []world.ResourceNode {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []world.ResourceNode
	for _, id := range h.order {
		if node := h.nodes[id]; center.WithinRadius(node.Position, radius) {
			out = append(out, node)
		}
	}
	return out
}

func (h *handPlacedNodes) Lookup(id string) (world.ResourceNode, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	node, ok := h.nodes[id]
	if !ok {
		return world.ResourceNode{}, shared.NewNotFoundError("resource node", id)
	}
	return node, nil
}

func (h *handPlacedNodes) Deplete(id string, qty int) (world.ResourceNode, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	node, ok := h.nodes[id]
	if !ok {
		return world.ResourceNode{}, shared.NewNotFoundError("resource node", id)
	}
	node.RemainingAmount = max(node.RemainingAmount-qty, 0)
	h.nodes[id] = node
	return node, nil
}

// outpostContext holds the state of one scenario across every step file
type outpostContext struct {
	clock     *shared.MockClock
	scheduler *shared.ManualScheduler
	nodes     *handPlacedNodes

	discovery discoveryState
	crafting  craftingState
	save      saveState
}

func (oc *outpostContext) reset() {
	oc.clock = shared.NewMockClock(helpers.TestEpoch)
	oc.scheduler = shared.NewManualScheduler(oc.clock)
	oc.nodes = newHandPlacedNodes()
	oc.discovery = discoveryState{}
	oc.crafting = craftingState{}
	oc.save.reset()
}

// advance moves time forward, firing due timers unless they are held back
func (oc *outpostContext) advance(d time.Duration) {
	if oc.crafting.holdTimers {
		oc.clock.Advance(d)
		return
	}
	oc.scheduler.Advance(d)
}

// Given steps

func (oc *outpostContext) aWorldWithTheNodes(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("node table needs a header and at least one row")
	}
	header := columnIndex(table.Rows[0])
	for _, row := range table.Rows[1:] {
		x, err := strconv.ParseInt(cell(row, header, "x"), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid x: %w", err)
		}
		y, err := strconv.ParseInt(cell(row, header, "y"), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid y: %w", err)
		}
		amount, err := strconv.Atoi(cell(row, header, "amount"))
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}

		pos := shared.NewPosition(x, y)
		id := cell(row, header, "id")
		if id == "" {
			id = world.NodeID(pos)
		}
		resource := shared.ResourceType(cell(row, header, "type"))
		oc.nodes.add(world.ResourceNode{
			ID:              id,
			Type:            resource,
			DisplayName:     resource.DisplayName() + " Deposit",
			Position:        pos,
			Capacity:        amount,
			RemainingAmount: amount,
		})
	}
	return nil
}

// Then steps

func (oc *outpostContext) nodeShouldHaveRemaining(id string, expected int) error {
	node, err := oc.nodes.Lookup(id)
	if err != nil {
		return err
	}
	if node.RemainingAmount != expected {
		return fmt.Errorf("expected node %s to have %d remaining, got %d", id, expected, node.RemainingAmount)
	}
	return nil
}

func columnIndex(header *messages.PickleTableRow) map[string]int {
	index := make(map[string]int, len(header.Cells))
	for i, c := range header.Cells {
		index[strings.TrimSpace(c.Value)] = i
	}
	return index
}

func cell(row *messages.PickleTableRow, header map[string]int, name string) string {
	i, ok := header[name]
	if !ok || i >= len(row.Cells) {
		return ""
	}
	return strings.TrimSpace(row.Cells[i].Value)
}

// parseQuantities reads "iron_ore:5,coal:2"
func parseQuantities(s string) (map[shared.ResourceType]int, error) {
	out := map[shared.ResourceType]int{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		name, amount, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("quantity %q is not resource:amount", part)
		}
		n, err := strconv.Atoi(amount)
		if err != nil {
			return nil, fmt.Errorf("quantity %q: %w", part, err)
		}
		out[shared.ResourceType(name)] = n
	}
	return out, nil
}

// InitializeOutpostScenario registers every step of the outpost features
func InitializeOutpostScenario(ctx *godog.ScenarioContext) {
	oc := &outpostContext{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		oc.reset()
		return c, nil
	})
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		oc.save.close(c)
		return c, nil
	})

	ctx.Step(`^a world with the nodes:$`, oc.aWorldWithTheNodes)
	ctx.Step(`^node "([^"]*)" should have (\d+) remaining$`, oc.nodeShouldHaveRemaining)

	registerDiscoverySteps(ctx, oc)
	registerCraftingSteps(ctx, oc)
	registerSaveSteps(ctx, oc)
}
