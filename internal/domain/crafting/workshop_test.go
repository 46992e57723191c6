package crafting_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

// fakeNodes is an in-memory node registry
type fakeNodes struct {
	nodes map[string]world.ResourceNode
}

func newFakeNodes(nodes ...world.ResourceNode) *fakeNodes {
	f := &fakeNodes{nodes: make(map[string]world.ResourceNode)}
	for _, n := range nodes {
		f.nodes[n.ID] = n
	}
	return f
}

func (f *fakeNodes) Lookup(id string) (world.ResourceNode, error) {
	n, ok := f.nodes[id]
	if !ok {
		return world.ResourceNode{}, shared.NewNotFoundError("resource node", id)
	}
	return n, nil
}

func (f *fakeNodes) Deplete(id string, qty int) (world.ResourceNode, error) {
	n, err := f.Lookup(id)
	if err != nil {
		return n, err
	}
	n.RemainingAmount -= qty
	if n.RemainingAmount < 0 {
		n.RemainingAmount = 0
	}
	f.nodes[id] = n
	return n, nil
}

func ironNode(id string, remaining int) world.ResourceNode {
	return world.ResourceNode{
		ID:              id,
		Type:            shared.IronOre,
		DisplayName:     "Iron Ore Deposit",
		Capacity:        remaining,
		RemainingAmount: remaining,
	}
}

func testCatalog(t *testing.T) *crafting.RecipeCatalog {
	t.Helper()
	catalog, err := crafting.NewRecipeCatalog(
		crafting.Recipe{
			ID:                    "smelt_steel",
			DisplayName:           "Steel Ingot",
			Inputs:                []crafting.Quantity{{Resource: shared.IronOre, Amount: 5}, {Resource: shared.Coal, Amount: 2}},
			Outputs:               []crafting.Quantity{{Resource: "steel_ingot", Amount: 1}},
			ProcessingTimeSeconds: 10,
			RequiredMachineType:   crafting.MachineSmelter,
		},
		crafting.Recipe{
			ID:                    "mine_iron",
			DisplayName:           "Iron Ore",
			Outputs:               []crafting.Quantity{{Resource: shared.IronOre, Amount: 1}},
			ProcessingTimeSeconds: 4,
			RequiredMachineType:   crafting.MachineMiner,
			SourceNodeType:        shared.IronOre,
		},
		crafting.Recipe{
			ID:                    "mine_copper",
			DisplayName:           "Copper Ore",
			Outputs:               []crafting.Quantity{{Resource: shared.CopperOre, Amount: 1}},
			ProcessingTimeSeconds: 4,
			RequiredMachineType:   crafting.MachineMiner,
			SourceNodeType:        shared.CopperOre,
		},
	)
	require.NoError(t, err)
	return catalog
}

type eventRecorder struct {
	events []crafting.Event
}

func (r *eventRecorder) OnCraftingEvent(e crafting.Event) {
	r.events = append(r.events, e)
}

func (r *eventRecorder) types() []crafting.EventType {
	out := make([]crafting.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	workshop *crafting.Workshop
	sched    *shared.ManualScheduler
	clock    *shared.MockClock
	nodes    *fakeNodes
	events   *eventRecorder
}

func newFixture(t *testing.T, inventory map[shared.ResourceType]int, policy crafting.Policy, nodes ...world.ResourceNode) *fixture {
	t.Helper()
	clock := shared.NewMockClock(time.Time{})
	sched := shared.NewManualScheduler(clock)
	registry := newFakeNodes(nodes...)
	w := crafting.NewWorkshop(testCatalog(t), crafting.NewInventory(inventory), registry, policy, sched, clock)
	rec := &eventRecorder{}
	w.SetEventListener(rec)
	return &fixture{workshop: w, sched: sched, clock: clock, nodes: registry, events: rec}
}

func (f *fixture) place(t *testing.T, mt crafting.MachineType) string {
	t.Helper()
	status, err := f.workshop.PlaceMachine(mt)
	require.NoError(t, err)
	return status.MachineID
}

func TestWorkshop_StartCraft_InsufficientResourcesLeavesInventoryUnchanged(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 4, shared.Coal: 2}, crafting.Policy{})
	smelter := f.place(t, crafting.MachineSmelter)

	// Act
	_, err := f.workshop.StartCraft(smelter, "smelt_steel", 1)

	// Assert
	var insufficient *shared.InsufficientResourcesError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, map[string]int{"iron_ore": 1}, insufficient.Missing)
	assert.Equal(t, 4, f.workshop.Inventory().Count(shared.IronOre))
	assert.Equal(t, 2, f.workshop.Inventory().Count(shared.Coal))

	status, err := f.workshop.Machine(smelter)
	require.NoError(t, err)
	assert.Equal(t, crafting.StateIdle, status.State)
	assert.Equal(t, 0, f.sched.Pending())
}

func TestWorkshop_Extraction_NodeExhaustedAfterCompletion(t *testing.T) {
	// Arrange
	f := newFixture(t, nil, crafting.Policy{}, ironNode("node:1:0", 1))
	miner := f.place(t, crafting.MachineMiner)
	require.NoError(t, f.workshop.AssignNode(miner, "node:1:0"))

	// Act
	_, err := f.workshop.StartCraft(miner, "mine_iron", 1)
	require.NoError(t, err)
	f.sched.Advance(4 * time.Second)

	// Assert
	node, err := f.nodes.Lookup("node:1:0")
	require.NoError(t, err)
	assert.Equal(t, 0, node.RemainingAmount)
	assert.Equal(t, 1, f.workshop.Inventory().Count(shared.IronOre))

	status, err := f.workshop.Machine(miner)
	require.NoError(t, err)
	assert.Equal(t, crafting.StateIdle, status.State)
	assert.Equal(t, "node:1:0", status.AssignedNodeID)

	_, err = f.workshop.StartCraft(miner, "mine_iron", 1)
	var exhausted *shared.NodeExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "node:1:0", exhausted.NodeID)
}

func TestWorkshop_Extraction_NodeEmptyingMidJobStillCompletes(t *testing.T) {
	// Arrange
	f := newFixture(t, nil, crafting.Policy{}, ironNode("node:1:0", 1))
	miner := f.place(t, crafting.MachineMiner)
	require.NoError(t, f.workshop.AssignNode(miner, "node:1:0"))

	// Act: a batch of 3 against a node holding only 1
	_, err := f.workshop.StartCraft(miner, "mine_iron", 3)
	require.NoError(t, err)
	f.sched.Advance(12 * time.Second)

	// Assert: the job finishes but yields only what the node held
	assert.Equal(t, 1, f.workshop.Inventory().Count(shared.IronOre))
	node, _ := f.nodes.Lookup("node:1:0")
	assert.Equal(t, 0, node.RemainingAmount)
	status, _ := f.workshop.Machine(miner)
	assert.Equal(t, crafting.StateIdle, status.State)
}

func TestWorkshop_Extraction_NodeDrainedByAnotherMinerYieldsNothing(t *testing.T) {
	// Arrange
	f := newFixture(t, nil, crafting.Policy{}, ironNode("node:1:0", 2))
	first := f.place(t, crafting.MachineMiner)
	second := f.place(t, crafting.MachineMiner)
	require.NoError(t, f.workshop.AssignNode(first, "node:1:0"))
	require.NoError(t, f.workshop.AssignNode(second, "node:1:0"))
	_, err := f.workshop.StartCraft(first, "mine_iron", 2)
	require.NoError(t, err)
	f.sched.Advance(time.Second)
	_, err = f.workshop.StartCraft(second, "mine_iron", 2)
	require.NoError(t, err)

	// Act
	f.sched.Advance(8 * time.Second)

	// Assert: the node's capacity is never exceeded
	assert.Equal(t, 2, f.workshop.Inventory().Count(shared.IronOre))
	node, _ := f.nodes.Lookup("node:1:0")
	assert.Equal(t, 0, node.RemainingAmount)
	status, _ := f.workshop.Machine(second)
	assert.Equal(t, crafting.StateIdle, status.State)
}

func TestWorkshop_ProgressClampedAndCompletionCreditsOnce(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 5, shared.Coal: 2}, crafting.Policy{})
	smelter := f.place(t, crafting.MachineSmelter)
	_, err := f.workshop.StartCraft(smelter, "smelt_steel", 1)
	require.NoError(t, err)

	// Act & Assert: move the clock without firing the completion timer
	f.clock.Advance(10 * time.Second)
	status, err := f.workshop.Machine(smelter)
	require.NoError(t, err)
	assert.Equal(t, 1.0, status.Progress)
	assert.Equal(t, "done", status.RemainingText)

	f.clock.Advance(5 * time.Second)
	status, err = f.workshop.Machine(smelter)
	require.NoError(t, err)
	assert.LessOrEqual(t, status.Progress, 1.0)
	assert.Equal(t, crafting.StateProcessing, status.State)

	first, err := f.workshop.Complete(smelter)
	require.NoError(t, err)
	second, err := f.workshop.Complete(smelter)
	require.NoError(t, err)

	assert.True(t, first.Completed)
	assert.False(t, second.Completed)
	assert.Equal(t, 1, f.workshop.Inventory().Count("steel_ingot"))

	// the stale timer firing later must not credit again
	f.sched.Advance(time.Minute)
	assert.Equal(t, 1, f.workshop.Inventory().Count("steel_ingot"))
}

func TestWorkshop_Complete_BeforeDoneIsNoop(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 5, shared.Coal: 2}, crafting.Policy{})
	smelter := f.place(t, crafting.MachineSmelter)
	_, err := f.workshop.StartCraft(smelter, "smelt_steel", 1)
	require.NoError(t, err)
	f.clock.Advance(3 * time.Second)

	// Act
	result, err := f.workshop.Complete(smelter)

	// Assert
	require.NoError(t, err)
	assert.False(t, result.Completed)
	assert.Equal(t, 0, f.workshop.Inventory().Count("steel_ingot"))

	status, _ := f.workshop.Machine(smelter)
	assert.InDelta(t, 0.3, status.Progress, 1e-9)
	assert.Equal(t, "7s", status.RemainingText)
}

func TestWorkshop_StartCraft_DebitsAndScalesWithBatch(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 12, shared.Coal: 4}, crafting.Policy{})
	smelter := f.place(t, crafting.MachineSmelter)

	// Act
	result, err := f.workshop.StartCraft(smelter, "smelt_steel", 2)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, result.Duration)
	assert.Equal(t, 2, f.workshop.Inventory().Count(shared.IronOre))
	assert.Equal(t, 0, f.workshop.Inventory().Count(shared.Coal))

	f.sched.Advance(19 * time.Second)
	assert.Equal(t, 0, f.workshop.Inventory().Count("steel_ingot"))
	f.sched.Advance(time.Second)
	assert.Equal(t, 2, f.workshop.Inventory().Count("steel_ingot"))
}

func TestWorkshop_StartCraft_ErrorPrecedence(t *testing.T) {
	t.Run("busy machine", func(t *testing.T) {
		f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 10, shared.Coal: 4}, crafting.Policy{})
		smelter := f.place(t, crafting.MachineSmelter)
		_, err := f.workshop.StartCraft(smelter, "smelt_steel", 1)
		require.NoError(t, err)

		_, err = f.workshop.StartCraft(smelter, "mine_iron", 1)

		var busy *shared.MachineBusyError
		require.ErrorAs(t, err, &busy)
		var transition *shared.InvalidTransitionError
		assert.ErrorAs(t, err, &transition)
	})

	t.Run("wrong machine type", func(t *testing.T) {
		f := newFixture(t, nil, crafting.Policy{})
		smelter := f.place(t, crafting.MachineSmelter)

		_, err := f.workshop.StartCraft(smelter, "mine_iron", 1)

		var wrong *shared.InvalidRecipeForMachineError
		require.ErrorAs(t, err, &wrong)
		assert.Equal(t, "MINER", wrong.RequiredType)
	})

	t.Run("no node assigned", func(t *testing.T) {
		f := newFixture(t, nil, crafting.Policy{})
		miner := f.place(t, crafting.MachineMiner)

		_, err := f.workshop.StartCraft(miner, "mine_iron", 1)

		var noNode *shared.NoNodeAssignedError
		require.ErrorAs(t, err, &noNode)
	})

	t.Run("node of another resource", func(t *testing.T) {
		f := newFixture(t, nil, crafting.Policy{}, ironNode("node:2:2", 5))
		miner := f.place(t, crafting.MachineMiner)
		require.NoError(t, f.workshop.AssignNode(miner, "node:2:2"))

		_, err := f.workshop.StartCraft(miner, "mine_copper", 1)

		var wrong *shared.InvalidRecipeForMachineError
		require.ErrorAs(t, err, &wrong)
	})

	t.Run("invalid batch", func(t *testing.T) {
		f := newFixture(t, nil, crafting.Policy{})
		smelter := f.place(t, crafting.MachineSmelter)

		_, err := f.workshop.StartCraft(smelter, "smelt_steel", 0)

		var validation *shared.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("unknown machine", func(t *testing.T) {
		f := newFixture(t, nil, crafting.Policy{})

		_, err := f.workshop.StartCraft("nope", "smelt_steel", 1)

		var notFound *shared.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestWorkshop_StartCraft_RejectsOversizedBatch(t *testing.T) {
	tests := []struct {
		name    string
		machine crafting.MachineType
		recipe  string
		batch   int
	}{
		{name: "duration past the job limit", machine: crafting.MachineSmelter, recipe: "smelt_steel", batch: 1 << 40},
		{name: "duration overflow", machine: crafting.MachineMiner, recipe: "mine_iron", batch: math.MaxInt64/2 + 1},
		{name: "output units overflow", machine: crafting.MachineMiner, recipe: "mine_iron", batch: crafting.MaxJobUnits + 1},
		{name: "largest int", machine: crafting.MachineSmelter, recipe: "smelt_steel", batch: math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 5, shared.Coal: 2}, crafting.Policy{}, ironNode("node:0:1", 5))
			id := f.place(t, tt.machine)
			if tt.machine == crafting.MachineMiner {
				require.NoError(t, f.workshop.AssignNode(id, "node:0:1"))
			}

			// Act
			_, startErr := f.workshop.StartCraft(id, tt.recipe, tt.batch)
			_, enqueueErr := f.workshop.Enqueue(id, tt.recipe, tt.batch)
			f.workshop.Tick()

			// Assert: rejected, nothing changed
			var validation *shared.ValidationError
			require.ErrorAs(t, startErr, &validation)
			assert.Equal(t, "batch", validation.Field)
			require.ErrorAs(t, enqueueErr, &validation)

			status, err := f.workshop.Machine(id)
			require.NoError(t, err)
			assert.NotEqual(t, crafting.StateProcessing, status.State)
			assert.Equal(t, 0, status.QueueLength)
			assert.Equal(t, 5, f.workshop.Inventory().Count(shared.IronOre))
			assert.Equal(t, 2, f.workshop.Inventory().Count(shared.Coal))
			node, _ := f.nodes.Lookup("node:0:1")
			assert.Equal(t, 5, node.RemainingAmount)
		})
	}
}

func TestRecipe_CheckBatch(t *testing.T) {
	recipe := crafting.Recipe{
		ID:                    "smelt_steel",
		Inputs:                []crafting.Quantity{{Resource: shared.IronOre, Amount: 5}, {Resource: shared.Coal, Amount: 2}},
		Outputs:               []crafting.Quantity{{Resource: "steel_ingot", Amount: 1}},
		ProcessingTimeSeconds: 10,
		RequiredMachineType:   crafting.MachineSmelter,
	}

	assert.NoError(t, recipe.CheckBatch(1))
	assert.NoError(t, recipe.CheckBatch(1000))
	assert.Error(t, recipe.CheckBatch(0))
	assert.Error(t, recipe.CheckBatch(-3))
	assert.Error(t, recipe.CheckBatch(100_000_000), "longer than a job may run")

	fast := recipe
	fast.ProcessingTimeSeconds = 0.000001
	assert.NoError(t, fast.CheckBatch(crafting.MaxJobUnits/7))
	assert.Error(t, fast.CheckBatch(crafting.MaxJobUnits/7+1), "inputs add up past the unit limit")

	instant := recipe
	instant.ProcessingTimeSeconds = 1e-12
	assert.Error(t, instant.CheckBatch(1), "rounds down to no duration")
}

func TestWorkshop_PauseFreezesProgress(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 5, shared.Coal: 2}, crafting.Policy{})
	smelter := f.place(t, crafting.MachineSmelter)
	_, err := f.workshop.StartCraft(smelter, "smelt_steel", 1)
	require.NoError(t, err)
	f.sched.Advance(4 * time.Second)

	// Act
	require.NoError(t, f.workshop.Pause(smelter))
	f.sched.Advance(30 * time.Second)

	// Assert: frozen while paused, no completion
	status, _ := f.workshop.Machine(smelter)
	assert.Equal(t, crafting.StatePaused, status.State)
	assert.InDelta(t, 0.4, status.Progress, 1e-9)
	assert.Equal(t, 0, f.workshop.Inventory().Count("steel_ingot"))

	result, err := f.workshop.Complete(smelter)
	require.NoError(t, err)
	assert.False(t, result.Completed)

	// resume picks up the remaining 6s
	require.NoError(t, f.workshop.Resume(smelter))
	f.sched.Advance(5 * time.Second)
	assert.Equal(t, 0, f.workshop.Inventory().Count("steel_ingot"))
	f.sched.Advance(time.Second)
	assert.Equal(t, 1, f.workshop.Inventory().Count("steel_ingot"))
}

func TestWorkshop_PauseResume_InvalidTransitions(t *testing.T) {
	f := newFixture(t, nil, crafting.Policy{})
	smelter := f.place(t, crafting.MachineSmelter)

	var transition *shared.InvalidTransitionError
	assert.ErrorAs(t, f.workshop.Pause(smelter), &transition)
	assert.ErrorAs(t, f.workshop.Resume(smelter), &transition)

	_, err := f.workshop.Cancel(smelter)
	assert.ErrorAs(t, err, &transition)
}

func TestWorkshop_Cancel_RefundPolicy(t *testing.T) {
	tests := []struct {
		name     string
		refund   bool
		wantIron int
		wantCoal int
	}{
		{name: "no refund", refund: false, wantIron: 0, wantCoal: 0},
		{name: "refund", refund: true, wantIron: 5, wantCoal: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 5, shared.Coal: 2}, crafting.Policy{RefundOnCancel: tt.refund})
			smelter := f.place(t, crafting.MachineSmelter)
			_, err := f.workshop.StartCraft(smelter, "smelt_steel", 1)
			require.NoError(t, err)
			f.sched.Advance(5 * time.Second)

			// Act
			_, err = f.workshop.Cancel(smelter)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.wantIron, f.workshop.Inventory().Count(shared.IronOre))
			assert.Equal(t, tt.wantCoal, f.workshop.Inventory().Count(shared.Coal))

			status, _ := f.workshop.Machine(smelter)
			assert.Equal(t, crafting.StateIdle, status.State)

			f.sched.Advance(time.Minute)
			assert.Equal(t, 0, f.workshop.Inventory().Count("steel_ingot"))
		})
	}
}

func TestWorkshop_InventoryNeverNegative(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 7, shared.Coal: 3}, crafting.Policy{})
	a := f.place(t, crafting.MachineSmelter)
	b := f.place(t, crafting.MachineSmelter)

	// Act
	_, errA := f.workshop.StartCraft(a, "smelt_steel", 1)
	_, errB := f.workshop.StartCraft(b, "smelt_steel", 1)

	// Assert
	require.NoError(t, errA)
	require.Error(t, errB)
	for _, count := range f.workshop.Inventory().Snapshot() {
		assert.GreaterOrEqual(t, count, 0)
	}
	assert.Equal(t, 2, f.workshop.Inventory().Count(shared.IronOre))
	assert.Equal(t, 1, f.workshop.Inventory().Count(shared.Coal))
}

func TestWorkshop_QueueStartsNextAfterCompletion(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 5, shared.Coal: 2}, crafting.Policy{}, ironNode("node:0:1", 10))
	miner := f.place(t, crafting.MachineMiner)
	require.NoError(t, f.workshop.AssignNode(miner, "node:0:1"))

	// Act
	first, err := f.workshop.Enqueue(miner, "mine_iron", 1)
	require.NoError(t, err)
	second, err := f.workshop.Enqueue(miner, "mine_iron", 2)
	require.NoError(t, err)

	// Assert
	assert.True(t, first.Started)
	assert.False(t, second.Started)
	assert.Equal(t, 1, second.QueuePosition)

	f.sched.Advance(4 * time.Second)
	status, _ := f.workshop.Machine(miner)
	assert.Equal(t, crafting.StateProcessing, status.State)
	assert.Equal(t, 2, status.Batch)
	assert.Equal(t, 0, status.QueueLength)

	f.sched.Advance(8 * time.Second)
	assert.Equal(t, 8, f.workshop.Inventory().Count(shared.IronOre))
	node, _ := f.nodes.Lookup("node:0:1")
	assert.Equal(t, 7, node.RemainingAmount)
}

func TestWorkshop_CancelStartsNextQueued(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 15, shared.Coal: 6}, crafting.Policy{})
	smelter := f.place(t, crafting.MachineSmelter)
	_, err := f.workshop.Enqueue(smelter, "smelt_steel", 1)
	require.NoError(t, err)
	_, err = f.workshop.Enqueue(smelter, "smelt_steel", 1)
	require.NoError(t, err)

	// Act
	cancelled, err := f.workshop.Cancel(smelter)
	require.NoError(t, err)
	f.workshop.Tick()
	third, err := f.workshop.Enqueue(smelter, "smelt_steel", 1)
	require.NoError(t, err)

	// Assert
	assert.True(t, cancelled.NextStarted)
	status, _ := f.workshop.Machine(smelter)
	assert.Equal(t, crafting.StateProcessing, status.State)
	assert.False(t, third.Started)
	assert.Equal(t, 1, third.QueuePosition)

	f.sched.Advance(time.Hour)
	status, _ = f.workshop.Machine(smelter)
	assert.Equal(t, crafting.StateIdle, status.State)
	assert.Equal(t, 0, status.QueueLength)
	assert.Equal(t, 2, f.workshop.Inventory().Count("steel_ingot"))
}

func TestWorkshop_IdleMachineWorksOffRestoredQueue(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 10, shared.Coal: 4}, crafting.Policy{})
	require.NoError(t, f.workshop.Restore(
		[]crafting.MachineSnapshot{{ID: "SMELTER-1", Type: crafting.MachineSmelter, State: crafting.StateIdle}},
		map[string][]crafting.CraftRequest{"SMELTER-1": {{RecipeID: "smelt_steel", Batch: 1}, {RecipeID: "smelt_steel", Batch: 1}}},
	))

	// Act
	f.workshop.Tick()

	// Assert
	status, err := f.workshop.Machine("SMELTER-1")
	require.NoError(t, err)
	assert.Equal(t, crafting.StateProcessing, status.State)
	assert.Equal(t, 1, status.QueueLength)

	f.sched.Advance(20 * time.Second)
	assert.Equal(t, 2, f.workshop.Inventory().Count("steel_ingot"))
}

func TestWorkshop_EnqueueOnIdleMachineServesQueueFirst(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 10, shared.Coal: 4}, crafting.Policy{})
	require.NoError(t, f.workshop.Restore(
		[]crafting.MachineSnapshot{{ID: "SMELTER-1", Type: crafting.MachineSmelter, State: crafting.StateIdle}},
		map[string][]crafting.CraftRequest{"SMELTER-1": {{RecipeID: "smelt_steel", Batch: 2}}},
	))

	// Act
	result, err := f.workshop.Enqueue("SMELTER-1", "smelt_steel", 1)

	// Assert: the saved request runs first, the new one waits
	require.NoError(t, err)
	assert.False(t, result.Started)
	assert.Equal(t, 1, result.QueuePosition)
	status, _ := f.workshop.Machine("SMELTER-1")
	assert.Equal(t, crafting.StateProcessing, status.State)
	assert.Equal(t, 2, status.Batch)
}

func TestWorkshop_QueueDropsFailingRequest(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 5, shared.Coal: 2}, crafting.Policy{})
	smelter := f.place(t, crafting.MachineSmelter)
	_, err := f.workshop.Enqueue(smelter, "smelt_steel", 1)
	require.NoError(t, err)
	_, err = f.workshop.Enqueue(smelter, "smelt_steel", 1)
	require.NoError(t, err)

	// Act
	f.sched.Advance(10 * time.Second)

	// Assert
	status, _ := f.workshop.Machine(smelter)
	assert.Equal(t, crafting.StateIdle, status.State)
	assert.Equal(t, 0, status.QueueLength)

	var failed *crafting.Event
	for i := range f.events.events {
		if f.events.events[i].Type == crafting.EventQueuedStartFail {
			failed = &f.events.events[i]
		}
	}
	require.NotNil(t, failed)
	var insufficient *shared.InsufficientResourcesError
	assert.True(t, errors.As(failed.Err, &insufficient))
}

func TestWorkshop_TickCatchesMissedCompletions(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 5, shared.Coal: 2}, crafting.Policy{})
	smelter := f.place(t, crafting.MachineSmelter)
	_, err := f.workshop.StartCraft(smelter, "smelt_steel", 1)
	require.NoError(t, err)

	// Act
	f.clock.Advance(11 * time.Second)
	results := f.workshop.Tick()

	// Assert
	require.Len(t, results, 1)
	assert.Equal(t, smelter, results[0].MachineID)
	assert.Equal(t, 1, f.workshop.Inventory().Count("steel_ingot"))
	assert.Empty(t, f.workshop.Tick())
}

func TestWorkshop_EventsFollowLifecycle(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 5, shared.Coal: 2}, crafting.Policy{})
	smelter := f.place(t, crafting.MachineSmelter)

	// Act
	_, err := f.workshop.StartCraft(smelter, "smelt_steel", 1)
	require.NoError(t, err)
	require.NoError(t, f.workshop.Pause(smelter))
	require.NoError(t, f.workshop.Resume(smelter))
	f.sched.Advance(10 * time.Second)

	// Assert
	assert.Equal(t, []crafting.EventType{
		crafting.EventMachinePlaced,
		crafting.EventJobStarted,
		crafting.EventJobPaused,
		crafting.EventJobResumed,
		crafting.EventJobCompleted,
	}, f.events.types())
}

func TestWorkshop_AssignNode(t *testing.T) {
	f := newFixture(t, nil, crafting.Policy{}, ironNode("node:3:3", 5))
	miner := f.place(t, crafting.MachineMiner)
	smelter := f.place(t, crafting.MachineSmelter)

	status, _ := f.workshop.Machine(miner)
	assert.Equal(t, crafting.StateAwaitingAssignment, status.State)

	var notFound *shared.NotFoundError
	assert.ErrorAs(t, f.workshop.AssignNode(miner, "node:9:9"), &notFound)

	var transition *shared.InvalidTransitionError
	assert.ErrorAs(t, f.workshop.AssignNode(smelter, "node:3:3"), &transition)

	require.NoError(t, f.workshop.AssignNode(miner, "node:3:3"))
	status, _ = f.workshop.Machine(miner)
	assert.Equal(t, crafting.StateIdle, status.State)
}

func TestWorkshop_SnapshotRestore(t *testing.T) {
	// Arrange
	f := newFixture(t, map[shared.ResourceType]int{shared.IronOre: 5, shared.Coal: 2}, crafting.Policy{}, ironNode("node:1:1", 10))
	smelter := f.place(t, crafting.MachineSmelter)
	miner := f.place(t, crafting.MachineMiner)
	require.NoError(t, f.workshop.AssignNode(miner, "node:1:1"))
	_, err := f.workshop.StartCraft(smelter, "smelt_steel", 1)
	require.NoError(t, err)
	_, err = f.workshop.Enqueue(miner, "mine_iron", 1)
	require.NoError(t, err)
	_, err = f.workshop.Enqueue(miner, "mine_iron", 3)
	require.NoError(t, err)
	f.sched.Advance(2 * time.Second)
	require.NoError(t, f.workshop.Pause(miner))

	machines := f.workshop.Snapshot()
	queues := f.workshop.Queues()
	f.workshop.Shutdown()

	// Act: a fresh workshop later in time
	restored := newFixture(t, nil, crafting.Policy{}, ironNode("node:1:1", 10))
	restored.clock.SetTime(f.clock.Now().Add(3 * time.Second))
	require.NoError(t, restored.workshop.Restore(machines, queues))

	// Assert
	status := restored.workshop.Status()
	require.Len(t, status, 2)
	assert.Equal(t, crafting.StateProcessing, status[0].State)
	assert.InDelta(t, 0.5, status[0].Progress, 1e-9)
	assert.Equal(t, crafting.StatePaused, status[1].State)
	assert.InDelta(t, 0.5, status[1].Progress, 1e-9)
	assert.Equal(t, 1, status[1].QueueLength)

	restored.sched.Advance(5 * time.Second)
	assert.Equal(t, 1, restored.workshop.Inventory().Count("steel_ingot"))
}

func TestWorkshop_RestoreSkipsInvalidMachines(t *testing.T) {
	f := newFixture(t, nil, crafting.Policy{})

	err := f.workshop.Restore([]crafting.MachineSnapshot{
		{ID: "SMELTER-1", Type: crafting.MachineSmelter, State: crafting.StateIdle},
		{ID: "BROKEN-1", Type: "TELEPORTER", State: crafting.StateIdle},
		{ID: "SMELTER-2", Type: crafting.MachineSmelter, State: crafting.StateProcessing},
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, f.workshop.MachineCount())
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "done"},
		{-time.Second, "done"},
		{45 * time.Second, "45s"},
		{1500 * time.Millisecond, "2s"},
		{65 * time.Second, "1m05s"},
		{2*time.Hour + 3*time.Minute + 10*time.Second, "2h03m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, crafting.FormatRemaining(tt.in), tt.in.String())
	}
}
