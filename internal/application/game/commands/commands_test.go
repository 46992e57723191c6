package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/application/game/commands"
	"github.com/andrescamacho/outpost-go/internal/application/game/queries"
	"github.com/andrescamacho/outpost-go/internal/application/logging"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/test/helpers"
)

type harness struct {
	fixture  *helpers.GameFixture
	mediator mediator.Mediator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	f := helpers.NewGameFixture(t, helpers.NewMockKeyValueStore(), helpers.DefaultGameConfig())
	_, err := f.Session.Load(context.Background())
	require.NoError(t, err)

	m := mediator.NewMediator()
	m.RegisterMiddleware(logging.Middleware(f.Logger))
	require.NoError(t, commands.RegisterHandlers(m, f.Session))
	require.NoError(t, queries.RegisterHandlers(m, f.Session))
	return &harness{fixture: f, mediator: m}
}

func (h *harness) send(t *testing.T, request mediator.Request) (mediator.Response, error) {
	t.Helper()
	return h.mediator.Send(context.Background(), request)
}

func TestMovePlayer_WalksEveryStep(t *testing.T) {
	// Arrange
	h := newHarness(t)

	// Act
	resp, err := h.send(t, &commands.MovePlayerCommand{Direction: "up", Steps: 3})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, shared.NewPosition(0, -3), resp.(*commands.MovePlayerResponse).Position)
}

func TestMovePlayer_RejectsBadInput(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		cmd  *commands.MovePlayerCommand
	}{
		{"unknown direction", &commands.MovePlayerCommand{Direction: "north-east"}},
		{"negative steps", &commands.MovePlayerCommand{Direction: "up", Steps: -1}},
		{"too many steps", &commands.MovePlayerCommand{Direction: "up", Steps: commands.MaxStepsPerMove + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.send(t, tt.cmd)
			var validation *shared.ValidationError
			assert.True(t, errors.As(err, &validation))
		})
	}
	assert.Equal(t, len(tests), h.fixture.Logger.CountLevel("WARNING"))
}

func TestPlaceMachineAndStartCraft_InsufficientResources(t *testing.T) {
	// Arrange
	h := newHarness(t)
	resp, err := h.send(t, &commands.PlaceMachineCommand{MachineType: "smelter"})
	require.NoError(t, err)
	smelter := resp.(*crafting.MachineStatus)
	rt, _ := h.fixture.Session.Runtime()
	rt.Workshop.Inventory().Credit(map[shared.ResourceType]int{shared.IronOre: 4, shared.Coal: 2})

	// Act
	_, err = h.send(t, &commands.StartCraftCommand{MachineID: smelter.MachineID, RecipeID: "smelt_steel"})

	// Assert
	var insufficient *shared.InsufficientResourcesError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, map[string]int{"iron_ore": 1}, insufficient.Missing)
	assert.Equal(t, 4, h.fixture.Session.InventorySnapshot()[shared.IronOre])
}

func TestPlaceMachine_NodeOnFabricatorLeavesNothingBehind(t *testing.T) {
	h := newHarness(t)
	node := helpers.FindNodeNear(helpers.TestSeed, helpers.DefaultGameConfig(), shared.NewPosition(0, 0))

	_, err := h.send(t, &commands.PlaceMachineCommand{MachineType: "ASSEMBLER", NodeID: node.ID})

	assert.Error(t, err)
	rt, _ := h.fixture.Session.Runtime()
	assert.Equal(t, 0, rt.Workshop.MachineCount())
}

func TestStartCraft_QueuesOnBusyMachineAndRunsInOrder(t *testing.T) {
	// Arrange
	h := newHarness(t)
	resp, err := h.send(t, &commands.PlaceMachineCommand{MachineType: "SMELTER"})
	require.NoError(t, err)
	id := resp.(*crafting.MachineStatus).MachineID
	rt, _ := h.fixture.Session.Runtime()
	rt.Workshop.Inventory().Credit(map[shared.ResourceType]int{shared.IronOre: 4, shared.Coal: 2})

	// Act
	first, err := h.send(t, &commands.StartCraftCommand{MachineID: id, RecipeID: "smelt_iron", Queue: true})
	require.NoError(t, err)
	second, err := h.send(t, &commands.StartCraftCommand{MachineID: id, RecipeID: "smelt_iron", Queue: true})
	require.NoError(t, err)

	// Assert
	assert.True(t, first.(*commands.StartCraftResponse).Started)
	assert.False(t, second.(*commands.StartCraftResponse).Started)
	assert.Equal(t, 1, second.(*commands.StartCraftResponse).QueuePosition)

	h.fixture.Scheduler.Advance(12 * time.Second)
	assert.Equal(t, 2, h.fixture.Session.InventorySnapshot()["iron_ingot"])
}

func TestPauseResumeCancel(t *testing.T) {
	// Arrange
	h := newHarness(t)
	resp, _ := h.send(t, &commands.PlaceMachineCommand{MachineType: "SMELTER"})
	id := resp.(*crafting.MachineStatus).MachineID
	rt, _ := h.fixture.Session.Runtime()
	rt.Workshop.Inventory().Credit(map[shared.ResourceType]int{shared.IronOre: 2, shared.Coal: 1})
	_, err := h.send(t, &commands.StartCraftCommand{MachineID: id, RecipeID: "smelt_iron"})
	require.NoError(t, err)

	// Act
	paused, err := h.send(t, &commands.PauseCraftCommand{MachineID: id})
	require.NoError(t, err)
	h.fixture.Scheduler.Advance(time.Minute)
	resumed, err := h.send(t, &commands.ResumeCraftCommand{MachineID: id})
	require.NoError(t, err)
	cancelled, err := h.send(t, &commands.CancelCraftCommand{MachineID: id})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, crafting.StatePaused, paused.(*crafting.MachineStatus).State)
	assert.Equal(t, crafting.StateProcessing, resumed.(*crafting.MachineStatus).State)
	assert.Equal(t, "smelt_iron", cancelled.(*crafting.CancelResult).RecipeID)
	assert.Empty(t, h.fixture.Session.InventorySnapshot()["iron_ingot"])

	_, err = h.send(t, &commands.CancelCraftCommand{MachineID: id})
	var transition *shared.InvalidTransitionError
	assert.ErrorAs(t, err, &transition)
}

func TestAcknowledgeToast(t *testing.T) {
	// Arrange
	h := newHarness(t)
	_, err := h.send(t, &commands.PlaceMachineCommand{MachineType: "MINER"})
	require.NoError(t, err)

	// Act
	_, err = h.send(t, &commands.AcknowledgeToastCommand{MilestoneID: "first_machine"})
	require.NoError(t, err)
	resp, err := h.send(t, &queries.GetStatusQuery{})
	require.NoError(t, err)

	// Assert
	for _, toast := range resp.(*game.StatusView).Toasts {
		assert.NotEqual(t, "first_machine", toast.ID)
	}
	_, err = h.send(t, &commands.AcknowledgeToastCommand{MilestoneID: "ten_discoveries"})
	var notFound *shared.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSaveGame(t *testing.T) {
	h := newHarness(t)

	resp, err := h.send(t, &commands.SaveGameCommand{})

	require.NoError(t, err)
	assert.Equal(t, "saved", resp.(*game.Ack).Message)
}

func TestQueries_ChunkAndRecipes(t *testing.T) {
	h := newHarness(t)

	chunks, err := h.send(t, &queries.GetChunkQuery{Radius: 1})
	require.NoError(t, err)
	assert.Len(t, chunks.(*queries.GetChunkResponse).Chunks, 9)

	_, err = h.send(t, &queries.GetChunkQuery{Radius: queries.MaxChunkRadius + 1})
	assert.Error(t, err)

	recipes, err := h.send(t, &queries.ListRecipesQuery{MachineType: "miner"})
	require.NoError(t, err)
	for _, r := range recipes.(*queries.ListRecipesResponse).Recipes {
		assert.Equal(t, crafting.MachineMiner, r.RequiredMachineType)
	}
}
