package progression_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/outpost-go/internal/domain/progression"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

func TestTracker_AwardsOnce(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Time{})
	tracker := progression.NewTracker(clock)

	// Act
	first := tracker.Record(progression.Stats{Discovered: 1})
	second := tracker.Record(progression.Stats{Discovered: 1})

	// Assert
	assert.Equal(t, []progression.MilestoneID{progression.FirstDiscovery}, first)
	assert.Empty(t, second)
	assert.Equal(t, 2, tracker.Stats().Discovered)
}

func TestTracker_ThresholdCrossedByAccumulation(t *testing.T) {
	tracker := progression.NewTracker(shared.NewMockClock(time.Time{}))

	for i := 0; i < 9; i++ {
		tracker.Record(progression.Stats{Discovered: 1})
	}
	assert.False(t, tracker.IsAchieved(progression.TenDiscoveries))

	awarded := tracker.Record(progression.Stats{Discovered: 1})
	assert.Equal(t, []progression.MilestoneID{progression.TenDiscoveries}, awarded)
}

func TestTracker_PendingToastsOldestFirst(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Time{})
	tracker := progression.NewTracker(clock)
	tracker.Record(progression.Stats{MachinesPlaced: 1})
	clock.Advance(time.Minute)
	tracker.Record(progression.Stats{Discovered: 1, CraftsCompleted: 1})

	// Act
	toasts := tracker.PendingToasts()

	// Assert
	require.Len(t, toasts, 3)
	assert.Equal(t, progression.FirstMachine, toasts[0].ID)
	assert.Equal(t, progression.FirstCraft, toasts[1].ID)
	assert.Equal(t, progression.FirstDiscovery, toasts[2].ID)
	assert.Equal(t, "Builder", toasts[0].Title)
}

func TestTracker_MarkToastShown(t *testing.T) {
	tracker := progression.NewTracker(shared.NewMockClock(time.Time{}))
	tracker.Record(progression.Stats{ExhaustedNodes: 1})

	var notFound *shared.NotFoundError
	assert.ErrorAs(t, tracker.MarkToastShown(progression.FirstCraft), &notFound)

	require.NoError(t, tracker.MarkToastShown(progression.NodeExhausted))
	assert.Empty(t, tracker.PendingToasts())
	assert.Equal(t, map[progression.MilestoneID]bool{progression.NodeExhausted: true}, tracker.ShownToasts())
}

func TestTracker_Restore(t *testing.T) {
	// Arrange
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker := progression.NewTracker(shared.NewMockClock(time.Time{}))

	// Act
	tracker.Restore(
		map[progression.MilestoneID]time.Time{
			progression.FirstMachine: at,
			"retired_milestone":      at,
		},
		map[progression.MilestoneID]bool{
			progression.FirstMachine: true,
			progression.FirstCraft:   true,
		},
	)

	// Assert
	assert.True(t, tracker.IsAchieved(progression.FirstMachine))
	assert.Len(t, tracker.Achieved(), 1)
	assert.Equal(t, map[progression.MilestoneID]bool{progression.FirstMachine: true}, tracker.ShownToasts())
	assert.Empty(t, tracker.Record(progression.Stats{MachinesPlaced: 1}))
}
