package savegame_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsave "github.com/andrescamacho/outpost-go/internal/application/savegame"
	"github.com/andrescamacho/outpost-go/internal/domain/savegame"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/test/helpers"
)

func newService(t *testing.T, cfg appsave.Config) (*appsave.Service, *helpers.MockKeyValueStore, *shared.MockClock, *helpers.RecordingLogger) {
	t.Helper()
	if cfg.Profile == "" {
		cfg.Profile = "default"
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = 3
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	store := helpers.NewMockKeyValueStore()
	clock := shared.NewMockClock(time.Time{})
	logger := helpers.NewRecordingLogger()
	svc, err := appsave.NewService(store, cfg, clock, logger)
	require.NoError(t, err)
	return svc, store, clock, logger
}

func TestService_LoadEmptyProfileGivesDefaults(t *testing.T) {
	// Arrange
	svc, _, _, _ := newService(t, appsave.Config{})

	// Act
	result := svc.Load(context.Background())

	// Assert
	assert.False(t, result.Found)
	assert.NoError(t, result.Err)
	assert.Empty(t, result.Issues)
	assert.Equal(t, shared.NewPosition(0, 0), result.State.PlayerPosition)
}

func TestService_SaveThenLoad(t *testing.T) {
	// Arrange
	svc, store, _, _ := newService(t, appsave.Config{})
	state := savegame.DefaultState()
	state.WorldSeed = 7
	state.HasWorldSeed = true
	state.PlayerPosition = shared.NewPosition(2, 3)
	state.Discovered = []string{"node:2:4"}
	state.Inventory[shared.Coal] = 9

	// Act
	require.NoError(t, svc.Save(context.Background(), state))
	result := svc.Load(context.Background())

	// Assert
	assert.Equal(t, 1, store.Writes())
	assert.True(t, result.Found)
	assert.Equal(t, int64(7), result.State.WorldSeed)
	assert.Equal(t, shared.NewPosition(2, 3), result.State.PlayerPosition)
	assert.Equal(t, []string{"node:2:4"}, result.State.Discovered)
	assert.Equal(t, 9, result.State.Inventory[shared.Coal])
	assert.NotNil(t, result.State.LastSavedAt)
}

func TestService_LoadToleratesCorruptValue(t *testing.T) {
	// Arrange
	svc, store, _, logger := newService(t, appsave.Config{})
	store.Put(svc.Keys().Key(savegame.EntityInventory), "][")
	store.Put(svc.Keys().Key(savegame.EntityWorldSeed), "99")

	// Act
	result := svc.Load(context.Background())

	// Assert
	require.Len(t, result.Issues, 1)
	assert.Equal(t, svc.Keys().Key(savegame.EntityInventory), result.Issues[0].Key)
	assert.Equal(t, int64(99), result.State.WorldSeed)
	assert.Empty(t, result.State.Inventory)
	assert.Equal(t, 1, logger.CountLevel("WARNING"))
}

func TestService_LoadReadFailureFallsBackToDefaults(t *testing.T) {
	// Arrange
	svc, store, _, _ := newService(t, appsave.Config{})
	store.FailReads(true)

	// Act
	result := svc.Load(context.Background())

	// Assert
	var readErr *shared.PersistenceReadError
	require.ErrorAs(t, result.Err, &readErr)
	assert.True(t, errors.Is(result.Err, helpers.ErrStoreUnavailable))
	assert.False(t, result.State.HasWorldSeed)
}

func TestService_SaveFailureIsTyped(t *testing.T) {
	// Arrange
	svc, store, _, _ := newService(t, appsave.Config{})
	store.FailWrites(true)

	// Act
	err := svc.Save(context.Background(), savegame.DefaultState())

	// Assert
	var writeErr *shared.PersistenceWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.NotEmpty(t, writeErr.Keys)
}

func TestService_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	// Arrange
	svc, store, clock, _ := newService(t, appsave.Config{BreakerMaxFailures: 2, BreakerTimeout: 10 * time.Second})
	store.FailWrites(true)
	ctx := context.Background()

	// Act
	_ = svc.Save(ctx, savegame.DefaultState())
	_ = svc.Save(ctx, savegame.DefaultState())
	err := svc.Save(ctx, savegame.DefaultState())

	// Assert: the third save never reaches the store
	assert.ErrorIs(t, err, appsave.ErrCircuitOpen)
	assert.Equal(t, 2, store.Writes())
	assert.Equal(t, appsave.CircuitOpen, svc.BreakerState())

	// recovers after the timeout once the store is healthy
	store.FailWrites(false)
	clock.Advance(10 * time.Second)
	require.NoError(t, svc.Save(ctx, savegame.DefaultState()))
	assert.Equal(t, appsave.CircuitClosed, svc.BreakerState())
}

func TestService_SaveDiscoveryIsThrottled(t *testing.T) {
	// Arrange
	svc, store, clock, _ := newService(t, appsave.Config{MinSaveInterval: 2 * time.Second})
	ctx := context.Background()

	// Act
	first, err := svc.SaveDiscovery(ctx, appsave.DiscoveryProgress{Position: shared.NewPosition(1, 0), Discovered: []string{"a"}})
	require.NoError(t, err)
	second, err := svc.SaveDiscovery(ctx, appsave.DiscoveryProgress{Position: shared.NewPosition(2, 0), Discovered: []string{"a", "b"}})
	require.NoError(t, err)

	// Assert
	assert.True(t, first)
	assert.False(t, second)
	assert.True(t, svc.HasPending())
	assert.Equal(t, 1, store.Writes())

	raw, _ := store.Raw(svc.Keys().Key(savegame.EntityPlayerPosition))
	assert.JSONEq(t, `{"x":1,"y":0}`, raw)

	require.NoError(t, svc.FlushPending(ctx))
	assert.False(t, svc.HasPending())
	raw, _ = store.Raw(svc.Keys().Key(savegame.EntityPlayerPosition))
	assert.JSONEq(t, `{"x":2,"y":0}`, raw)

	clock.Advance(2 * time.Second)
	third, err := svc.SaveDiscovery(ctx, appsave.DiscoveryProgress{Position: shared.NewPosition(3, 0)})
	require.NoError(t, err)
	assert.True(t, third)
}

func TestService_SaveDiscoveryWritesOnlyItsKeys(t *testing.T) {
	svc, store, _, _ := newService(t, appsave.Config{})

	_, err := svc.SaveDiscovery(context.Background(), appsave.DiscoveryProgress{Position: shared.NewPosition(4, 4), Discovered: []string{"node:4:5"}})

	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())
	_, hasInventory := store.Raw(svc.Keys().Key(savegame.EntityInventory))
	assert.False(t, hasInventory)
}

func TestService_ResetRemovesOnlyProfileKeys(t *testing.T) {
	// Arrange
	svc, store, _, _ := newService(t, appsave.Config{Profile: "alpha"})
	require.NoError(t, svc.Save(context.Background(), savegame.DefaultState()))
	store.Put("outpost/alpha/legacy_entity", "1")
	store.Put("outpost/beta/world_seed", "5")

	// Act
	require.NoError(t, svc.Reset(context.Background()))

	// Assert
	keys, _ := store.GetAllKeys(context.Background())
	assert.Equal(t, []string{"outpost/beta/world_seed"}, keys)
}

func TestListProfiles(t *testing.T) {
	store := helpers.NewMockKeyValueStore()
	store.Put("outpost/beta/world_seed", "1")
	store.Put("outpost/alpha/world_seed", "1")
	store.Put("outpost/alpha/inventory", "{}")
	store.Put("unrelated", "x")

	profiles, err := appsave.ListProfiles(context.Background(), store)

	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, profiles)
}
