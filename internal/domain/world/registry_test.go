package world_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

func firstNode(t *testing.T, gen *world.Generator) world.ResourceNode {
	t.Helper()
	for x := int64(0); x < 1000; x++ {
		if node, ok := gen.NodeAt(shared.NewPosition(x, 0)); ok {
			return node
		}
	}
	t.Fatal("no node generated on the first row")
	return world.ResourceNode{}
}

func TestNodeRegistry_DepleteClampsAtZero(t *testing.T) {
	// Arrange
	gen := world.NewGenerator(8, world.DefaultOptions())
	registry := world.NewNodeRegistry(gen, nil)
	node := firstNode(t, gen)

	// Act
	afterPartial, err := registry.Deplete(node.ID, 3)
	require.NoError(t, err)
	afterAll, err := registry.Deplete(node.ID, node.Capacity*10)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, node.Capacity-3, afterPartial.RemainingAmount)
	assert.Equal(t, 0, afterAll.RemainingAmount)
	assert.True(t, afterAll.IsExhausted())

	looked, err := registry.Lookup(node.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, looked.RemainingAmount)
}

func TestNodeRegistry_LookupEmptyTile(t *testing.T) {
	gen := world.NewGenerator(8, world.DefaultOptions())
	registry := world.NewNodeRegistry(gen, nil)

	var empty shared.Position
	for x := int64(0); x < 1000; x++ {
		if _, ok := gen.NodeAt(shared.NewPosition(x, 0)); !ok {
			empty = shared.NewPosition(x, 0)
			break
		}
	}

	_, err := registry.Lookup(world.NodeID(empty))

	var notFound *shared.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestDepletionLedger_SnapshotRestore(t *testing.T) {
	ledger := world.NewDepletionLedger()
	ledger.Restore(map[string]int{"node:1:1": 4, "node:2:2": -3})

	snap := ledger.Snapshot()

	assert.Equal(t, map[string]int{"node:1:1": 4, "node:2:2": 0}, snap)
	snap["node:1:1"] = 99
	assert.Equal(t, 4, ledger.Snapshot()["node:1:1"], "snapshot must be a copy")
}
