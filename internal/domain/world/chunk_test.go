package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

func TestChunkOf_FloorsNegativeCoordinates(t *testing.T) {
	tests := []struct {
		pos  shared.Position
		want world.ChunkCoord
	}{
		{shared.NewPosition(0, 0), world.ChunkCoord{X: 0, Y: 0}},
		{shared.NewPosition(15, 15), world.ChunkCoord{X: 0, Y: 0}},
		{shared.NewPosition(16, 0), world.ChunkCoord{X: 1, Y: 0}},
		{shared.NewPosition(-1, -1), world.ChunkCoord{X: -1, Y: -1}},
		{shared.NewPosition(-16, -17), world.ChunkCoord{X: -1, Y: -2}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, world.ChunkOf(tt.pos, 16), "pos %v", tt.pos)
	}
}

func TestChunkIndexer_ChunksVisibleAround(t *testing.T) {
	ci := world.NewChunkIndexer(world.NewGenerator(1, world.DefaultOptions()), 8)

	coords := ci.ChunksVisibleAround(world.ChunkCoord{X: 5, Y: -2}, 1)

	require.Len(t, coords, 9)
	assert.Equal(t, world.ChunkCoord{X: 4, Y: -3}, coords[0])
	assert.Equal(t, world.ChunkCoord{X: 5, Y: -2}, coords[4])
	assert.Equal(t, world.ChunkCoord{X: 6, Y: -1}, coords[8])
	assert.Empty(t, ci.ChunksVisibleAround(world.ChunkCoord{}, -1))
}

func TestChunkIndexer_NodesInChunkMatchGenerator(t *testing.T) {
	// Arrange
	gen := world.NewGenerator(77, world.DefaultOptions())
	ci := world.NewChunkIndexer(gen, 16)
	coord := world.ChunkCoord{X: -3, Y: 2}

	// Act
	nodes := ci.NodesInChunk(coord)

	// Assert
	var expected []world.ResourceNode
	for y := int64(32); y < 48; y++ {
		for x := int64(-48); x < -32; x++ {
			if node, ok := gen.NodeAt(shared.NewPosition(x, y)); ok {
				expected = append(expected, node)
			}
		}
	}
	assert.Equal(t, expected, nodes)
	for _, node := range nodes {
		assert.Equal(t, coord, ci.ChunkOf(node.Position))
	}
}

func TestChunkIndexer_LazySequenceIsRestartable(t *testing.T) {
	ci := world.NewChunkIndexer(world.NewGenerator(5, world.DefaultOptions()), 16)
	coord := world.ChunkCoord{X: 1, Y: 1}

	var first, second []world.ResourceNode
	for node := range ci.Nodes(coord) {
		first = append(first, node)
	}
	for node := range ci.Nodes(coord) {
		second = append(second, node)
	}

	assert.Equal(t, first, second)
	assert.Equal(t, ci.NodesInChunk(coord), first)

	taken := 0
	for range ci.Nodes(coord) {
		taken++
		break
	}
	assert.LessOrEqual(t, taken, 1)
}

func TestChunkIndexer_CacheDoesNotHideDepletion(t *testing.T) {
	// Arrange
	gen := world.NewGenerator(3, world.DefaultOptions())
	ledger := world.NewDepletionLedger()
	ci := world.NewChunkIndexer(gen, 16, world.WithChunkCache(4), world.WithLedger(ledger))
	coord := world.ChunkCoord{X: 0, Y: 0}

	nodes := ci.NodesInChunk(coord)
	require.NotEmpty(t, nodes)
	target := nodes[0]

	// Act
	ledger.Deplete(target, 5)
	again := ci.NodesInChunk(coord)

	// Assert
	assert.Equal(t, target.Capacity-5, again[0].RemainingAmount)
}

func TestChunkIndexer_NodesWithinRadius(t *testing.T) {
	gen := world.NewGenerator(19, world.DefaultOptions())
	ci := world.NewChunkIndexer(gen, 4)
	center := shared.NewPosition(-3, 2)
	radius := 6

	found := ci.NodesWithin(center, radius)

	expected := 0
	for y := center.Y - 6; y <= center.Y+6; y++ {
		for x := center.X - 6; x <= center.X+6; x++ {
			pos := shared.NewPosition(x, y)
			if _, ok := gen.NodeAt(pos); ok && center.WithinRadius(pos, radius) {
				expected++
			}
		}
	}
	assert.Len(t, found, expected)
	for _, node := range found {
		assert.True(t, center.WithinRadius(node.Position, radius))
	}
}
