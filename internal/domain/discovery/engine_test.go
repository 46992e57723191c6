package discovery_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/outpost-go/internal/domain/discovery"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

func node(x, y int64) world.ResourceNode {
	pos := shared.NewPosition(x, y)
	return world.ResourceNode{
		ID:              world.NodeID(pos),
		Type:            shared.IronOre,
		DisplayName:     "Iron Ore Deposit",
		Position:        pos,
		Capacity:        10,
		RemainingAmount: 10,
	}
}

type flushRecorder struct {
	flushes []discovery.Flush
}

func (r *flushRecorder) OnDiscoveryFlush(f discovery.Flush) {
	r.flushes = append(r.flushes, f)
}

func newTestEngine(nodes []world.ResourceNode, radius int) (*discovery.Engine, *shared.ManualScheduler, *flushRecorder) {
	sched := shared.NewManualScheduler(shared.NewMockClock(time.Time{}))
	engine := discovery.NewEngine(discovery.StaticNodeSource(nodes), discovery.Config{
		Radius:   radius,
		Debounce: 50 * time.Millisecond,
	}, sched, sched.Clock())
	recorder := &flushRecorder{}
	engine.SetFlushListener(recorder)
	return engine, sched, recorder
}

func TestEngine_NodeInRangeDiscoveredWithoutMoving(t *testing.T) {
	// Arrange
	target := node(1, 0)
	engine, sched, recorder := newTestEngine([]world.ResourceNode{target}, 1)

	// Act
	result, err := engine.UpdatePosition(shared.NewPosition(0, 0))
	require.NoError(t, err)
	sched.Advance(50 * time.Millisecond)

	// Assert
	assert.Equal(t, 1, result.NewlyPending)
	assert.True(t, engine.IsDiscovered(target.ID))
	require.Len(t, recorder.flushes, 1)
	assert.Equal(t, []string{target.ID}, recorder.flushes[0].NodeIDs)
}

func TestEngine_FlushWaitsForDebounce(t *testing.T) {
	engine, sched, recorder := newTestEngine([]world.ResourceNode{node(0, 1)}, 2)

	_, err := engine.UpdatePosition(shared.NewPosition(0, 0))
	require.NoError(t, err)
	sched.Advance(49 * time.Millisecond)

	assert.False(t, engine.IsDiscovered(world.NodeID(shared.NewPosition(0, 1))))
	assert.Equal(t, 1, engine.PendingCount())
	assert.Empty(t, recorder.flushes)

	sched.Advance(time.Millisecond)
	assert.Equal(t, 0, engine.PendingCount())
	assert.Len(t, recorder.flushes, 1)
}

func TestEngine_RapidUpdatesCoalesceIntoOneFlush(t *testing.T) {
	// Arrange: a row of nodes, each only reachable from its own column
	var nodes []world.ResourceNode
	for x := int64(0); x < 5; x++ {
		nodes = append(nodes, node(x*10, 0))
	}
	engine, sched, recorder := newTestEngine(nodes, 1)

	// Act: five updates 10ms apart, each finding a new node
	for x := int64(0); x < 5; x++ {
		result, err := engine.UpdatePosition(shared.NewPosition(x*10, 0))
		require.NoError(t, err)
		require.Equal(t, 1, result.NewlyPending)
		sched.Advance(10 * time.Millisecond)
	}
	assert.Empty(t, recorder.flushes, "no flush while updates keep arriving")
	sched.Advance(time.Second)

	// Assert
	require.Len(t, recorder.flushes, 1)
	var expected []string
	for _, n := range nodes {
		expected = append(expected, n.ID)
	}
	assert.ElementsMatch(t, expected, recorder.flushes[0].NodeIDs)
	assert.Equal(t, 0, sched.Pending())
}

func TestEngine_UpdatesWithoutNewCandidatesDoNotReschedule(t *testing.T) {
	engine, sched, recorder := newTestEngine([]world.ResourceNode{node(0, 0)}, 3)

	_, _ = engine.UpdatePosition(shared.NewPosition(0, 0))
	sched.Advance(30 * time.Millisecond)
	result, _ := engine.UpdatePosition(shared.NewPosition(1, 0))
	sched.Advance(20 * time.Millisecond)

	assert.Equal(t, 0, result.NewlyPending)
	assert.Len(t, recorder.flushes, 1)
}

func TestEngine_DiscoveryIsMonotonic(t *testing.T) {
	// Arrange
	near := node(0, 1)
	engine, sched, _ := newTestEngine([]world.ResourceNode{near}, 1)
	_, _ = engine.UpdatePosition(shared.NewPosition(0, 0))
	sched.Advance(time.Second)
	require.True(t, engine.IsDiscovered(near.ID))

	// Act: wander far away and back, shut down
	for i := 0; i < 20; i++ {
		_, err := engine.Move(discovery.DirectionRight)
		require.NoError(t, err)
		assert.True(t, engine.IsDiscovered(near.ID))
	}
	sched.Advance(time.Second)
	engine.Shutdown()

	// Assert
	assert.Equal(t, []string{near.ID}, engine.Discovered())
}

func TestEngine_ExhaustedNodesRemainDiscoverable(t *testing.T) {
	empty := node(1, 1)
	empty.RemainingAmount = 0
	engine, sched, _ := newTestEngine([]world.ResourceNode{empty}, 2)

	_, _ = engine.UpdatePosition(shared.NewPosition(0, 0))
	sched.Advance(time.Second)

	assert.True(t, engine.IsDiscovered(empty.ID))
}

func TestEngine_PinFollowsNearestDiscoveredNode(t *testing.T) {
	// Arrange
	a := node(2, 0)
	b := node(-1, 0)
	engine, sched, _ := newTestEngine([]world.ResourceNode{a, b}, 3)

	// Act
	_, _ = engine.UpdatePosition(shared.NewPosition(0, 0))
	assert.Empty(t, engine.Pinned(), "pending nodes are not pinned")
	sched.Advance(time.Second)

	// Assert
	assert.Equal(t, b.ID, engine.Pinned())

	_, _ = engine.Move(discovery.DirectionRight)
	_, _ = engine.Move(discovery.DirectionRight)
	assert.Equal(t, a.ID, engine.Pinned())

	for i := 0; i < 10; i++ {
		_, _ = engine.Move(discovery.DirectionDown)
	}
	assert.Empty(t, engine.Pinned(), "nothing within radius")
}

func TestEngine_ManualPinLastsUntilNearestChanges(t *testing.T) {
	// Arrange
	a := node(0, 1)
	b := node(0, -2)
	c := node(5, 0)
	engine, sched, _ := newTestEngine([]world.ResourceNode{a, b, c}, 3)
	_, _ = engine.UpdatePosition(shared.NewPosition(0, 0))
	_, _ = engine.UpdatePosition(shared.NewPosition(3, 0))
	sched.Advance(time.Second)
	_, _ = engine.UpdatePosition(shared.NewPosition(0, 0))
	require.Equal(t, a.ID, engine.Pinned())

	// Act
	require.NoError(t, engine.Pin(b.ID))

	// Assert: same nearest node, override holds
	_, _ = engine.UpdatePosition(shared.NewPosition(0, 0))
	assert.Equal(t, b.ID, engine.Pinned())

	// nearest changes to c, override is dropped
	_, _ = engine.UpdatePosition(shared.NewPosition(5, 1))
	assert.Equal(t, c.ID, engine.Pinned())

	// back near a: automatic pin again, no resurrection of the override
	_, _ = engine.UpdatePosition(shared.NewPosition(0, 0))
	assert.Equal(t, a.ID, engine.Pinned())
}

// countingSource records how many nodes each query handed back
type countingSource struct {
	discovery.NodeSource
	returned int
}

func (c *countingSource) NodesWithin(center shared.Position, radius int) []world.ResourceNode {
	nodes := c.NodeSource.NodesWithin(center, radius)
	c.returned += len(nodes)
	return nodes
}

func TestEngine_PinOnlyConsidersNodesInRange(t *testing.T) {
	// Arrange: a thousand discovered nodes far to the west, one close by
	near := node(1, 0)
	source := &countingSource{NodeSource: discovery.StaticNodeSource([]world.ResourceNode{near})}
	sched := shared.NewManualScheduler(shared.NewMockClock(time.Time{}))
	engine := discovery.NewEngine(source, discovery.Config{Radius: 2, Debounce: 50 * time.Millisecond}, sched, sched.Clock())
	far := make([]string, 0, 1000)
	for i := int64(0); i < 1000; i++ {
		far = append(far, world.NodeID(shared.NewPosition(-100-i, 0)))
	}
	engine.Restore(shared.NewPosition(-100, 0), far)
	require.Equal(t, far[0], engine.Pinned())

	// Act
	_, err := engine.UpdatePosition(shared.NewPosition(0, 0))
	require.NoError(t, err)
	sched.Advance(time.Second)

	// Assert
	assert.Equal(t, near.ID, engine.Pinned())
	assert.Equal(t, 1, source.returned)

	// pin candidates come from the source query, not from the discovered set
	_, err = engine.UpdatePosition(shared.NewPosition(-100, 0))
	require.NoError(t, err)
	assert.Empty(t, engine.Pinned())
}

func TestEngine_PinRejectsUndiscoveredNode(t *testing.T) {
	engine, _, _ := newTestEngine([]world.ResourceNode{node(9, 9)}, 1)

	err := engine.Pin(world.NodeID(shared.NewPosition(9, 9)))

	var notFound *shared.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestEngine_MoveFiresCallbackSynchronously(t *testing.T) {
	engine, _, _ := newTestEngine(nil, 1)
	var steps [][2]shared.Position
	engine.OnMove(func(from, to shared.Position, dir discovery.Direction) {
		steps = append(steps, [2]shared.Position{from, to})
	})

	_, err := engine.Move(discovery.DirectionUp)
	require.NoError(t, err)
	require.Len(t, steps, 1, "callback ran before Move returned")
	_, err = engine.Move(discovery.DirectionLeft)
	require.NoError(t, err)

	assert.Equal(t, shared.NewPosition(0, -1), steps[0][1])
	assert.Equal(t, shared.NewPosition(-1, -1), steps[1][1])
	assert.Equal(t, shared.NewPosition(-1, -1), engine.Position())

	_, err = engine.Move(discovery.Direction("sideways"))
	var validationErr *shared.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Len(t, steps, 2)
}

func TestEngine_ShutdownFlushesPendingByDefault(t *testing.T) {
	target := node(1, 0)
	engine, sched, recorder := newTestEngine([]world.ResourceNode{target}, 1)
	_, _ = engine.UpdatePosition(shared.NewPosition(0, 0))

	report := engine.Shutdown()
	sched.Advance(time.Second)

	assert.Equal(t, discovery.ShutdownFlush, report.Policy)
	assert.Equal(t, []string{target.ID}, report.Flushed)
	assert.True(t, engine.IsDiscovered(target.ID))
	assert.Len(t, recorder.flushes, 1, "stale timer must not flush again")

	_, err := engine.UpdatePosition(shared.NewPosition(3, 3))
	assert.ErrorIs(t, err, discovery.ErrEngineClosed)
}

func TestEngine_ShutdownDropPolicyReportsDroppedBatch(t *testing.T) {
	target := node(1, 0)
	sched := shared.NewManualScheduler(nil)
	engine := discovery.NewEngine(discovery.StaticNodeSource{target}, discovery.Config{
		Radius:         1,
		ShutdownPolicy: discovery.ShutdownDrop,
	}, sched, sched.Clock())
	_, _ = engine.UpdatePosition(shared.NewPosition(0, 0))

	report := engine.Shutdown()
	sched.Advance(time.Second)

	assert.Equal(t, []string{target.ID}, report.Dropped)
	assert.Empty(t, report.Flushed)
	assert.False(t, engine.IsDiscovered(target.ID))
}

func TestEngine_RestoreDoesNotEmitFlush(t *testing.T) {
	engine, sched, recorder := newTestEngine(nil, 2)
	saved := world.NodeID(shared.NewPosition(1, 1))

	engine.Restore(shared.NewPosition(0, 0), []string{saved})
	sched.Advance(time.Second)

	assert.True(t, engine.IsDiscovered(saved))
	assert.Equal(t, saved, engine.Pinned())
	assert.Empty(t, recorder.flushes)
}

func TestEngine_WorksOverGeneratedWorld(t *testing.T) {
	gen := world.NewGenerator(31, world.DefaultOptions())
	indexer := world.NewChunkIndexer(gen, 8, world.WithChunkCache(16))
	sched := shared.NewManualScheduler(nil)
	engine := discovery.NewEngine(indexer, discovery.Config{Radius: 6}, sched, sched.Clock())

	result, err := engine.UpdatePosition(shared.NewPosition(100, -100))
	require.NoError(t, err)
	sched.Advance(time.Second)

	assert.Len(t, engine.Discovered(), result.Candidates)
}
