package discovery

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

// DefaultDebounce is the delay between a qualifying position update and the
// discovered-set flush
const DefaultDebounce = 50 * time.Millisecond

// ErrEngineClosed is returned for updates after Shutdown
var ErrEngineClosed = errors.New("discovery engine is shut down")

// ShutdownPolicy decides what happens to a pending batch at shutdown
type ShutdownPolicy string

const (
	ShutdownFlush ShutdownPolicy = "flush"
	ShutdownDrop  ShutdownPolicy = "drop"
)

// Config holds the discovery tunables
type Config struct {
	Radius         int
	Debounce       time.Duration
	ShutdownPolicy ShutdownPolicy
}

// ShutdownReport records the disposition of the batch pending at shutdown
type ShutdownReport struct {
	Policy  ShutdownPolicy
	Flushed []string
	Dropped []string
}

// UpdateResult describes one position update
type UpdateResult struct {
	Position     shared.Position
	Candidates   int
	NewlyPending int
	Pinned       string
}

// Engine turns a stream of player positions into discovered nodes.
//
// Candidate evaluation runs on every update. Newly seen candidates collect
// in a pending batch that is flushed once no new candidate has arrived for
// the debounce delay. Only one flush is ever scheduled: scheduling stops the
// previous timer and bumps a generation counter so a stale callback that
// already started is a no-op.
type Engine struct {
	mu sync.Mutex

	source    NodeSource
	scheduler shared.Scheduler
	clock     shared.Clock
	cfg       Config

	position   shared.Position
	discovered *DiscoveredSet
	positions  map[string]shared.Position
	// nodes within the radius of position; the only pin candidates
	nearby map[string]shared.Position

	pending      map[string]struct{}
	pendingTimer shared.Timer
	generation   uint64

	autoPin   string
	manualPin string

	listener FlushListener
	onMove   MoveListener
	closed   bool
}

// NewEngine creates a discovery engine. scheduler and clock are optional;
// nil uses the real implementations.
func NewEngine(source NodeSource, cfg Config, scheduler shared.Scheduler, clock shared.Clock) *Engine {
	if scheduler == nil {
		scheduler = shared.NewRealScheduler()
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if cfg.Radius < 0 {
		cfg.Radius = 0
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.ShutdownPolicy != ShutdownDrop {
		cfg.ShutdownPolicy = ShutdownFlush
	}

	return &Engine{
		source:     source,
		scheduler:  scheduler,
		clock:      clock,
		cfg:        cfg,
		discovered: NewDiscoveredSet(),
		positions:  make(map[string]shared.Position),
		nearby:     make(map[string]shared.Position),
		pending:    make(map[string]struct{}),
	}
}

// SetFlushListener registers the flush listener (nil clears it)
func (e *Engine) SetFlushListener(listener FlushListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = listener
}

// OnMove registers the step callback (nil clears it)
func (e *Engine) OnMove(fn MoveListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onMove = fn
}

// Radius returns the discovery radius in tiles
func (e *Engine) Radius() int {
	return e.cfg.Radius
}

// Restore seeds position and discovered set from a save without flushing
func (e *Engine) Restore(pos shared.Position, discoveredIDs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.position = pos
	for _, id := range discoveredIDs {
		if !e.discovered.Add(id) {
			continue
		}
		if p, err := world.ParseNodeID(id); err == nil {
			e.positions[id] = p
		}
	}
	clear(e.nearby)
	r := int64(e.cfg.Radius)
	for id, p := range e.positions {
		if pos.DistanceSquaredTo(p) <= r*r {
			e.nearby[id] = p
		}
	}
	e.recomputePinLocked()
}

// UpdatePosition moves the player to pos and evaluates discovery candidates
func (e *Engine) UpdatePosition(pos shared.Position) (UpdateResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return UpdateResult{}, ErrEngineClosed
	}

	return e.updateLocked(pos), nil
}

// Move applies a single directional step and then fires the move callback
func (e *Engine) Move(dir Direction) (UpdateResult, error) {
	dx, dy, ok := dir.delta()
	if !ok {
		return UpdateResult{}, shared.NewValidationError("direction", "unknown direction "+string(dir))
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return UpdateResult{}, ErrEngineClosed
	}
	from := e.position
	result := e.updateLocked(from.Offset(dx, dy))
	onMove := e.onMove
	e.mu.Unlock()

	if onMove != nil {
		onMove(from, result.Position, dir)
	}

	return result, nil
}

func (e *Engine) updateLocked(pos shared.Position) UpdateResult {
	e.position = pos

	candidates := e.source.NodesWithin(pos, e.cfg.Radius)
	clear(e.nearby)
	newlyPending := 0
	for _, node := range candidates {
		e.nearby[node.ID] = node.Position
		if e.discovered.Has(node.ID) {
			continue
		}
		if _, queued := e.pending[node.ID]; queued {
			continue
		}
		e.pending[node.ID] = struct{}{}
		e.positions[node.ID] = node.Position
		newlyPending++
	}

	if newlyPending > 0 {
		e.scheduleFlushLocked()
	}

	e.recomputePinLocked()

	return UpdateResult{
		Position:     pos,
		Candidates:   len(candidates),
		NewlyPending: newlyPending,
		Pinned:       e.pinnedLocked(),
	}
}

func (e *Engine) scheduleFlushLocked() {
	if e.pendingTimer != nil {
		e.pendingTimer.Stop()
	}
	e.generation++
	token := e.generation
	e.pendingTimer = e.scheduler.Schedule(e.cfg.Debounce, func() {
		e.flush(token)
	})
}

// flush runs from the debounce timer
func (e *Engine) flush(token uint64) {
	e.mu.Lock()
	if token != e.generation || e.closed {
		e.mu.Unlock()
		return
	}
	e.pendingTimer = nil
	batch, listener := e.commitPendingLocked()
	e.mu.Unlock()

	if listener != nil && len(batch.NodeIDs) > 0 {
		listener.OnDiscoveryFlush(batch)
	}
}

// FlushNow commits the pending batch immediately, cancelling the timer
func (e *Engine) FlushNow() Flush {
	e.mu.Lock()
	e.cancelTimerLocked()
	batch, listener := e.commitPendingLocked()
	e.mu.Unlock()

	if listener != nil && len(batch.NodeIDs) > 0 {
		listener.OnDiscoveryFlush(batch)
	}
	return batch
}

func (e *Engine) cancelTimerLocked() {
	if e.pendingTimer != nil {
		e.pendingTimer.Stop()
		e.pendingTimer = nil
	}
	e.generation++
}

func (e *Engine) commitPendingLocked() (Flush, FlushListener) {
	ids := make([]string, 0, len(e.pending))
	for id := range e.pending {
		if e.discovered.Add(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	clear(e.pending)

	e.recomputePinLocked()

	return Flush{
		NodeIDs:  ids,
		Position: e.position,
		Pinned:   e.pinnedLocked(),
		At:       e.clock.Now(),
	}, e.listener
}

// Shutdown stops the engine and disposes of the pending batch according to
// the configured policy. It is safe to call more than once.
func (e *Engine) Shutdown() ShutdownReport {
	e.mu.Lock()
	report := ShutdownReport{Policy: e.cfg.ShutdownPolicy}
	if e.closed {
		e.mu.Unlock()
		return report
	}
	e.closed = true
	e.cancelTimerLocked()

	var (
		batch    Flush
		listener FlushListener
	)
	switch e.cfg.ShutdownPolicy {
	case ShutdownDrop:
		for id := range e.pending {
			report.Dropped = append(report.Dropped, id)
		}
		sort.Strings(report.Dropped)
		clear(e.pending)
	default:
		batch, listener = e.commitPendingLocked()
		report.Flushed = batch.NodeIDs
	}
	e.mu.Unlock()

	if listener != nil && len(batch.NodeIDs) > 0 {
		listener.OnDiscoveryFlush(batch)
	}
	return report
}

// Pin overrides the automatic pin with a discovered node. The override is
// dropped as soon as an automatic recompute picks a different nearest node.
func (e *Engine) Pin(nodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.discovered.Has(nodeID) {
		return shared.NewNotFoundError("discovered node", nodeID)
	}
	e.manualPin = nodeID
	return nil
}

// Pinned returns the pinned node id, or "" when nothing is pinned
func (e *Engine) Pinned() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pinnedLocked()
}

func (e *Engine) pinnedLocked() string {
	if e.manualPin != "" {
		return e.manualPin
	}
	return e.autoPin
}

func (e *Engine) recomputePinLocked() {
	nearest := ""
	var best int64
	r := int64(e.cfg.Radius)
	limit := r * r

	for id, pos := range e.nearby {
		if !e.discovered.Has(id) {
			continue
		}
		d := e.position.DistanceSquaredTo(pos)
		if d > limit {
			continue
		}
		if nearest == "" || d < best || (d == best && id < nearest) {
			nearest, best = id, d
		}
	}

	if nearest != e.autoPin {
		e.autoPin = nearest
		e.manualPin = ""
	}
}

// Position returns the player's current tile
func (e *Engine) Position() shared.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// Discovered returns every discovered node id, sorted
func (e *Engine) Discovered() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.discovered.IDs()
}

// IsDiscovered reports whether a node has been discovered
func (e *Engine) IsDiscovered(nodeID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.discovered.Has(nodeID)
}

// PendingCount returns the number of candidates awaiting a flush
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}
