package crafting

import (
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

// Policy holds the configurable crafting rules
type Policy struct {
	// RefundOnCancel returns debited inputs when a job is cancelled
	RefundOnCancel bool
}

// StartResult describes a job that just started
type StartResult struct {
	MachineID string
	RecipeID  string
	Batch     int
	StartedAt time.Time
	Duration  time.Duration
	Debited   map[shared.ResourceType]int
}

// CompletionResult describes a completion check. Completed is false when
// there was nothing to complete, which makes repeated checks harmless.
type CompletionResult struct {
	MachineID   string
	RecipeID    string
	Completed   bool
	Credited    map[shared.ResourceType]int
	Node        *world.ResourceNode
	NextStarted bool
}

// CancelResult describes a cancelled job
type CancelResult struct {
	MachineID   string
	RecipeID    string
	Refunded    map[shared.ResourceType]int
	NextStarted bool
}

// EnqueueResult tells whether a request started immediately or was queued
type EnqueueResult struct {
	Started       bool
	QueuePosition int
	Start         *StartResult
}

// Workshop is the crafting state machine for every placed machine.
//
// A single mutex serializes every transition, so no two transitions touch
// the same machine, inventory entry or node at once. Completion timers go
// through the scheduler and take the same lock; listeners are called after
// it is released.
type Workshop struct {
	mu sync.Mutex

	catalog   *RecipeCatalog
	inventory *Inventory
	nodes     NodeRegistry
	policy    Policy
	scheduler shared.Scheduler
	clock     shared.Clock
	newID     IDGenerator

	machines map[string]*Machine
	order    []string
	timers   map[string]shared.Timer

	listener EventListener
}

// NewWorkshop creates a workshop. nodes may be nil when no extractors are
// used; scheduler and clock default to the real implementations.
func NewWorkshop(
	catalog *RecipeCatalog,
	inventory *Inventory,
	nodes NodeRegistry,
	policy Policy,
	scheduler shared.Scheduler,
	clock shared.Clock,
) *Workshop {
	if inventory == nil {
		inventory = NewInventory(nil)
	}
	if scheduler == nil {
		scheduler = shared.NewRealScheduler()
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}

	w := &Workshop{
		catalog:   catalog,
		inventory: inventory,
		nodes:     nodes,
		policy:    policy,
		scheduler: scheduler,
		clock:     clock,
		machines:  make(map[string]*Machine),
		timers:    make(map[string]shared.Timer),
	}
	w.newID = w.sequentialID
	return w
}

// SetEventListener registers the event listener (nil clears it)
func (w *Workshop) SetEventListener(listener EventListener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listener = listener
}

// SetIDGenerator replaces the machine ID generator
func (w *Workshop) SetIDGenerator(gen IDGenerator) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != nil {
		w.newID = gen
	}
}

// Inventory returns the inventory the workshop debits and credits
func (w *Workshop) Inventory() *Inventory {
	return w.inventory
}

// Catalog returns the recipe catalog
func (w *Workshop) Catalog() *RecipeCatalog {
	return w.catalog
}

// Policy returns the active crafting policy
func (w *Workshop) Policy() Policy {
	return w.policy
}

func (w *Workshop) sequentialID(t MachineType) string {
	return fmt.Sprintf("%s-%d", t, len(w.order)+1)
}

// PlaceMachine builds a new machine of type t
func (w *Workshop) PlaceMachine(t MachineType) (MachineStatus, error) {
	w.mu.Lock()

	id := w.newID(t)
	if _, exists := w.machines[id]; exists {
		w.mu.Unlock()
		return MachineStatus{}, shared.NewValidationError("machine.id", fmt.Sprintf("machine %s already exists", id))
	}

	now := w.clock.Now()
	m, err := NewMachine(id, t, now)
	if err != nil {
		w.mu.Unlock()
		return MachineStatus{}, err
	}
	w.machines[id] = m
	w.order = append(w.order, id)

	status := w.statusLocked(m, now)
	events := []Event{{Type: EventMachinePlaced, MachineID: id, MachineType: t, At: now}}
	w.mu.Unlock()

	w.emit(events)
	return status, nil
}

// AssignNode points an extractor at a resource node
func (w *Workshop) AssignNode(machineID, nodeID string) error {
	w.mu.Lock()

	m, err := w.machineLocked(machineID)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if w.nodes == nil {
		w.mu.Unlock()
		return shared.NewNotFoundError("resource node", nodeID)
	}
	node, err := w.nodes.Lookup(nodeID)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := m.assignNode(node.ID); err != nil {
		w.mu.Unlock()
		return err
	}

	events := []Event{{Type: EventNodeAssigned, MachineID: m.ID(), MachineType: m.Type(), Node: &node, At: w.clock.Now()}}
	w.mu.Unlock()

	w.emit(events)
	return nil
}

// StartCraft starts batch runs of a recipe. Preconditions are checked in
// order: busy machine, recipe type, node assignment, node exhaustion,
// inventory. A failed start changes nothing.
func (w *Workshop) StartCraft(machineID, recipeID string, batch int) (StartResult, error) {
	w.mu.Lock()
	result, events, err := w.startLocked(machineID, recipeID, batch)
	w.mu.Unlock()

	w.emit(events)
	return result, err
}

func (w *Workshop) startLocked(machineID, recipeID string, batch int) (StartResult, []Event, error) {
	if batch < 1 {
		return StartResult{}, nil, shared.NewValidationError("batch", "must be at least 1")
	}

	m, err := w.machineLocked(machineID)
	if err != nil {
		return StartResult{}, nil, err
	}
	if m.IsBusy() {
		return StartResult{}, nil, shared.NewMachineBusyError(m.ID(), string(m.State()))
	}

	recipe, err := w.catalog.Get(recipeID)
	if err != nil {
		return StartResult{}, nil, err
	}
	if recipe.RequiredMachineType != m.Type() {
		return StartResult{}, nil, shared.NewInvalidRecipeForMachineError(recipe.ID, string(m.Type()), string(recipe.RequiredMachineType))
	}
	if err := recipe.CheckBatch(batch); err != nil {
		return StartResult{}, nil, err
	}

	debit, err := capabilityFor(m.Kind(), w.nodes).Start(m, recipe, batch)
	if err != nil {
		return StartResult{}, nil, err
	}
	if err := w.inventory.Debit(debit); err != nil {
		return StartResult{}, nil, err
	}

	now := w.clock.Now()
	job := newCraftingJob(m.ID(), recipe, batch, now, debit)
	m.startJob(job)
	w.scheduleCompletionLocked(m, now)

	result := StartResult{
		MachineID: m.ID(),
		RecipeID:  recipe.ID,
		Batch:     batch,
		StartedAt: now,
		Duration:  job.Duration(),
		Debited:   debit,
	}
	event := Event{
		Type:        EventJobStarted,
		MachineID:   m.ID(),
		MachineType: m.Type(),
		RecipeID:    recipe.ID,
		Batch:       batch,
		Resources:   debit,
		At:          now,
	}
	return result, []Event{event}, nil
}

// Enqueue starts the request right away on an idle machine with an empty
// queue, and otherwise appends it to the machine's queue
func (w *Workshop) Enqueue(machineID, recipeID string, batch int) (EnqueueResult, error) {
	w.mu.Lock()

	if batch < 1 {
		w.mu.Unlock()
		return EnqueueResult{}, shared.NewValidationError("batch", "must be at least 1")
	}
	m, err := w.machineLocked(machineID)
	if err != nil {
		w.mu.Unlock()
		return EnqueueResult{}, err
	}
	recipe, err := w.catalog.Get(recipeID)
	if err != nil {
		w.mu.Unlock()
		return EnqueueResult{}, err
	}
	if recipe.RequiredMachineType != m.Type() {
		w.mu.Unlock()
		return EnqueueResult{}, shared.NewInvalidRecipeForMachineError(recipe.ID, string(m.Type()), string(recipe.RequiredMachineType))
	}
	if err := recipe.CheckBatch(batch); err != nil {
		w.mu.Unlock()
		return EnqueueResult{}, err
	}

	// an idle machine works off what is already queued before this request
	var events []Event
	if m.State() == StateIdle && m.QueueLength() > 0 {
		_, events = w.startNextLocked(m)
	}

	if !m.IsBusy() && m.QueueLength() == 0 {
		start, startEvents, err := w.startLocked(machineID, recipeID, batch)
		w.mu.Unlock()
		w.emit(append(events, startEvents...))
		if err != nil {
			return EnqueueResult{}, err
		}
		return EnqueueResult{Started: true, Start: &start}, nil
	}

	position := m.enqueue(CraftRequest{RecipeID: recipeID, Batch: batch})
	events = append(events, Event{
		Type:        EventRequestQueued,
		MachineID:   m.ID(),
		MachineType: m.Type(),
		RecipeID:    recipeID,
		Batch:       batch,
		At:          w.clock.Now(),
	})
	w.mu.Unlock()

	w.emit(events)
	return EnqueueResult{QueuePosition: position}, nil
}

// ClearQueue drops every queued request of a machine
func (w *Workshop) ClearQueue(machineID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	m, err := w.machineLocked(machineID)
	if err != nil {
		return err
	}
	m.clearQueue()
	return nil
}

// Complete credits the outputs of a finished job and returns the machine to
// Idle. Calling it again, or before the job is done, reports Completed=false
// and changes nothing.
func (w *Workshop) Complete(machineID string) (CompletionResult, error) {
	w.mu.Lock()
	result, events, err := w.completeLocked(machineID, w.clock.Now())
	w.mu.Unlock()

	w.emit(events)
	return result, err
}

func (w *Workshop) completeLocked(machineID string, now time.Time) (CompletionResult, []Event, error) {
	m, err := w.machineLocked(machineID)
	if err != nil {
		return CompletionResult{}, nil, err
	}

	result := CompletionResult{MachineID: m.ID()}
	job := m.Job()
	if job == nil || m.State() != StateProcessing || !job.IsDone(now) {
		return result, nil, nil
	}
	result.RecipeID = job.RecipeID()

	recipe, err := w.catalog.Get(job.RecipeID())
	if err != nil {
		return result, nil, err
	}

	credit, node, err := capabilityFor(m.Kind(), w.nodes).Complete(m, job, recipe)
	if err != nil {
		return result, nil, err
	}

	w.inventory.Credit(credit)
	job.markCompleted()
	m.endJob()
	w.stopTimerLocked(m.ID())

	result.Completed = true
	result.Credited = credit
	result.Node = node

	events := []Event{{
		Type:        EventJobCompleted,
		MachineID:   m.ID(),
		MachineType: m.Type(),
		RecipeID:    recipe.ID,
		Batch:       job.Batch(),
		Resources:   credit,
		Node:        node,
		At:          now,
	}}

	started, queueEvents := w.startNextLocked(m)
	result.NextStarted = started
	events = append(events, queueEvents...)

	return result, events, nil
}

// startNextLocked pops queued requests until one starts or the queue is empty
func (w *Workshop) startNextLocked(m *Machine) (bool, []Event) {
	var events []Event
	for {
		req, ok := m.dequeue()
		if !ok {
			return false, events
		}
		_, startEvents, err := w.startLocked(m.ID(), req.RecipeID, req.Batch)
		if err == nil {
			return true, append(events, startEvents...)
		}
		events = append(events, Event{
			Type:        EventQueuedStartFail,
			MachineID:   m.ID(),
			MachineType: m.Type(),
			RecipeID:    req.RecipeID,
			Batch:       req.Batch,
			Err:         err,
			At:          w.clock.Now(),
		})
	}
}

// Cancel discards the job of a processing or paused machine. Inputs are
// refunded only when the policy says so. The machine then moves on to its
// next queued request, if any.
func (w *Workshop) Cancel(machineID string) (CancelResult, error) {
	w.mu.Lock()

	m, err := w.machineLocked(machineID)
	if err != nil {
		w.mu.Unlock()
		return CancelResult{}, err
	}
	if !m.IsBusy() {
		w.mu.Unlock()
		return CancelResult{}, shared.NewInvalidTransitionError(m.ID(), string(m.State()), string(StateIdle))
	}

	job := m.Job()
	refund := capabilityFor(m.Kind(), w.nodes).Cancel(job, w.policy.RefundOnCancel)
	w.inventory.Credit(refund)
	m.endJob()
	w.stopTimerLocked(m.ID())

	now := w.clock.Now()
	result := CancelResult{MachineID: m.ID(), RecipeID: job.RecipeID(), Refunded: refund}
	events := []Event{{
		Type:        EventJobCancelled,
		MachineID:   m.ID(),
		MachineType: m.Type(),
		RecipeID:    job.RecipeID(),
		Batch:       job.Batch(),
		Resources:   refund,
		At:          now,
	}}
	started, queueEvents := w.startNextLocked(m)
	result.NextStarted = started
	events = append(events, queueEvents...)
	w.mu.Unlock()

	w.emit(events)
	return result, nil
}

// Pause freezes a processing job
func (w *Workshop) Pause(machineID string) error {
	w.mu.Lock()

	m, err := w.machineLocked(machineID)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	now := w.clock.Now()
	if err := m.pause(now); err != nil {
		w.mu.Unlock()
		return err
	}
	w.stopTimerLocked(m.ID())

	events := []Event{{Type: EventJobPaused, MachineID: m.ID(), MachineType: m.Type(), RecipeID: m.RecipeID(), At: now}}
	w.mu.Unlock()

	w.emit(events)
	return nil
}

// Resume continues a paused job from where it stopped
func (w *Workshop) Resume(machineID string) error {
	w.mu.Lock()

	m, err := w.machineLocked(machineID)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	now := w.clock.Now()
	if err := m.resume(now); err != nil {
		w.mu.Unlock()
		return err
	}
	w.scheduleCompletionLocked(m, now)

	events := []Event{{Type: EventJobResumed, MachineID: m.ID(), MachineType: m.Type(), RecipeID: m.RecipeID(), At: now}}
	w.mu.Unlock()

	w.emit(events)
	return nil
}

// Tick completes every job whose time is up and starts queued work on idle
// machines. It backs up the completion timers and catches jobs that
// finished while the process was down.
func (w *Workshop) Tick() []CompletionResult {
	w.mu.Lock()

	now := w.clock.Now()
	var (
		results []CompletionResult
		events  []Event
	)
	for _, id := range w.order {
		result, evs, err := w.completeLocked(id, now)
		if err != nil {
			events = append(events, Event{Type: EventJobCompleted, MachineID: id, Err: err, At: now})
			continue
		}
		if result.Completed {
			results = append(results, result)
			events = append(events, evs...)
		}
	}
	// queues left behind by a restore or a failed start
	for _, id := range w.order {
		if m := w.machines[id]; m.State() == StateIdle && m.QueueLength() > 0 {
			_, evs := w.startNextLocked(m)
			events = append(events, evs...)
		}
	}
	w.mu.Unlock()

	w.emit(events)
	return results
}

// Machine returns the status of one machine
func (w *Workshop) Machine(machineID string) (MachineStatus, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	m, err := w.machineLocked(machineID)
	if err != nil {
		return MachineStatus{}, err
	}
	return w.statusLocked(m, w.clock.Now()), nil
}

// Status returns every machine in placement order
func (w *Workshop) Status() []MachineStatus {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.clock.Now()
	out := make([]MachineStatus, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.statusLocked(w.machines[id], now))
	}
	return out
}

// MachineCount returns the number of placed machines
func (w *Workshop) MachineCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.order)
}

func (w *Workshop) machineLocked(id string) (*Machine, error) {
	m, ok := w.machines[id]
	if !ok {
		return nil, shared.NewNotFoundError("machine", id)
	}
	return m, nil
}

func (w *Workshop) scheduleCompletionLocked(m *Machine, now time.Time) {
	w.stopTimerLocked(m.ID())
	job := m.Job()
	if job == nil {
		return
	}
	id := m.ID()
	w.timers[id] = w.scheduler.Schedule(job.Remaining(now), func() {
		_, _ = w.Complete(id)
	})
}

func (w *Workshop) stopTimerLocked(id string) {
	if t, ok := w.timers[id]; ok {
		t.Stop()
		delete(w.timers, id)
	}
}

// Shutdown stops every completion timer. Jobs keep their progress and are
// picked up by Tick or Restore later.
func (w *Workshop) Shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id := range w.timers {
		w.stopTimerLocked(id)
	}
}

func (w *Workshop) emit(events []Event) {
	if len(events) == 0 {
		return
	}
	w.mu.Lock()
	listener := w.listener
	w.mu.Unlock()

	if listener == nil {
		return
	}
	for _, e := range events {
		listener.OnCraftingEvent(e)
	}
}
