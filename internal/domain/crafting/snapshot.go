package crafting

import (
	"errors"
	"fmt"
	"time"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// JobSnapshot is the persisted form of a CraftingJob
type JobSnapshot struct {
	RecipeID           string                      `json:"recipeId"`
	Batch              int                         `json:"batch"`
	StartedAt          time.Time                   `json:"startedAt"`
	DurationSeconds    float64                     `json:"durationSeconds"`
	AccumulatedSeconds float64                     `json:"accumulatedSeconds"`
	ResumedAt          *time.Time                  `json:"resumedAt,omitempty"`
	Consumed           map[shared.ResourceType]int `json:"consumed,omitempty"`
}

// MachineSnapshot is the persisted form of a Machine. Queues are persisted
// separately, keyed by machine id.
type MachineSnapshot struct {
	ID             string       `json:"id"`
	Type           MachineType  `json:"type"`
	State          MachineState `json:"state"`
	AssignedNodeID string       `json:"assignedNodeId,omitempty"`
	PlacedAt       time.Time    `json:"placedAt"`
	Job            *JobSnapshot `json:"job,omitempty"`
}

// Snapshot captures every machine in placement order
func (w *Workshop) Snapshot() []MachineSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]MachineSnapshot, 0, len(w.order))
	for _, id := range w.order {
		m := w.machines[id]
		snap := MachineSnapshot{
			ID:             m.ID(),
			Type:           m.Type(),
			State:          m.State(),
			AssignedNodeID: m.AssignedNodeID(),
			PlacedAt:       m.PlacedAt(),
		}
		if job := m.Job(); job != nil {
			snap.Job = snapshotJob(job)
		}
		out = append(out, snap)
	}
	return out
}

// Queues captures the pending requests of every machine that has any
func (w *Workshop) Queues() map[string][]CraftRequest {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[string][]CraftRequest)
	for _, id := range w.order {
		if q := w.machines[id].Queue(); len(q) > 0 {
			out[id] = q
		}
	}
	return out
}

func snapshotJob(job *CraftingJob) *JobSnapshot {
	snap := &JobSnapshot{
		RecipeID:           job.recipeID,
		Batch:              job.batch,
		StartedAt:          job.startedAt,
		DurationSeconds:    job.duration.Seconds(),
		AccumulatedSeconds: job.accumulated.Seconds(),
		Consumed:           job.Consumed(),
	}
	if job.resumedAt != nil {
		t := *job.resumedAt
		snap.ResumedAt = &t
	}
	return snap
}

// Restore replaces every machine with the snapshots. Invalid snapshots are
// skipped and reported in the returned error; the valid ones are kept.
// Running jobs count the time since their last resume, so work done while
// the process was down is caught by the next Tick.
func (w *Workshop) Restore(machines []MachineSnapshot, queues map[string][]CraftRequest) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id := range w.timers {
		w.stopTimerLocked(id)
	}
	w.machines = make(map[string]*Machine, len(machines))
	w.order = w.order[:0]

	now := w.clock.Now()
	var errs []error
	for _, snap := range machines {
		m, err := restoreMachine(snap)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := w.machines[m.ID()]; dup {
			errs = append(errs, shared.NewValidationError("machine.id", fmt.Sprintf("duplicate machine %s", m.ID())))
			continue
		}
		if job := m.Job(); job != nil && w.catalog != nil {
			if recipe, err := w.catalog.Get(job.RecipeID()); err == nil {
				if err := recipe.CheckBatch(job.Batch()); err != nil {
					errs = append(errs, fmt.Errorf("machine %s: %w", m.ID(), err))
					continue
				}
				job.totalAmount = recipe.OutputUnits(job.Batch())
			}
		}
		for _, req := range queues[m.ID()] {
			if req.Batch >= 1 && req.RecipeID != "" {
				m.enqueue(req)
			}
		}
		w.machines[m.ID()] = m
		w.order = append(w.order, m.ID())
		if m.State() == StateProcessing {
			w.scheduleCompletionLocked(m, now)
		}
	}
	return errors.Join(errs...)
}

func restoreMachine(snap MachineSnapshot) (*Machine, error) {
	m, err := NewMachine(snap.ID, snap.Type, snap.PlacedAt)
	if err != nil {
		return nil, err
	}
	m.assignedNodeID = snap.AssignedNodeID

	switch snap.State {
	case StateIdle, StateAwaitingAssignment:
		if m.kind == KindExtractor && m.assignedNodeID == "" {
			m.state = StateAwaitingAssignment
		} else {
			m.state = StateIdle
		}
		return m, nil
	case StateProcessing, StatePaused:
		if snap.Job == nil {
			return nil, shared.NewValidationError("machine.job", fmt.Sprintf("machine %s is %s without a job", snap.ID, snap.State))
		}
		job, err := restoreJob(snap.ID, *snap.Job, snap.State == StatePaused)
		if err != nil {
			return nil, err
		}
		m.startJob(job)
		m.state = snap.State
		return m, nil
	default:
		return nil, shared.NewValidationError("machine.state", fmt.Sprintf("machine %s has unknown state %q", snap.ID, snap.State))
	}
}

func restoreJob(machineID string, snap JobSnapshot, paused bool) (*CraftingJob, error) {
	if snap.RecipeID == "" || snap.Batch < 1 || snap.DurationSeconds <= 0 || snap.DurationSeconds > MaxJobDuration.Seconds() {
		return nil, shared.NewValidationError("machine.job", fmt.Sprintf("machine %s has an invalid job", machineID))
	}

	job := &CraftingJob{
		machineID:   machineID,
		recipeID:    snap.RecipeID,
		batch:       snap.Batch,
		startedAt:   snap.StartedAt,
		duration:    time.Duration(snap.DurationSeconds * float64(time.Second)),
		accumulated: time.Duration(snap.AccumulatedSeconds * float64(time.Second)),
		consumed:    snap.Consumed,
	}
	if job.accumulated < 0 {
		job.accumulated = 0
	}
	if !paused {
		resumed := snap.StartedAt
		if snap.ResumedAt != nil {
			resumed = *snap.ResumedAt
		}
		job.resumedAt = &resumed
	}
	return job, nil
}
