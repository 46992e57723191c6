package progression

import (
	"sort"
	"sync"
	"time"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// Toast is an achieved milestone waiting to be shown
type Toast struct {
	ID          MilestoneID
	Title       string
	Description string
	AchievedAt  time.Time
}

// Tracker awards milestones once and remembers which toasts were shown
type Tracker struct {
	mu       sync.RWMutex
	clock    shared.Clock
	stats    Stats
	achieved map[MilestoneID]time.Time
	shown    map[MilestoneID]bool
}

// NewTracker creates an empty tracker. clock defaults to the real clock.
func NewTracker(clock shared.Clock) *Tracker {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Tracker{
		clock:    clock,
		achieved: make(map[MilestoneID]time.Time),
		shown:    make(map[MilestoneID]bool),
	}
}

// Record folds delta into the running stats and awards whatever became
// reachable. It returns the newly awarded milestones in display order.
func (t *Tracker) Record(delta Stats) []MilestoneID {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Discovered += delta.Discovered
	t.stats.MachinesPlaced += delta.MachinesPlaced
	t.stats.CraftsCompleted += delta.CraftsCompleted
	t.stats.Extractions += delta.Extractions
	t.stats.ExhaustedNodes += delta.ExhaustedNodes

	return t.evaluateLocked()
}

// Observe replaces the stats with absolute values, typically after a load,
// and awards whatever they reach
func (t *Tracker) Observe(stats Stats) []MilestoneID {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats = stats
	return t.evaluateLocked()
}

func (t *Tracker) evaluateLocked() []MilestoneID {
	var awarded []MilestoneID
	now := t.clock.Now()
	for _, m := range milestones {
		if _, done := t.achieved[m.ID]; done {
			continue
		}
		if m.reached(t.stats) {
			t.achieved[m.ID] = now
			awarded = append(awarded, m.ID)
		}
	}
	return awarded
}

// Stats returns the running counters
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

// IsAchieved reports whether a milestone was awarded
func (t *Tracker) IsAchieved(id MilestoneID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.achieved[id]
	return ok
}

// Achieved returns award times by milestone
func (t *Tracker) Achieved() map[MilestoneID]time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[MilestoneID]time.Time, len(t.achieved))
	for id, at := range t.achieved {
		out[id] = at
	}
	return out
}

// PendingToasts lists achieved milestones whose toast has not been shown,
// oldest first
func (t *Tracker) PendingToasts() []Toast {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var toasts []Toast
	for id, at := range t.achieved {
		if t.shown[id] {
			continue
		}
		m, ok := Lookup(id)
		if !ok {
			continue
		}
		toasts = append(toasts, Toast{ID: id, Title: m.Title, Description: m.Description, AchievedAt: at})
	}

	sort.Slice(toasts, func(i, j int) bool {
		if toasts[i].AchievedAt.Equal(toasts[j].AchievedAt) {
			return toasts[i].ID < toasts[j].ID
		}
		return toasts[i].AchievedAt.Before(toasts[j].AchievedAt)
	})
	return toasts
}

// MarkToastShown records that the toast for id was displayed
func (t *Tracker) MarkToastShown(id MilestoneID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.achieved[id]; !ok {
		return shared.NewNotFoundError("achieved milestone", string(id))
	}
	t.shown[id] = true
	return nil
}

// ShownToasts returns the toast-shown flags
func (t *Tracker) ShownToasts() map[MilestoneID]bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[MilestoneID]bool, len(t.shown))
	for id, v := range t.shown {
		if v {
			out[id] = true
		}
	}
	return out
}

// Restore seeds the tracker from persisted state. Unknown milestone ids are
// dropped.
func (t *Tracker) Restore(achieved map[MilestoneID]time.Time, shown map[MilestoneID]bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.achieved = make(map[MilestoneID]time.Time, len(achieved))
	for id, at := range achieved {
		if _, ok := Lookup(id); ok {
			t.achieved[id] = at
		}
	}
	t.shown = make(map[MilestoneID]bool, len(shown))
	for id, v := range shown {
		if _, ok := t.achieved[id]; ok && v {
			t.shown[id] = true
		}
	}
}
