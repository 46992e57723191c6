package crafting

import (
	"fmt"
	"time"
)

// MachineStatus is the presentation view of one machine
type MachineStatus struct {
	MachineID      string
	MachineType    MachineType
	State          MachineState
	AssignedNodeID string
	RecipeID       string
	Batch          int
	Progress       float64
	Remaining      time.Duration
	RemainingText  string
	UnitsDone      int
	UnitsTotal     int
	QueueLength    int
}

// IsBusy reports whether the machine holds a job
func (s MachineStatus) IsBusy() bool {
	return s.State == StateProcessing || s.State == StatePaused
}

func (w *Workshop) statusLocked(m *Machine, now time.Time) MachineStatus {
	status := MachineStatus{
		MachineID:      m.ID(),
		MachineType:    m.Type(),
		State:          m.State(),
		AssignedNodeID: m.AssignedNodeID(),
		QueueLength:    m.QueueLength(),
	}

	job := m.Job()
	if job == nil {
		return status
	}

	status.RecipeID = job.RecipeID()
	status.Batch = job.Batch()
	status.Progress = capabilityFor(m.Kind(), w.nodes).Progress(job, now)
	status.Remaining = job.Remaining(now)
	status.RemainingText = FormatRemaining(status.Remaining)
	status.UnitsDone = job.CompletedAmount(now)
	status.UnitsTotal = job.TotalAmount()
	return status
}

// FormatRemaining renders a remaining duration for display: "45s", "1m05s",
// "2h03m", or "done" once nothing is left. Partial seconds round up.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "done"
	}

	secs := int64((d + time.Second - 1) / time.Second)
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%dh%02dm", secs/3600, (secs%3600)/60)
	}
}
