package shared

import (
	"sort"
	"sync"
	"time"
)

// Timer is a handle to a scheduled callback
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback already ran or was already stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay. Engines take a Scheduler instead
// of calling time.AfterFunc directly so tests can drive timers by hand.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Timer
}

// RealScheduler schedules callbacks on the Go runtime timer heap
type RealScheduler struct{}

// NewRealScheduler creates a scheduler backed by time.AfterFunc
func NewRealScheduler() *RealScheduler {
	return &RealScheduler{}
}

// Schedule runs fn on its own goroutine once delay elapses
func (s *RealScheduler) Schedule(delay time.Duration, fn func()) Timer {
	if delay < 0 {
		delay = 0
	}
	return time.AfterFunc(delay, fn)
}

// ManualScheduler is a deterministic Scheduler driven by a MockClock.
// Callbacks only run inside Advance or RunDue, on the caller's goroutine,
// in due-time order (ties broken by scheduling order).
type ManualScheduler struct {
	mu    sync.Mutex
	clock *MockClock
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	owner *ManualScheduler
	due   time.Time
	seq   uint64
	fn    func()
	done  bool
}

// NewManualScheduler creates a scheduler that reads and advances clock
func NewManualScheduler(clock *MockClock) *ManualScheduler {
	if clock == nil {
		clock = NewMockClock(time.Time{})
	}
	return &ManualScheduler{clock: clock}
}

// Clock returns the clock this scheduler advances
func (s *ManualScheduler) Clock() *MockClock {
	return s.clock
}

// Schedule registers fn to run once the clock reaches now+delay
func (s *ManualScheduler) Schedule(delay time.Duration, fn func()) Timer {
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	task := &manualTask{
		owner: s,
		due:   s.clock.Now().Add(delay),
		seq:   s.seq,
		fn:    fn,
	}
	s.tasks = append(s.tasks, task)
	return task
}

// Stop cancels the task if it has not fired yet
func (t *manualTask) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.owner.removeLocked(t)
	return true
}

// Advance moves the clock forward by d, firing every task that falls due
// along the way. Tasks scheduled by a firing callback also run if they fall
// inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.clock.Now().Add(d)

	for {
		task := s.popDue(target)
		if task == nil {
			break
		}
		if task.due.After(s.clock.Now()) {
			s.clock.SetTime(task.due)
		}
		task.fn()
	}

	if target.After(s.clock.Now()) {
		s.clock.SetTime(target)
	}
}

// RunDue fires every task already due without moving the clock
func (s *ManualScheduler) RunDue() {
	s.Advance(0)
}

// Pending returns the number of tasks that have not fired or been stopped
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *ManualScheduler) popDue(target time.Time) *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tasks) == 0 {
		return nil
	}

	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due.Equal(s.tasks[j].due) {
			return s.tasks[i].seq < s.tasks[j].seq
		}
		return s.tasks[i].due.Before(s.tasks[j].due)
	})

	next := s.tasks[0]
	if next.due.After(target) {
		return nil
	}

	next.done = true
	s.tasks = s.tasks[1:]
	return next
}

func (s *ManualScheduler) removeLocked(task *manualTask) {
	for i, t := range s.tasks {
		if t == task {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}
