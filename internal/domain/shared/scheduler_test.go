package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

func TestManualScheduler_FiresInDueOrder(t *testing.T) {
	// Arrange
	sched := shared.NewManualScheduler(shared.NewMockClock(time.Time{}))
	var fired []string

	sched.Schedule(30*time.Millisecond, func() { fired = append(fired, "late") })
	sched.Schedule(10*time.Millisecond, func() { fired = append(fired, "early") })
	sched.Schedule(10*time.Millisecond, func() { fired = append(fired, "early-2") })

	// Act
	sched.Advance(20 * time.Millisecond)

	// Assert
	assert.Equal(t, []string{"early", "early-2"}, fired)
	assert.Equal(t, 1, sched.Pending())

	sched.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"early", "early-2", "late"}, fired)
	assert.Equal(t, 0, sched.Pending())
}

func TestManualScheduler_StopPreventsCallback(t *testing.T) {
	// Arrange
	sched := shared.NewManualScheduler(nil)
	called := false
	timer := sched.Schedule(time.Second, func() { called = true })

	// Act
	stopped := timer.Stop()
	sched.Advance(2 * time.Second)

	// Assert
	assert.True(t, stopped)
	assert.False(t, called)
	assert.False(t, timer.Stop(), "second stop reports nothing to cancel")
}

func TestManualScheduler_ClockTracksFiringTime(t *testing.T) {
	// Arrange
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := shared.NewMockClock(start)
	sched := shared.NewManualScheduler(clock)

	var seenAt time.Time
	sched.Schedule(5*time.Second, func() { seenAt = clock.Now() })

	// Act
	sched.Advance(time.Minute)

	// Assert
	assert.Equal(t, start.Add(5*time.Second), seenAt)
	assert.Equal(t, start.Add(time.Minute), clock.Now())
}

func TestManualScheduler_CallbackMayReschedule(t *testing.T) {
	// Arrange
	sched := shared.NewManualScheduler(nil)
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			sched.Schedule(time.Second, tick)
		}
	}
	sched.Schedule(time.Second, tick)

	// Act
	sched.Advance(10 * time.Second)

	// Assert
	require.Equal(t, 3, count)
	assert.Equal(t, 0, sched.Pending())
}

func TestRealScheduler_RunsCallback(t *testing.T) {
	sched := shared.NewRealScheduler()
	done := make(chan struct{})

	sched.Schedule(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback did not run")
	}
}
