package crafting

import (
	"math"
	"time"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/pkg/utils"
)

// CraftingJob is the in-flight work of one machine.
//
// Elapsed time is accumulated across run segments: accumulated holds the
// time banked before the current segment and resumedAt marks when the
// current segment began (nil while paused). StartedAt never moves.
type CraftingJob struct {
	machineID       string
	recipeID        string
	batch           int
	startedAt       time.Time
	duration        time.Duration
	accumulated     time.Duration
	resumedAt       *time.Time
	totalAmount     int
	completedAmount int
	consumed        map[shared.ResourceType]int
}

func newCraftingJob(machineID string, recipe Recipe, batch int, now time.Time, consumed map[shared.ResourceType]int) *CraftingJob {
	started := now
	return &CraftingJob{
		machineID:   machineID,
		recipeID:    recipe.ID,
		batch:       batch,
		startedAt:   now,
		duration:    recipe.Duration(batch),
		resumedAt:   &started,
		totalAmount: recipe.OutputUnits(batch),
		consumed:    consumed,
	}
}

func (j *CraftingJob) MachineID() string { return j.machineID }
func (j *CraftingJob) RecipeID() string { return j.recipeID }
func (j *CraftingJob) Batch() int { return j.batch }
func (j *CraftingJob) StartedAt() time.Time { return j.startedAt }
func (j *CraftingJob) Duration() time.Duration { return j.duration }
func (j *CraftingJob) TotalAmount() int { return j.totalAmount }

// DurationSeconds is the job length in seconds
func (j *CraftingJob) DurationSeconds() float64 {
	return j.duration.Seconds()
}

// Consumed returns the inputs debited when the job started
func (j *CraftingJob) Consumed() map[shared.ResourceType]int {
	out := make(map[shared.ResourceType]int, len(j.consumed))
	for r, n := range j.consumed {
		out[r] = n
	}
	return out
}

// Elapsed returns processing time so far, clamped to [0, Duration]
func (j *CraftingJob) Elapsed(now time.Time) time.Duration {
	elapsed := j.accumulated
	if j.resumedAt != nil {
		if run := now.Sub(*j.resumedAt); run > 0 {
			elapsed += run
		}
	}
	return utils.Clamp(elapsed, 0, j.duration)
}

// Remaining returns processing time left
func (j *CraftingJob) Remaining(now time.Time) time.Duration {
	return j.duration - j.Elapsed(now)
}

// Progress returns the completed fraction in [0, 1]
func (j *CraftingJob) Progress(now time.Time) float64 {
	if j.duration <= 0 {
		return 1
	}
	return float64(j.Elapsed(now)) / float64(j.duration)
}

// IsDone reports whether the full duration has elapsed
func (j *CraftingJob) IsDone(now time.Time) bool {
	return j.Elapsed(now) >= j.duration
}

// CompletedAmount is the number of output units finished so far. Output is
// only credited at completion; this is the presentation figure.
func (j *CraftingJob) CompletedAmount(now time.Time) int {
	if j.completedAmount == j.totalAmount {
		return j.totalAmount
	}
	done := int(math.Floor(j.Progress(now) * float64(j.totalAmount)))
	if done > j.totalAmount {
		return j.totalAmount
	}
	return done
}

func (j *CraftingJob) pause(now time.Time) {
	j.accumulated = j.Elapsed(now)
	j.resumedAt = nil
}

func (j *CraftingJob) resume(now time.Time) {
	t := now
	j.resumedAt = &t
}

func (j *CraftingJob) markCompleted() {
	j.completedAmount = j.totalAmount
}
