package savegame

import (
	"errors"
	"sync"
	"time"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// CircuitState is the state of the save breaker as shown by `outpost status`
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	// writes are skipped until the cool-down ends
	CircuitOpen
	// the next write is a probe; its outcome closes or reopens the breaker
	CircuitHalfOpen
)

var circuitStateNames = [...]string{"closed", "open", "half-open"}

func (s CircuitState) String() string {
	if int(s) < len(circuitStateNames) {
		return circuitStateNames[s]
	}
	return "unknown"
}

// ErrCircuitOpen means the save was skipped without touching the store
var ErrCircuitOpen = errors.New("save skipped: store is failing, circuit breaker open")

// writeBreaker guards the key-value store. A run of maxFailures failed
// writes opens it for coolDown, so a dead database costs one error per
// cool-down instead of one per autosave and discovery flush.
type writeBreaker struct {
	mu        sync.Mutex
	clock     shared.Clock
	threshold int
	coolDown  time.Duration

	state     CircuitState
	failures  int
	openUntil time.Time
}

func newWriteBreaker(threshold int, coolDown time.Duration, clock shared.Clock) *writeBreaker {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &writeBreaker{
		clock:     clock,
		threshold: max(threshold, 1),
		coolDown:  coolDown,
	}
}

// Do runs write unless the breaker is open
func (b *writeBreaker) Do(write func() error) error {
	if !b.admit() {
		return ErrCircuitOpen
	}

	// the store is called unlocked so status queries never wait on it
	err := write()
	b.record(err)
	return err
}

func (b *writeBreaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != CircuitOpen {
		return true
	}
	if b.clock.Now().Before(b.openUntil) {
		return false
	}
	b.state = CircuitHalfOpen
	return true
}

func (b *writeBreaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.state, b.failures = CircuitClosed, 0
		return
	}
	b.failures++
	if b.state == CircuitHalfOpen || b.failures >= b.threshold {
		b.state = CircuitOpen
		b.openUntil = b.clock.Now().Add(b.coolDown)
	}
}

func (b *writeBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
