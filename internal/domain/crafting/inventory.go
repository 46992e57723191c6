package crafting

import (
	"sync"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// Inventory counts resources. Counts never go negative: a debit that cannot
// be covered in full changes nothing.
type Inventory struct {
	mu     sync.Mutex
	counts map[shared.ResourceType]int
}

// NewInventory creates an inventory with optional starting counts
func NewInventory(initial map[shared.ResourceType]int) *Inventory {
	inv := &Inventory{counts: make(map[shared.ResourceType]int)}
	inv.Restore(initial)
	return inv
}

// Count returns the amount held of r
func (inv *Inventory) Count(r shared.ResourceType) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.counts[r]
}

// Missing returns the shortfall per resource for costs, empty when affordable
func (inv *Inventory) Missing(costs map[shared.ResourceType]int) map[shared.ResourceType]int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.missingLocked(costs)
}

func (inv *Inventory) missingLocked(costs map[shared.ResourceType]int) map[shared.ResourceType]int {
	missing := make(map[shared.ResourceType]int)
	for r, need := range costs {
		if have := inv.counts[r]; have < need {
			missing[r] = need - have
		}
	}
	return missing
}

// Debit removes costs atomically or fails with InsufficientResourcesError
func (inv *Inventory) Debit(costs map[shared.ResourceType]int) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if missing := inv.missingLocked(costs); len(missing) > 0 {
		byName := make(map[string]int, len(missing))
		for r, n := range missing {
			byName[string(r)] = n
		}
		return shared.NewInsufficientResourcesError(byName)
	}

	for r, n := range costs {
		if n <= 0 {
			continue
		}
		inv.counts[r] -= n
		if inv.counts[r] == 0 {
			delete(inv.counts, r)
		}
	}
	return nil
}

// Credit adds gains. Non-positive amounts are ignored.
func (inv *Inventory) Credit(gains map[shared.ResourceType]int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	for r, n := range gains {
		if n > 0 {
			inv.counts[r] += n
		}
	}
}

// Snapshot copies the current counts
func (inv *Inventory) Snapshot() map[shared.ResourceType]int {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	out := make(map[shared.ResourceType]int, len(inv.counts))
	for r, n := range inv.counts {
		out[r] = n
	}
	return out
}

// Restore replaces the counts, dropping anything not positive
func (inv *Inventory) Restore(counts map[shared.ResourceType]int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	inv.counts = make(map[shared.ResourceType]int, len(counts))
	for r, n := range counts {
		if n > 0 {
			inv.counts[r] = n
		}
	}
}
