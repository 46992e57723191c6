package world

import "sync"

// DepletionLedger records how much is left in nodes that have been mined.
// Generated nodes start full; only touched nodes get an entry, so the
// ledger is the entire persisted footprint of the world.
type DepletionLedger struct {
	mu        sync.RWMutex
	remaining map[string]int
}

// NewDepletionLedger creates an empty ledger
func NewDepletionLedger() *DepletionLedger {
	return &DepletionLedger{remaining: make(map[string]int)}
}

// Apply overlays the recorded remaining amount onto a freshly generated node
func (l *DepletionLedger) Apply(node ResourceNode) ResourceNode {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if left, ok := l.remaining[node.ID]; ok {
		node.RemainingAmount = left
	}
	return node
}

// Deplete removes qty from the node, clamping at zero, and returns what is left
func (l *DepletionLedger) Deplete(node ResourceNode, qty int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	left, ok := l.remaining[node.ID]
	if !ok {
		left = node.Capacity
	}

	if qty > 0 {
		left -= qty
	}
	if left < 0 {
		left = 0
	}

	l.remaining[node.ID] = left
	return left
}

// Snapshot copies the ledger for persistence
func (l *DepletionLedger) Snapshot() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]int, len(l.remaining))
	for id, left := range l.remaining {
		out[id] = left
	}
	return out
}

// Restore replaces the ledger contents. Negative amounts are clamped.
func (l *DepletionLedger) Restore(amounts map[string]int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.remaining = make(map[string]int, len(amounts))
	for id, left := range amounts {
		if left < 0 {
			left = 0
		}
		l.remaining[id] = left
	}
}
