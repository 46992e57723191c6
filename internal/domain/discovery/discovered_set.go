package discovery

import "sort"

// DiscoveredSet records which nodes the player has found. It only grows:
// there is deliberately no way to remove an entry.
type DiscoveredSet struct {
	ids map[string]struct{}
}

// NewDiscoveredSet creates a set seeded with ids
func NewDiscoveredSet(ids ...string) *DiscoveredSet {
	s := &DiscoveredSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add marks id discovered and reports whether it was new
func (s *DiscoveredSet) Add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id has been discovered
func (s *DiscoveredSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of discovered nodes
func (s *DiscoveredSet) Len() int {
	return len(s.ids)
}

// IDs returns the discovered ids in sorted order
func (s *DiscoveredSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
