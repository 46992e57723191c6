package savegame

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
	"github.com/andrescamacho/outpost-go/internal/domain/progression"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// GameState is everything a save holds. The world itself is regenerated
// from the seed; only node depletion is stored.
type GameState struct {
	WorldSeed      int64
	HasWorldSeed   bool
	PlayerPosition shared.Position
	Discovered     []string
	Machines       []crafting.MachineSnapshot
	CraftingQueues map[string][]crafting.CraftRequest
	Inventory      map[shared.ResourceType]int
	NodeAmounts    map[string]int
	Milestones     map[progression.MilestoneID]time.Time
	ToastFlags     map[progression.MilestoneID]bool
	LastSavedAt    *time.Time
}

// DecodeIssue records a stored value that could not be read. The entity
// falls back to its default.
type DecodeIssue struct {
	Key   string
	Cause error
}

func (i DecodeIssue) Error() string {
	return fmt.Sprintf("corrupt value under %s: %v", i.Key, i.Cause)
}

// Encode serializes every entity of the state to JSON values keyed for the
// profile
func (s GameState) Encode(keys Keys, savedAt time.Time) (map[string]string, error) {
	discovered := append([]string(nil), s.Discovered...)
	sort.Strings(discovered)

	values := map[Entity]any{
		EntityPlayerPosition:  s.PlayerPosition,
		EntityDiscoveredNodes: discovered,
		EntityMachines:        nonNilSlice(s.Machines),
		EntityCraftingQueue:   nonNilMap(s.CraftingQueues),
		EntityInventory:       nonNilMap(s.Inventory),
		EntityNodeAmounts:     nonNilMap(s.NodeAmounts),
		EntityMilestones:      nonNilMap(s.Milestones),
		EntityToastFlags:      nonNilMap(s.ToastFlags),
		EntityLastSavedAt:     savedAt.UTC(),
	}
	if s.HasWorldSeed {
		values[EntityWorldSeed] = s.WorldSeed
	}

	out := make(map[string]string, len(values))
	for entity, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", entity, err)
		}
		out[keys.Key(entity)] = string(raw)
	}
	return out, nil
}

// Decode reads whatever entities are present. Missing keys leave defaults;
// corrupt values leave defaults and are reported as issues.
func Decode(keys Keys, stored map[string]string) (GameState, []DecodeIssue) {
	var (
		state  = DefaultState()
		issues []DecodeIssue
	)

	read := func(entity Entity, target any) bool {
		key := keys.Key(entity)
		raw, ok := stored[key]
		if !ok {
			return false
		}
		if err := json.Unmarshal([]byte(raw), target); err != nil {
			issues = append(issues, DecodeIssue{Key: key, Cause: err})
			return false
		}
		return true
	}

	var seed int64
	if read(EntityWorldSeed, &seed) {
		state.WorldSeed = seed
		state.HasWorldSeed = true
	}

	var pos shared.Position
	if read(EntityPlayerPosition, &pos) {
		state.PlayerPosition = pos
	}

	var discovered []string
	if read(EntityDiscoveredNodes, &discovered) {
		state.Discovered = discovered
	}

	var machines []crafting.MachineSnapshot
	if read(EntityMachines, &machines) {
		state.Machines = machines
	}

	var queues map[string][]crafting.CraftRequest
	if read(EntityCraftingQueue, &queues) && queues != nil {
		state.CraftingQueues = queues
	}

	var inventory map[shared.ResourceType]int
	if read(EntityInventory, &inventory) && inventory != nil {
		state.Inventory = inventory
	}

	var amounts map[string]int
	if read(EntityNodeAmounts, &amounts) && amounts != nil {
		state.NodeAmounts = amounts
	}

	var milestones map[progression.MilestoneID]time.Time
	if read(EntityMilestones, &milestones) && milestones != nil {
		state.Milestones = milestones
	}

	var toasts map[progression.MilestoneID]bool
	if read(EntityToastFlags, &toasts) && toasts != nil {
		state.ToastFlags = toasts
	}

	var savedAt time.Time
	if read(EntityLastSavedAt, &savedAt) {
		state.LastSavedAt = &savedAt
	}

	return state, issues
}

// DefaultState is a fresh game: player at the origin, nothing discovered,
// empty inventory
func DefaultState() GameState {
	return GameState{
		PlayerPosition: shared.NewPosition(0, 0),
		CraftingQueues: make(map[string][]crafting.CraftRequest),
		Inventory:      make(map[shared.ResourceType]int),
		NodeAmounts:    make(map[string]int),
		Milestones:     make(map[progression.MilestoneID]time.Time),
		ToastFlags:     make(map[progression.MilestoneID]bool),
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nonNilMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}
