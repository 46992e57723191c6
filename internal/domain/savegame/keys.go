package savegame

import (
	"strings"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// KeyPrefix namespaces every key written by the game
const KeyPrefix = "outpost"

// Entity names one persisted value
type Entity string

const (
	EntityMilestones      Entity = "milestones"
	EntityPlayerPosition  Entity = "player_position"
	EntityDiscoveredNodes Entity = "discovered_nodes"
	EntityMachines        Entity = "machines"
	EntityInventory       Entity = "inventory"
	EntityNodeAmounts     Entity = "node_amounts"
	EntityWorldSeed       Entity = "world_seed"
	EntityToastFlags      Entity = "toast_flags"
	EntityCraftingQueue   Entity = "crafting_queue"
	EntityLastSavedAt     Entity = "last_saved_at"
)

// Entities lists every persisted entity
func Entities() []Entity {
	return []Entity{
		EntityMilestones,
		EntityPlayerPosition,
		EntityDiscoveredNodes,
		EntityMachines,
		EntityInventory,
		EntityNodeAmounts,
		EntityWorldSeed,
		EntityToastFlags,
		EntityCraftingQueue,
		EntityLastSavedAt,
	}
}

// Keys builds the keys of one save profile: outpost/<profile>/<entity>
type Keys struct {
	profile string
}

// NewKeys validates the profile name and returns its key set
func NewKeys(profile string) (Keys, error) {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return Keys{}, shared.NewValidationError("save.profile", "cannot be empty")
	}
	if strings.Contains(profile, "/") {
		return Keys{}, shared.NewValidationError("save.profile", "cannot contain '/'")
	}
	return Keys{profile: profile}, nil
}

func (k Keys) Profile() string { return k.profile }

// Key returns the key of one entity
func (k Keys) Key(e Entity) string {
	return k.Prefix() + string(e)
}

// Prefix is the common prefix of every key in the profile
func (k Keys) Prefix() string {
	return KeyPrefix + "/" + k.profile + "/"
}

// All returns the key of every entity
func (k Keys) All() []string {
	entities := Entities()
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, k.Key(e))
	}
	return out
}

// Owns reports whether key belongs to this profile
func (k Keys) Owns(key string) bool {
	return strings.HasPrefix(key, k.Prefix())
}
