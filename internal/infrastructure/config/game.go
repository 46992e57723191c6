package config

import "time"

// WorldConfig controls world generation
type WorldConfig struct {
	// Seed pins the world seed. Zero means use the saved seed, or generate
	// and save one on first start.
	Seed int64 `mapstructure:"seed"`

	// Side length of a chunk in tiles
	ChunkSize int `mapstructure:"chunk_size" validate:"min=1,max=256"`

	// Chunks loaded around the player in each direction
	ViewRadius int `mapstructure:"view_radius" validate:"min=0,max=16"`

	// Resource node density in tiles per thousand
	NodeDensityPermille int `mapstructure:"node_density_permille" validate:"min=1,max=1000"`

	// Node capacity range, inclusive
	MinNodeCapacity int `mapstructure:"min_node_capacity" validate:"min=1"`
	MaxNodeCapacity int `mapstructure:"max_node_capacity" validate:"gtefield=MinNodeCapacity"`
}

// DiscoveryConfig controls the discovery engine
type DiscoveryConfig struct {
	// Discovery radius in tiles
	Radius int `mapstructure:"radius" validate:"min=0,max=64"`

	// Debounce before a discovery batch is flushed
	Debounce time.Duration `mapstructure:"debounce" validate:"min=0"`

	// What happens to a pending batch on shutdown: flush or drop
	ShutdownPolicy string `mapstructure:"shutdown_policy" validate:"required,oneof=flush drop"`
}

// CraftingConfig controls the workshop
type CraftingConfig struct {
	// Return debited inputs when a job is cancelled
	CancelRefund bool `mapstructure:"cancel_refund"`

	// Optional YAML recipe catalog; empty uses the built-in catalog
	RecipeCatalog string `mapstructure:"recipe_catalog" validate:"omitempty,file"`

	// Completion sweep interval
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"required,gt=0"`
}

// SaveConfig controls persistence
type SaveConfig struct {
	// Save profile name; keys are namespaced outpost/<profile>/...
	Profile string `mapstructure:"profile" validate:"profile"`

	// Full save interval for the daemon
	AutosaveInterval time.Duration `mapstructure:"autosave_interval" validate:"required,gt=0"`

	// Minimum spacing between discovery saves
	MinSaveInterval time.Duration `mapstructure:"min_save_interval" validate:"min=0"`

	// Consecutive failures that open the save circuit breaker
	BreakerMaxFailures int `mapstructure:"breaker_max_failures" validate:"min=1"`

	// How long the breaker stays open
	BreakerTimeout time.Duration `mapstructure:"breaker_timeout" validate:"required"`
}
