package world

import (
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3
)

// Options tunes generation. Two generators agree tile-for-tile only when
// both seed and options match.
type Options struct {
	// DensityPermille is the share of tiles carrying a node, out of 1000
	DensityPermille int
	MinCapacity     int
	MaxCapacity     int
	// NoiseScale converts tile units to noise units. Perlin noise is zero on
	// integer lattice points, so this must not be a whole number.
	NoiseScale float64
}

// DefaultOptions targets roughly 15% node density
func DefaultOptions() Options {
	return Options{
		DensityPermille: 150,
		MinCapacity:     20,
		MaxCapacity:     200,
		NoiseScale:      0.073,
	}
}

// Tile is everything the generator knows about one coordinate
type Tile struct {
	Position  shared.Position
	Terrain   TerrainType
	Elevation float64
	Node      *ResourceNode
}

// Generator is a pure function of (seed, x, y). It holds only read-only
// noise tables, so one instance may be shared across goroutines.
type Generator struct {
	seed  int64
	opts  Options
	noise *perlin.Perlin
}

// NewGenerator builds the noise tables for seed
func NewGenerator(seed int64, opts Options) *Generator {
	if opts.DensityPermille < 0 {
		opts.DensityPermille = 0
	}
	if opts.DensityPermille > 1000 {
		opts.DensityPermille = 1000
	}
	if opts.MinCapacity < 1 {
		opts.MinCapacity = 1
	}
	if opts.MaxCapacity < opts.MinCapacity {
		opts.MaxCapacity = opts.MinCapacity
	}
	if opts.NoiseScale <= 0 {
		opts.NoiseScale = DefaultOptions().NoiseScale
	}

	return &Generator{
		seed:  seed,
		opts:  opts,
		noise: perlin.NewPerlinRandSource(noiseAlpha, noiseBeta, noiseOctaves, rand.NewSource(seed)),
	}
}

// Generate is the one-shot form of Generator.TileAt with default options
func Generate(seed, x, y int64) Tile {
	return NewGenerator(seed, DefaultOptions()).TileAt(x, y)
}

// Seed returns the world seed
func (g *Generator) Seed() int64 {
	return g.seed
}

// Options returns the effective generation options
func (g *Generator) Options() Options {
	return g.opts
}

// TileAt classifies the tile at (x, y) and attaches its node, if any
func (g *Generator) TileAt(x, y int64) Tile {
	pos := shared.NewPosition(x, y)
	elevation := g.noise.Noise2D(float64(x)*g.opts.NoiseScale, float64(y)*g.opts.NoiseScale)

	tile := Tile{
		Position:  pos,
		Terrain:   classifyElevation(elevation),
		Elevation: elevation,
	}

	if node, ok := g.NodeAt(pos); ok {
		tile.Node = &node
	}

	return tile
}

// NodeAt returns the node generated on pos. Node presence depends only on
// the hash, never on terrain, so it can be answered without sampling noise.
func (g *Generator) NodeAt(pos shared.Position) (ResourceNode, bool) {
	if hash2(g.seed, saltPresence, pos.X, pos.Y)%1000 >= uint64(g.opts.DensityPermille) {
		return ResourceNode{}, false
	}

	resource := pickNodeType(hash2(g.seed, saltType, pos.X, pos.Y))

	span := uint64(g.opts.MaxCapacity-g.opts.MinCapacity) + 1
	capacity := g.opts.MinCapacity + int(hash2(g.seed, saltCapacity, pos.X, pos.Y)%span)

	return ResourceNode{
		ID:              NodeID(pos),
		Type:            resource,
		DisplayName:     resource.DisplayName() + " Deposit",
		Position:        pos,
		Capacity:        capacity,
		RemainingAmount: capacity,
	}, true
}
