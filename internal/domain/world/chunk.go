package world

import (
	"fmt"
	"iter"
	"sync"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/pkg/utils"
)

// DefaultChunkSize is the side length of a chunk in tiles
const DefaultChunkSize = 16

// ChunkCoord addresses a square block of tiles
type ChunkCoord struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("[%d,%d]", c.X, c.Y)
}

// WorldChunk is a regenerable slice of the world; it is never persisted
type WorldChunk struct {
	Coord ChunkCoord
	Nodes []ResourceNode
}

// ChunkOf returns the chunk containing pos, flooring toward negative infinity
func ChunkOf(pos shared.Position, side int) ChunkCoord {
	s := int64(side)
	return ChunkCoord{X: utils.FloorDiv(pos.X, s), Y: utils.FloorDiv(pos.Y, s)}
}

// ChunkIndexer partitions generator output into chunks
type ChunkIndexer struct {
	gen    *Generator
	side   int
	ledger *DepletionLedger

	mu         sync.Mutex
	cache      map[ChunkCoord][]ResourceNode
	cacheLimit int
}

// IndexerOption configures a ChunkIndexer
type IndexerOption func(*ChunkIndexer)

// WithChunkCache memoizes up to limit chunks of generated nodes. The cache
// holds generator output only; depletion is applied on every read.
func WithChunkCache(limit int) IndexerOption {
	return func(ci *ChunkIndexer) {
		if limit > 0 {
			ci.cacheLimit = limit
			ci.cache = make(map[ChunkCoord][]ResourceNode, limit)
		}
	}
}

// WithLedger overlays remaining amounts from ledger onto generated nodes
func WithLedger(ledger *DepletionLedger) IndexerOption {
	return func(ci *ChunkIndexer) {
		ci.ledger = ledger
	}
}

// NewChunkIndexer creates an indexer over gen with chunks of side tiles
func NewChunkIndexer(gen *Generator, side int, opts ...IndexerOption) *ChunkIndexer {
	if side <= 0 {
		side = DefaultChunkSize
	}
	ci := &ChunkIndexer{gen: gen, side: side}
	for _, opt := range opts {
		opt(ci)
	}
	return ci
}

// ChunkSize returns the chunk side length in tiles
func (ci *ChunkIndexer) ChunkSize() int {
	return ci.side
}

// Generator returns the underlying generator
func (ci *ChunkIndexer) Generator() *Generator {
	return ci.gen
}

// ChunkOf returns the chunk containing pos
func (ci *ChunkIndexer) ChunkOf(pos shared.Position) ChunkCoord {
	return ChunkOf(pos, ci.side)
}

// ChunksVisibleAround lists every chunk within Chebyshev distance radius of
// center, row by row from the top-left corner.
func (ci *ChunkIndexer) ChunksVisibleAround(center ChunkCoord, radius int) []ChunkCoord {
	if radius < 0 {
		return nil
	}
	r := int64(radius)
	coords := make([]ChunkCoord, 0, (2*radius+1)*(2*radius+1))
	for y := center.Y - r; y <= center.Y+r; y++ {
		for x := center.X - r; x <= center.X+r; x++ {
			coords = append(coords, ChunkCoord{X: x, Y: y})
		}
	}
	return coords
}

// Nodes lazily walks the tiles of a chunk in row-major order and yields
// each generated node. The sequence can be ranged over any number of times.
func (ci *ChunkIndexer) Nodes(coord ChunkCoord) iter.Seq[ResourceNode] {
	return func(yield func(ResourceNode) bool) {
		s := int64(ci.side)
		originX, originY := coord.X*s, coord.Y*s
		for y := originY; y < originY+s; y++ {
			for x := originX; x < originX+s; x++ {
				node, ok := ci.gen.NodeAt(shared.NewPosition(x, y))
				if !ok {
					continue
				}
				if !yield(ci.overlay(node)) {
					return
				}
			}
		}
	}
}

// NodesInChunk returns every node of the chunk with depletion applied
func (ci *ChunkIndexer) NodesInChunk(coord ChunkCoord) []ResourceNode {
	generated := ci.generated(coord)
	out := make([]ResourceNode, len(generated))
	for i, node := range generated {
		out[i] = ci.overlay(node)
	}
	return out
}

// Chunk returns the chunk with its nodes
func (ci *ChunkIndexer) Chunk(coord ChunkCoord) WorldChunk {
	return WorldChunk{Coord: coord, Nodes: ci.NodesInChunk(coord)}
}

// NodesWithin returns the nodes whose tile lies within radius of center
func (ci *ChunkIndexer) NodesWithin(center shared.Position, radius int) []ResourceNode {
	if radius < 0 {
		return nil
	}
	r := int64(radius)
	minChunk := ChunkOf(shared.NewPosition(center.X-r, center.Y-r), ci.side)
	maxChunk := ChunkOf(shared.NewPosition(center.X+r, center.Y+r), ci.side)

	var found []ResourceNode
	for cy := minChunk.Y; cy <= maxChunk.Y; cy++ {
		for cx := minChunk.X; cx <= maxChunk.X; cx++ {
			for _, node := range ci.generated(ChunkCoord{X: cx, Y: cy}) {
				if center.WithinRadius(node.Position, radius) {
					found = append(found, ci.overlay(node))
				}
			}
		}
	}
	return found
}

// generated returns raw generator output for a chunk, memoized if enabled
func (ci *ChunkIndexer) generated(coord ChunkCoord) []ResourceNode {
	if ci.cacheLimit > 0 {
		ci.mu.Lock()
		nodes, ok := ci.cache[coord]
		ci.mu.Unlock()
		if ok {
			return nodes
		}
	}

	var nodes []ResourceNode
	s := int64(ci.side)
	originX, originY := coord.X*s, coord.Y*s
	for y := originY; y < originY+s; y++ {
		for x := originX; x < originX+s; x++ {
			if node, ok := ci.gen.NodeAt(shared.NewPosition(x, y)); ok {
				nodes = append(nodes, node)
			}
		}
	}

	if ci.cacheLimit > 0 {
		ci.mu.Lock()
		if len(ci.cache) >= ci.cacheLimit {
			clear(ci.cache)
		}
		ci.cache[coord] = nodes
		ci.mu.Unlock()
	}

	return nodes
}

func (ci *ChunkIndexer) overlay(node ResourceNode) ResourceNode {
	if ci.ledger == nil {
		return node
	}
	return ci.ledger.Apply(node)
}
