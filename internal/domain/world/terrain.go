package world

// TerrainType is the display classification of a tile
type TerrainType string

const (
	TerrainWater    TerrainType = "WATER"
	TerrainSand     TerrainType = "SAND"
	TerrainGrass    TerrainType = "GRASS"
	TerrainForest   TerrainType = "FOREST"
	TerrainRock     TerrainType = "ROCK"
	TerrainMountain TerrainType = "MOUNTAIN"
)

// classifyElevation maps a noise sample in roughly [-1, 1] to a terrain band
func classifyElevation(e float64) TerrainType {
	switch {
	case e < -0.30:
		return TerrainWater
	case e < -0.20:
		return TerrainSand
	case e < 0.10:
		return TerrainGrass
	case e < 0.25:
		return TerrainForest
	case e < 0.40:
		return TerrainRock
	default:
		return TerrainMountain
	}
}

// Glyph is the single-character map symbol used by the CLI
func (t TerrainType) Glyph() rune {
	switch t {
	case TerrainWater:
		return '~'
	case TerrainSand:
		return '.'
	case TerrainGrass:
		return ','
	case TerrainForest:
		return '"'
	case TerrainRock:
		return '^'
	case TerrainMountain:
		return 'A'
	default:
		return '?'
	}
}
