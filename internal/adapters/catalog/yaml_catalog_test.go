package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/outpost-go/internal/adapters/catalog"
	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

func TestDefault_IsValidAndCoversEveryNodeType(t *testing.T) {
	// Act
	c, err := catalog.Default()

	// Assert
	require.NoError(t, err)
	covered := map[shared.ResourceType]bool{}
	for _, r := range c.ForMachine(crafting.MachineMiner) {
		covered[r.SourceNodeType] = true
	}
	for _, nodeType := range world.NodeTypes() {
		assert.True(t, covered[nodeType], "no extraction recipe for %s", nodeType)
	}

	steel, err := c.Get("smelt_steel")
	require.NoError(t, err)
	assert.Equal(t, map[shared.ResourceType]int{shared.IronOre: 5, shared.Coal: 2}, steel.InputsFor(1))
	assert.Equal(t, crafting.MachineSmelter, steel.RequiredMachineType)
}

func TestParse_RejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "recipes: []\n"},
		{"bad yaml", "recipes: [\n"},
		{"unknown machine", "recipes:\n  - {id: a, machine: OVEN, processing_seconds: 1, outputs: [{resource: x, amount: 1}]}\n"},
		{"zero time", "recipes:\n  - {id: a, machine: SMELTER, processing_seconds: 0, outputs: [{resource: x, amount: 1}]}\n"},
		{"extractor with inputs", "recipes:\n  - {id: a, machine: MINER, processing_seconds: 1, inputs: [{resource: coal, amount: 1}], outputs: [{resource: x, amount: 1}]}\n"},
		{"duplicate id", "recipes:\n  - {id: a, machine: SMELTER, processing_seconds: 1, outputs: [{resource: x, amount: 1}]}\n  - {id: a, machine: SMELTER, processing_seconds: 1, outputs: [{resource: x, amount: 1}]}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ReadsFileOverride(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "recipes.yaml")
	body := "recipes:\n  - id: press\n    machine: assembler\n    processing_seconds: 2.5\n    inputs: [{resource: stone, amount: 1}]\n    outputs: [{resource: tile, amount: 2}]\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	// Act
	c, err := catalog.Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	r, err := c.Get("press")
	require.NoError(t, err)
	assert.Equal(t, "press", r.DisplayName)
	assert.Equal(t, crafting.MachineAssembler, r.RequiredMachineType)
}
