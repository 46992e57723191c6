package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

//go:embed default_recipes.yaml
var defaultRecipes []byte

// recipeDocument maps the YAML catalog file
type recipeDocument struct {
	Recipes []recipeEntry `yaml:"recipes"`
}

type recipeEntry struct {
	ID                string              `yaml:"id"`
	Name              string              `yaml:"name"`
	Machine           string              `yaml:"machine"`
	ProcessingSeconds float64             `yaml:"processing_seconds"`
	SourceNodeType    string              `yaml:"source_node_type"`
	Inputs            []crafting.Quantity `yaml:"inputs"`
	Outputs           []crafting.Quantity `yaml:"outputs"`
}

// Default returns the built-in catalog
func Default() (*crafting.RecipeCatalog, error) {
	return Parse(defaultRecipes)
}

// Load reads a catalog file. An empty path gives the built-in catalog.
func Load(path string) (*crafting.RecipeCatalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*crafting.RecipeCatalog, error) {
	var doc recipeDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse recipe catalog YAML: %w", err)
	}
	if len(doc.Recipes) == 0 {
		return nil, shared.NewValidationError("recipes", "catalog is empty")
	}

	recipes := make([]crafting.Recipe, 0, len(doc.Recipes))
	for _, e := range doc.Recipes {
		machineType, err := crafting.ParseMachineType(e.Machine)
		if err != nil {
			return nil, fmt.Errorf("recipe %s: %w", e.ID, err)
		}
		name := e.Name
		if name == "" {
			name = e.ID
		}
		recipes = append(recipes, crafting.Recipe{
			ID:                    e.ID,
			DisplayName:           name,
			Inputs:                e.Inputs,
			Outputs:               e.Outputs,
			ProcessingTimeSeconds: e.ProcessingSeconds,
			RequiredMachineType:   machineType,
			SourceNodeType:        shared.ResourceType(e.SourceNodeType),
		})
	}
	return crafting.NewRecipeCatalog(recipes...)
}
