package crafting

import (
	"fmt"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// RecipeCatalog is the immutable set of known recipes
type RecipeCatalog struct {
	recipes map[string]Recipe
	order   []string
}

// NewRecipeCatalog validates recipes and indexes them by ID
func NewRecipeCatalog(recipes ...Recipe) (*RecipeCatalog, error) {
	c := &RecipeCatalog{recipes: make(map[string]Recipe, len(recipes))}
	for _, r := range recipes {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.recipes[r.ID]; dup {
			return nil, shared.NewValidationError("recipe.id", fmt.Sprintf("duplicate recipe %s", r.ID))
		}
		c.recipes[r.ID] = r
		c.order = append(c.order, r.ID)
	}
	return c, nil
}

// Get returns the recipe with the given ID
func (c *RecipeCatalog) Get(id string) (Recipe, error) {
	r, ok := c.recipes[id]
	if !ok {
		return Recipe{}, shared.NewNotFoundError("recipe", id)
	}
	return r, nil
}

// All returns every recipe in catalog order
func (c *RecipeCatalog) All() []Recipe {
	out := make([]Recipe, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.recipes[id])
	}
	return out
}

// ForMachine returns the recipes a machine type can run
func (c *RecipeCatalog) ForMachine(t MachineType) []Recipe {
	var out []Recipe
	for _, id := range c.order {
		if r := c.recipes[id]; r.RequiredMachineType == t {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of recipes
func (c *RecipeCatalog) Len() int {
	return len(c.order)
}
