package shared

import "strings"

// ResourceType identifies anything that can sit in an inventory: raw ores
// pulled from nodes as well as crafted products.
type ResourceType string

// Raw resources found in the world
const (
	IronOre   ResourceType = "iron_ore"
	CopperOre ResourceType = "copper_ore"
	Coal      ResourceType = "coal"
	Stone     ResourceType = "stone"
	Quartz    ResourceType = "quartz"
)

// DisplayName turns "iron_ore" into "Iron Ore"
func (r ResourceType) DisplayName() string {
	words := strings.Split(string(r), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func (r ResourceType) String() string {
	return string(r)
}
