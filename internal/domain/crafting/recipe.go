package crafting

import (
	"fmt"
	"math"
	"time"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// Quantity is an amount of one resource
type Quantity struct {
	Resource shared.ResourceType `json:"resource" yaml:"resource"`
	Amount   int                 `json:"amount" yaml:"amount"`
}

// Recipe converts inputs into outputs on one machine type. Recipes are
// immutable once the catalog is built.
type Recipe struct {
	ID                    string
	DisplayName           string
	Inputs                []Quantity
	Outputs               []Quantity
	ProcessingTimeSeconds float64
	RequiredMachineType   MachineType
	// SourceNodeType restricts extraction recipes to nodes of one resource.
	// Empty means any node.
	SourceNodeType shared.ResourceType
}

// Validate checks the recipe is internally consistent
func (r Recipe) Validate() error {
	if r.ID == "" {
		return shared.NewValidationError("recipe.id", "cannot be empty")
	}
	if r.ProcessingTimeSeconds <= 0 {
		return shared.NewValidationError("recipe.processing_time", fmt.Sprintf("recipe %s must take positive time", r.ID))
	}
	kind, err := r.RequiredMachineType.Kind()
	if err != nil {
		return err
	}
	if len(r.Outputs) == 0 {
		return shared.NewValidationError("recipe.outputs", fmt.Sprintf("recipe %s produces nothing", r.ID))
	}
	if kind == KindExtractor && len(r.Inputs) > 0 {
		return shared.NewValidationError("recipe.inputs", fmt.Sprintf("extraction recipe %s cannot consume inputs", r.ID))
	}
	for _, q := range append(append([]Quantity{}, r.Inputs...), r.Outputs...) {
		if q.Resource == "" || q.Amount <= 0 {
			return shared.NewValidationError("recipe.quantity", fmt.Sprintf("recipe %s has an invalid quantity %+v", r.ID, q))
		}
	}
	return nil
}

const (
	// MaxJobDuration bounds one job; time.Duration itself stops at ~292 years
	MaxJobDuration = 10 * 365 * 24 * time.Hour
	// MaxJobUnits bounds the units one job may consume or produce
	MaxJobUnits = math.MaxInt32
)

// CheckBatch rejects batch counts whose scaled duration or quantities fall
// outside what a single job can represent
func (r Recipe) CheckBatch(batch int) error {
	if batch < 1 {
		return shared.NewValidationError("batch", "must be at least 1")
	}
	if r.ProcessingTimeSeconds*float64(batch) > MaxJobDuration.Seconds() {
		return shared.NewValidationError("batch", fmt.Sprintf("%d runs of %s would take longer than %s", batch, r.ID, MaxJobDuration))
	}
	if r.Duration(batch) <= 0 {
		return shared.NewValidationError("batch", fmt.Sprintf("%d runs of %s have no duration", batch, r.ID))
	}
	if !fitsUnits(r.Inputs, batch) || !fitsUnits(r.Outputs, batch) {
		return shared.NewValidationError("batch", fmt.Sprintf("%d runs of %s exceed %d units", batch, r.ID, MaxJobUnits))
	}
	return nil
}

// fitsUnits reports whether the scaled total of quantities stays within
// MaxJobUnits, without overflowing on the way
func fitsUnits(quantities []Quantity, batch int) bool {
	total := 0
	for _, q := range quantities {
		if q.Amount > (MaxJobUnits-total)/batch {
			return false
		}
		total += q.Amount * batch
	}
	return true
}

// Duration is the processing time for batch runs. Duration scales
// linearly with the batch count.
func (r Recipe) Duration(batch int) time.Duration {
	return time.Duration(r.ProcessingTimeSeconds * float64(batch) * float64(time.Second))
}

// InputsFor returns the inputs consumed by batch runs
func (r Recipe) InputsFor(batch int) map[shared.ResourceType]int {
	return scale(r.Inputs, batch)
}

// OutputsFor returns the outputs produced by batch runs
func (r Recipe) OutputsFor(batch int) map[shared.ResourceType]int {
	return scale(r.Outputs, batch)
}

// OutputUnits is the total number of units produced by batch runs
func (r Recipe) OutputUnits(batch int) int {
	total := 0
	for _, q := range r.Outputs {
		total += q.Amount * batch
	}
	return total
}

func scale(quantities []Quantity, batch int) map[shared.ResourceType]int {
	out := make(map[shared.ResourceType]int, len(quantities))
	for _, q := range quantities {
		out[q.Resource] += q.Amount * batch
	}
	return out
}
