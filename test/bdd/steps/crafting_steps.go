package steps

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

type craftingState struct {
	recipes     []crafting.Recipe
	inventory   *crafting.Inventory
	workshop    *crafting.Workshop
	holdTimers  bool
	machineID   string
	lastStart   *crafting.StartResult
	startErr    error
	completions []crafting.CompletionResult
}

// workshop builds the workshop on first use, after the recipe table
func (oc *outpostContext) workshop() (*crafting.Workshop, error) {
	cs := &oc.crafting
	if cs.workshop != nil {
		return cs.workshop, nil
	}
	catalog, err := crafting.NewRecipeCatalog(cs.recipes...)
	if err != nil {
		return nil, err
	}
	cs.workshop = crafting.NewWorkshop(catalog, oc.inventory(), oc.nodes, crafting.Policy{}, oc.scheduler, oc.clock)
	return cs.workshop, nil
}

func (oc *outpostContext) inventory() *crafting.Inventory {
	if oc.crafting.inventory == nil {
		oc.crafting.inventory = crafting.NewInventory(nil)
	}
	return oc.crafting.inventory
}

func (oc *outpostContext) machine() (crafting.MachineStatus, error) {
	w, err := oc.workshop()
	if err != nil {
		return crafting.MachineStatus{}, err
	}
	if oc.crafting.machineID == "" {
		return crafting.MachineStatus{}, fmt.Errorf("no machine has been placed")
	}
	return w.Machine(oc.crafting.machineID)
}

// Given steps

func (oc *outpostContext) theRecipes(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("recipe table needs a header and at least one row")
	}
	header := columnIndex(table.Rows[0])
	for _, row := range table.Rows[1:] {
		seconds, err := strconv.ParseFloat(cell(row, header, "seconds"), 64)
		if err != nil {
			return fmt.Errorf("invalid seconds: %w", err)
		}
		inputs, err := parseQuantities(cell(row, header, "inputs"))
		if err != nil {
			return err
		}
		outputs, err := parseQuantities(cell(row, header, "outputs"))
		if err != nil {
			return err
		}

		id := cell(row, header, "id")
		oc.crafting.recipes = append(oc.crafting.recipes, crafting.Recipe{
			ID:                    id,
			DisplayName:           id,
			Inputs:                toQuantities(inputs),
			Outputs:               toQuantities(outputs),
			ProcessingTimeSeconds: seconds,
			RequiredMachineType:   crafting.MachineType(cell(row, header, "machine")),
			SourceNodeType:        shared.ResourceType(cell(row, header, "source")),
		})
	}
	return nil
}

func (oc *outpostContext) theInventoryHolds(a int, resA string, b int, resB string) error {
	oc.inventory().Credit(map[shared.ResourceType]int{
		shared.ResourceType(resA): a,
		shared.ResourceType(resB): b,
	})
	return nil
}

func (oc *outpostContext) aMachineIsPlaced(machineType string) error {
	w, err := oc.workshop()
	if err != nil {
		return err
	}
	t, err := crafting.ParseMachineType(machineType)
	if err != nil {
		return err
	}
	status, err := w.PlaceMachine(t)
	if err != nil {
		return err
	}
	oc.crafting.machineID = status.MachineID
	return nil
}

func (oc *outpostContext) theMachineIsAssignedToNode(nodeID string) error {
	w, err := oc.workshop()
	if err != nil {
		return err
	}
	return w.AssignNode(oc.crafting.machineID, nodeID)
}

func (oc *outpostContext) completionTimersAreHeldBack() error {
	oc.crafting.holdTimers = true
	return nil
}

// When steps

func (oc *outpostContext) iStartOnTheMachine(recipeID string) error {
	w, err := oc.workshop()
	if err != nil {
		return err
	}
	result, err := w.StartCraft(oc.crafting.machineID, recipeID, 1)
	oc.crafting.startErr = err
	if err == nil {
		oc.crafting.lastStart = &result
	}
	return nil
}

func (oc *outpostContext) secondsPassOnTheCraftingClock(seconds int) error {
	oc.advance(time.Duration(seconds) * time.Second)
	return nil
}

func (oc *outpostContext) theClockMovesToAfterTheStart(seconds int) error {
	if oc.crafting.lastStart == nil {
		return fmt.Errorf("no job was started")
	}
	target := oc.crafting.lastStart.StartedAt.Add(time.Duration(seconds) * time.Second)
	if target.Before(oc.clock.Now()) {
		return fmt.Errorf("clock is already past %s", target)
	}
	oc.advance(target.Sub(oc.clock.Now()))
	return nil
}

func (oc *outpostContext) iCompleteTheMachineTwice() error {
	w, err := oc.workshop()
	if err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		result, err := w.Complete(oc.crafting.machineID)
		if err != nil {
			return err
		}
		oc.crafting.completions = append(oc.crafting.completions, result)
	}
	return nil
}

func (oc *outpostContext) iPauseTheMachine() error {
	w, err := oc.workshop()
	if err != nil {
		return err
	}
	return w.Pause(oc.crafting.machineID)
}

func (oc *outpostContext) iResumeTheMachine() error {
	w, err := oc.workshop()
	if err != nil {
		return err
	}
	return w.Resume(oc.crafting.machineID)
}

func (oc *outpostContext) iCancelTheMachine() error {
	w, err := oc.workshop()
	if err != nil {
		return err
	}
	_, err = w.Cancel(oc.crafting.machineID)
	return err
}

// Then steps

func (oc *outpostContext) theStartShouldFailWith(kind string) error {
	err := oc.crafting.startErr
	if err == nil {
		return fmt.Errorf("expected the start to fail with %s, but it succeeded", kind)
	}

	var matched bool
	switch kind {
	case "InsufficientResources":
		var target *shared.InsufficientResourcesError
		matched = errors.As(err, &target)
	case "NodeExhausted":
		var target *shared.NodeExhaustedError
		matched = errors.As(err, &target)
	case "NoNodeAssigned":
		var target *shared.NoNodeAssignedError
		matched = errors.As(err, &target)
	case "InvalidRecipeForMachine":
		var target *shared.InvalidRecipeForMachineError
		matched = errors.As(err, &target)
	case "MachineBusy":
		var target *shared.MachineBusyError
		matched = errors.As(err, &target)
	default:
		return fmt.Errorf("unknown error kind: %s", kind)
	}

	if !matched {
		return fmt.Errorf("expected %s, got %T: %v", kind, err, err)
	}
	return nil
}

func (oc *outpostContext) theInventoryShouldHold(expected int, resource string) error {
	if got := oc.inventory().Count(shared.ResourceType(resource)); got != expected {
		return fmt.Errorf("expected %d %s in inventory, got %d", expected, resource, got)
	}
	return nil
}

func (oc *outpostContext) theMachineShouldBe(state string) error {
	status, err := oc.machine()
	if err != nil {
		return err
	}
	if string(status.State) != state {
		return fmt.Errorf("expected machine %s to be %s, got %s", status.MachineID, state, status.State)
	}
	return nil
}

func (oc *outpostContext) theMachineProgressShouldBe(percent int) error {
	status, err := oc.machine()
	if err != nil {
		return err
	}
	if got := int(math.Round(status.Progress * 100)); got != percent {
		return fmt.Errorf("expected progress %d%%, got %d%%", percent, got)
	}
	return nil
}

func (oc *outpostContext) theFirstCompletionShouldHaveCreditedOutputs() error {
	if len(oc.crafting.completions) < 1 {
		return fmt.Errorf("no completion was attempted")
	}
	first := oc.crafting.completions[0]
	if !first.Completed || len(first.Credited) == 0 {
		return fmt.Errorf("expected the first completion to credit outputs, got %+v", first)
	}
	return nil
}

func (oc *outpostContext) theSecondCompletionShouldHaveCreditedNothing() error {
	if len(oc.crafting.completions) < 2 {
		return fmt.Errorf("expected two completion attempts, got %d", len(oc.crafting.completions))
	}
	second := oc.crafting.completions[1]
	if second.Completed || len(second.Credited) != 0 {
		return fmt.Errorf("expected the second completion to be a no-op, got %+v", second)
	}
	return nil
}

func toQuantities(m map[shared.ResourceType]int) []crafting.Quantity {
	out := make([]crafting.Quantity, 0, len(m))
	for r, n := range m {
		out = append(out, crafting.Quantity{Resource: r, Amount: n})
	}
	return out
}

func registerCraftingSteps(ctx *godog.ScenarioContext, oc *outpostContext) {
	ctx.Step(`^the recipes:$`, oc.theRecipes)
	ctx.Step(`^the inventory holds (\d+) "([^"]*)" and (\d+) "([^"]*)"$`, oc.theInventoryHolds)
	ctx.Step(`^a "([^"]*)" machine is placed$`, oc.aMachineIsPlaced)
	ctx.Step(`^the machine is assigned to node "([^"]*)"$`, oc.theMachineIsAssignedToNode)
	ctx.Step(`^completion timers are held back$`, oc.completionTimersAreHeldBack)

	ctx.Step(`^I start "([^"]*)" on the machine$`, oc.iStartOnTheMachine)
	ctx.Step(`^(\d+) seconds pass on the crafting clock$`, oc.secondsPassOnTheCraftingClock)
	ctx.Step(`^the clock moves to (\d+) seconds after the start$`, oc.theClockMovesToAfterTheStart)
	ctx.Step(`^I complete the machine twice$`, oc.iCompleteTheMachineTwice)
	ctx.Step(`^I pause the machine$`, oc.iPauseTheMachine)
	ctx.Step(`^I resume the machine$`, oc.iResumeTheMachine)
	ctx.Step(`^I cancel the machine$`, oc.iCancelTheMachine)

	ctx.Step(`^the start should fail with "([^"]*)"$`, oc.theStartShouldFailWith)
	ctx.Step(`^the inventory should hold (\d+) "([^"]*)"$`, oc.theInventoryShouldHold)
	ctx.Step(`^the machine should be "([^"]*)"$`, oc.theMachineShouldBe)
	ctx.Step(`^the machine progress should be (\d+) percent$`, oc.theMachineProgressShouldBe)
	ctx.Step(`^the first completion should have credited outputs$`, oc.theFirstCompletionShouldHaveCreditedOutputs)
	ctx.Step(`^the second completion should have credited nothing$`, oc.theSecondCompletionShouldHaveCreditedNothing)
}
