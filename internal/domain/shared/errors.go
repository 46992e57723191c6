package shared

import (
	"fmt"
	"sort"
	"strings"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Machine state errors

type InvalidTransitionError struct {
	*DomainError
	MachineID string
	From      string
	To        string
}

func NewInvalidTransitionError(machineID, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{
		DomainError: NewDomainError(fmt.Sprintf("machine %s cannot move from %s to %s", machineID, from, to)),
		MachineID:   machineID,
		From:        from,
		To:          to,
	}
}

// MachineBusyError is the InvalidTransition raised when a job is requested
// on a machine that already has one
type MachineBusyError struct {
	*InvalidTransitionError
}

func NewMachineBusyError(machineID, state string) *MachineBusyError {
	err := NewInvalidTransitionError(machineID, state, "PROCESSING")
	err.Message = fmt.Sprintf("machine %s is busy (%s)", machineID, state)
	return &MachineBusyError{InvalidTransitionError: err}
}

// Unwrap exposes the InvalidTransitionError to errors.As
func (e *MachineBusyError) Unwrap() error {
	return e.InvalidTransitionError
}

// Crafting precondition errors

type InsufficientResourcesError struct {
	*DomainError
	// Missing maps resource type to the quantity that could not be covered
	Missing map[string]int
}

func NewInsufficientResourcesError(missing map[string]int) *InsufficientResourcesError {
	keys := make([]string, 0, len(missing))
	for k := range missing {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s x%d", k, missing[k]))
	}

	return &InsufficientResourcesError{
		DomainError: NewDomainError("insufficient resources: missing " + strings.Join(parts, ", ")),
		Missing:     missing,
	}
}

type InvalidRecipeForMachineError struct {
	*DomainError
	RecipeID     string
	MachineType  string
	RequiredType string
}

func NewInvalidRecipeForMachineError(recipeID, machineType, requiredType string) *InvalidRecipeForMachineError {
	return &InvalidRecipeForMachineError{
		DomainError: NewDomainError(fmt.Sprintf(
			"recipe %s requires a %s, machine is a %s", recipeID, requiredType, machineType)),
		RecipeID:     recipeID,
		MachineType:  machineType,
		RequiredType: requiredType,
	}
}

type NoNodeAssignedError struct {
	*DomainError
	MachineID string
}

func NewNoNodeAssignedError(machineID string) *NoNodeAssignedError {
	return &NoNodeAssignedError{
		DomainError: NewDomainError(fmt.Sprintf("machine %s has no resource node assigned", machineID)),
		MachineID:   machineID,
	}
}

type NodeExhaustedError struct {
	*DomainError
	NodeID string
}

func NewNodeExhaustedError(nodeID string) *NodeExhaustedError {
	return &NodeExhaustedError{
		DomainError: NewDomainError(fmt.Sprintf("resource node %s is exhausted", nodeID)),
		NodeID:      nodeID,
	}
}

// Lookup errors

type NotFoundError struct {
	*DomainError
	Kind string
	ID   string
}

func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{
		DomainError: NewDomainError(fmt.Sprintf("%s %s not found", kind, id)),
		Kind:        kind,
		ID:          id,
	}
}

// Persistence errors. Both wrap the storage failure so callers can inspect it.

type PersistenceReadError struct {
	*DomainError
	Key   string
	Cause error
}

func NewPersistenceReadError(key string, cause error) *PersistenceReadError {
	return &PersistenceReadError{
		DomainError: NewDomainError(fmt.Sprintf("failed to read %s: %v", key, cause)),
		Key:         key,
		Cause:       cause,
	}
}

func (e *PersistenceReadError) Unwrap() error {
	return e.Cause
}

type PersistenceWriteError struct {
	*DomainError
	Keys  []string
	Cause error
}

func NewPersistenceWriteError(keys []string, cause error) *PersistenceWriteError {
	return &PersistenceWriteError{
		DomainError: NewDomainError(fmt.Sprintf("failed to write %s: %v", strings.Join(keys, ","), cause)),
		Keys:        keys,
		Cause:       cause,
	}
}

func (e *PersistenceWriteError) Unwrap() error {
	return e.Cause
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
