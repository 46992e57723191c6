package grpc

import (
	"github.com/andrescamacho/outpost-go/internal/application/game"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

// Empty is the request of calls that take no arguments
type Empty struct{}

type MoveRequest struct {
	Direction string `json:"direction"`
	Steps     int    `json:"steps,omitempty"`
}

type SetPositionRequest struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

type PositionReply struct {
	Position     shared.Position `json:"position"`
	NewlyPending int             `json:"newlyPending"`
	Pinned       string          `json:"pinned,omitempty"`
}

type PinRequest struct {
	NodeID string `json:"nodeId"`
}

type PlaceMachineRequest struct {
	MachineType string `json:"machineType"`
	NodeID      string `json:"nodeId,omitempty"`
}

type AssignNodeRequest struct {
	MachineID string `json:"machineId"`
	NodeID    string `json:"nodeId"`
}

type StartCraftRequest struct {
	MachineID string `json:"machineId"`
	RecipeID  string `json:"recipeId"`
	Batch     int    `json:"batch,omitempty"`
	Queue     bool   `json:"queue,omitempty"`
}

type CraftReply struct {
	Started       bool             `json:"started"`
	QueuePosition int              `json:"queuePosition,omitempty"`
	Machine       game.MachineView `json:"machine"`
}

// MachineRequest addresses one machine. ClearQueue only applies to cancel.
type MachineRequest struct {
	MachineID  string `json:"machineId"`
	ClearQueue bool   `json:"clearQueue,omitempty"`
}

type CancelReply struct {
	MachineID   string         `json:"machineId"`
	RecipeID    string         `json:"recipeId"`
	Refunded    map[string]int `json:"refunded,omitempty"`
	NextStarted bool           `json:"nextStarted,omitempty"`
}

type ToastRequest struct {
	MilestoneID string `json:"milestoneId"`
}

type ChunkRequest struct {
	// Center defaults to the player's chunk
	Center *world.ChunkCoord `json:"center,omitempty"`
	Radius int `json:"radius"`
}

type ChunkReply struct {
	Chunks []game.ChunkView `json:"chunks"`
}

type RecipesRequest struct {
	MachineType string `json:"machineType,omitempty"`
}

type RecipeInfo struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	MachineType       string         `json:"machineType"`
	ProcessingSeconds float64        `json:"processingSeconds"`
	SourceNodeType    string         `json:"sourceNodeType,omitempty"`
	Inputs            map[string]int `json:"inputs,omitempty"`
	Outputs           map[string]int `json:"outputs"`
}

type RecipesReply struct {
	Recipes []RecipeInfo `json:"recipes"`
}
