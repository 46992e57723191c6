package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateMachineID creates a short, human-readable machine ID.
// Format: {machineType}-{8charHexUUID}
//
// Example:
//   - Input: machineType="SMELTER"
//   - Output: "smelter-a3f8e2b1"
func GenerateMachineID(machineType string) string {
	prefix := strings.ToLower(strings.TrimSpace(machineType))
	if prefix == "" {
		prefix = "machine"
	}
	return prefix + "-" + generateShortUUID()
}

// GenerateSessionID creates an 8-character ID for daemon sessions and saves
func GenerateSessionID() string {
	return generateShortUUID()
}

// generateShortUUID creates an 8-character hex string from a UUID
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
