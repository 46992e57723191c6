package discovery

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// Direction is a single grid step. Screen convention: up decreases y.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// ParseDirection accepts the direction names case-insensitively
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if _, _, ok := d.delta(); !ok {
		return "", shared.NewValidationError("direction", fmt.Sprintf("unknown direction %q", s))
	}
	return d, nil
}

// Delta returns the unit coordinate change for the direction
func (d Direction) Delta() (dx, dy int64) {
	dx, dy, _ = d.delta()
	return dx, dy
}

func (d Direction) delta() (int64, int64, bool) {
	switch d {
	case DirectionUp:
		return 0, -1, true
	case DirectionDown:
		return 0, 1, true
	case DirectionLeft:
		return -1, 0, true
	case DirectionRight:
		return 1, 0, true
	default:
		return 0, 0, false
	}
}
