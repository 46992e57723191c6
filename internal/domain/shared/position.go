package shared

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Position is an integer tile coordinate on the unbounded world grid
type Position struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// NewPosition creates a Position
func NewPosition(x, y int64) Position {
	return Position{X: x, Y: y}
}

// ParsePosition parses "x,y"
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Position{}, NewValidationError("position", fmt.Sprintf("expected x,y but got %q", s))
	}

	x, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return Position{}, NewValidationError("position", fmt.Sprintf("invalid x %q", parts[0]))
	}
	y, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return Position{}, NewValidationError("position", fmt.Sprintf("invalid y %q", parts[1]))
	}

	return Position{X: x, Y: y}, nil
}

// Offset returns the position shifted by (dx, dy)
func (p Position) Offset(dx, dy int64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// DistanceSquaredTo returns the squared Euclidean distance in tiles.
// Squared distances keep discovery checks in integer arithmetic.
func (p Position) DistanceSquaredTo(other Position) int64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	return dx*dx + dy*dy
}

// DistanceTo returns the Euclidean distance in tiles
func (p Position) DistanceTo(other Position) float64 {
	return math.Sqrt(float64(p.DistanceSquaredTo(other)))
}

// WithinRadius reports whether other lies inside the circle of the given radius
func (p Position) WithinRadius(other Position, radius int) bool {
	r := int64(radius)
	return p.DistanceSquaredTo(other) <= r*r
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
