package shared_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

func TestPosition_WithinRadius(t *testing.T) {
	origin := shared.NewPosition(0, 0)

	tests := []struct {
		name   string
		other  shared.Position
		radius int
		want   bool
	}{
		{"same tile", shared.NewPosition(0, 0), 0, true},
		{"adjacent on boundary", shared.NewPosition(1, 0), 1, true},
		{"diagonal outside radius one", shared.NewPosition(1, 1), 1, false},
		{"diagonal inside radius two", shared.NewPosition(1, 1), 2, true},
		{"far negative", shared.NewPosition(-5, -5), 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, origin.WithinRadius(tt.other, tt.radius))
		})
	}
}

func TestPosition_HandlesLargeCoordinates(t *testing.T) {
	p := shared.NewPosition(math.MaxInt32*4, -math.MaxInt32*4)

	moved := p.Offset(1, -1)

	assert.Equal(t, int64(math.MaxInt32*4+1), moved.X)
	assert.Equal(t, int64(2), p.DistanceSquaredTo(moved))
}

func TestParsePosition(t *testing.T) {
	pos, err := shared.ParsePosition(" 12, -7 ")
	require.NoError(t, err)
	assert.Equal(t, shared.NewPosition(12, -7), pos)

	_, err = shared.ParsePosition("12")
	var validationErr *shared.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "position", validationErr.Field)
}
