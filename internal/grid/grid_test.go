package grid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borkshop/roomba/internal/grid"
	"github.com/borkshop/roomba/internal/point"
)

func TestNew_size(t *testing.T) {
	_, err := grid.New(0, 8, grid.Bounded)
	assert.ErrorIs(t, err, grid.ErrSize)
	_, err = grid.New(8, -1, grid.Torus)
	assert.ErrorIs(t, err, grid.ErrSize)

	g, err := grid.New(8, 5, grid.Bounded)
	require.NoError(t, err)
	assert.Equal(t, point.Pt(8, 5), g.Size())
	assert.Len(t, g.Empties(), 40)
}

func TestNeighborhood(t *testing.T) {
	for _, tc := range []struct {
		name     string
		w, h     int
		topo     grid.Topology
		at       point.Point
		expected []point.Point
	}{
		{
			name: "bounded interior",
			w:    8, h: 8, topo: grid.Bounded,
			at: point.Pt(3, 3),
			expected: []point.Point{
				point.Pt(2, 2), point.Pt(2, 3), point.Pt(2, 4),
				point.Pt(3, 2), point.Pt(3, 4),
				point.Pt(4, 2), point.Pt(4, 3), point.Pt(4, 4),
			},
		},
		{
			name: "bounded corner",
			w:    8, h: 8, topo: grid.Bounded,
			at:       point.Pt(0, 0),
			expected: []point.Point{point.Pt(0, 1), point.Pt(1, 0), point.Pt(1, 1)},
		},
		{
			name: "torus corner",
			w:    8, h: 8, topo: grid.Torus,
			at: point.Pt(0, 0),
			expected: []point.Point{
				point.Pt(7, 7), point.Pt(7, 0), point.Pt(7, 1),
				point.Pt(0, 7), point.Pt(0, 1),
				point.Pt(1, 7), point.Pt(1, 0), point.Pt(1, 1),
			},
		},
		{
			name: "tiny torus drops repeats and self",
			w:    2, h: 1, topo: grid.Torus,
			at:       point.Pt(0, 0),
			expected: []point.Point{point.Pt(1, 0)},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g, err := grid.New(tc.w, tc.h, tc.topo)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, g.Neighborhood(tc.at))
		})
	}
}

func TestPlaceRemove(t *testing.T) {
	g, err := grid.New(4, 4, grid.Bounded)
	require.NoError(t, err)
	at := point.Pt(1, 2)

	require.NoError(t, g.Place(grid.Station, at))
	assert.ErrorIs(t, g.Place(grid.Dirt, at), grid.ErrOccupied, "one fixed occupant")
	require.NoError(t, g.Place(grid.Agent, at), "agent may share a station")
	assert.ErrorIs(t, g.Place(grid.Agent, at), grid.ErrOccupied, "one agent")
	assert.Equal(t, grid.Station|grid.Agent, g.Kinds(at))
	assert.Equal(t, "station|agent", g.Kinds(at).String())
	assert.False(t, g.IsPassable(at))

	assert.ErrorIs(t, g.Place(grid.Dirt|grid.Agent, at), grid.ErrKind)
	assert.ErrorIs(t, g.Place(grid.Dirt, point.Pt(4, 0)), grid.ErrOutOfBounds)

	assert.True(t, g.Remove(grid.Agent, at))
	assert.False(t, g.Remove(grid.Agent, at), "already gone")
	assert.True(t, g.IsPassable(at), "stations are passable")

	require.NoError(t, g.Place(grid.Obstacle, point.Pt(0, 0)))
	assert.False(t, g.IsPassable(point.Pt(0, 0)))
	assert.False(t, g.IsPassable(point.Pt(-1, 0)))
	assert.Equal(t, 1, g.Count(grid.Obstacle))
	assert.Equal(t, 1, g.Count(grid.Station))
}

func TestMove(t *testing.T) {
	g, err := grid.New(3, 3, grid.Bounded)
	require.NoError(t, err)
	require.NoError(t, g.Place(grid.Agent, point.Pt(0, 0)))
	require.NoError(t, g.Place(grid.Obstacle, point.Pt(1, 1)))

	assert.Error(t, g.Move(point.Pt(0, 0), point.Pt(1, 1)))
	assert.Error(t, g.Move(point.Pt(2, 2), point.Pt(2, 1)))
	require.NoError(t, g.Move(point.Pt(0, 0), point.Pt(1, 0)))
	assert.Equal(t, grid.Empty, g.Kinds(point.Pt(0, 0)))
	assert.Equal(t, grid.Agent, g.Kinds(point.Pt(1, 0)))
}
