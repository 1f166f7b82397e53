package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borkshop/roomba/internal/point"
	"github.com/borkshop/roomba/internal/search"
)

func TestNearest(t *testing.T) {
	for _, tc := range []struct {
		name       string
		candidates []point.Point
		targets    []point.Point
		expected   point.Point
	}{
		{
			name:       "single target",
			candidates: []point.Point{point.Pt(0, 1), point.Pt(1, 0), point.Pt(1, 1)},
			targets:    []point.Point{point.Pt(2, 2)},
			expected:   point.Pt(1, 1),
		},
		{
			name:       "closest of many targets wins",
			candidates: []point.Point{point.Pt(4, 3), point.Pt(4, 5), point.Pt(5, 4)},
			targets:    []point.Point{point.Pt(0, 0), point.Pt(4, 7)},
			expected:   point.Pt(4, 5),
		},
		{
			name:       "landing on a target",
			candidates: []point.Point{point.Pt(1, 1), point.Pt(2, 2)},
			targets:    []point.Point{point.Pt(2, 2)},
			expected:   point.Pt(2, 2),
		},
		{
			name:       "ties go to the first candidate",
			candidates: []point.Point{point.Pt(1, 0), point.Pt(0, 1)},
			targets:    []point.Point{point.Pt(1, 1)},
			expected:   point.Pt(1, 0),
		},
		{
			name:       "ties go to the first candidate, reversed",
			candidates: []point.Point{point.Pt(0, 1), point.Pt(1, 0)},
			targets:    []point.Point{point.Pt(1, 1)},
			expected:   point.Pt(0, 1),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := search.Nearest(tc.candidates, tc.targets)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestNearest_deterministic(t *testing.T) {
	candidates := []point.Point{point.Pt(3, 2), point.Pt(2, 3), point.Pt(4, 3), point.Pt(3, 4)}
	targets := []point.Point{point.Pt(0, 3), point.Pt(6, 3), point.Pt(3, 0), point.Pt(3, 6)}
	first, err := search.Nearest(candidates, targets)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		got, err := search.Nearest(candidates, targets)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
	assert.Equal(t, point.Pt(3, 2), first)
}

func TestNearest_errors(t *testing.T) {
	_, err := search.Nearest([]point.Point{point.Pt(0, 0)}, nil)
	assert.ErrorIs(t, err, search.ErrInvalidTarget)
	_, err = search.Nearest(nil, []point.Point{point.Pt(0, 0)})
	assert.ErrorIs(t, err, search.ErrNoCandidates)
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 5.0, search.Distance(point.Pt(0, 0), []point.Point{point.Pt(3, 4), point.Pt(6, 8)}))
	assert.True(t, search.Distance(point.Pt(0, 0), nil) > 1e300)
}
