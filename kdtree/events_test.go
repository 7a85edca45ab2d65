package kdtree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tinyrt/tinyrt/vecmath"
)

// TestEventSortOrder pins the tie-break rule buildEvents relies on: among
// events at the same position, an End must sort before a Planar, which
// must sort before a Begin, so a sweep counts a triangle leaving the
// candidate plane before one starting there is counted as present.
func TestEventSortOrder(t *testing.T) {
	items := []kdItem{
		{id: 0, box: vecmath.AABB{Min: vecmath.NewVec3(0, 0, 0), Max: vecmath.NewVec3(1, 1, 1)}},  // ends at x=1
		{id: 1, box: vecmath.AABB{Min: vecmath.NewVec3(1, 0, 0), Max: vecmath.NewVec3(1, 1, 1)}},  // planar at x=1
		{id: 2, box: vecmath.AABB{Min: vecmath.NewVec3(1, 0, 0), Max: vecmath.NewVec3(2, 1, 1)}},  // begins at x=1
	}

	events := buildEvents(items, 0)
	require.Len(t, events, 5) // item 0: begin+end, item 1: planar, item 2: begin+end

	var atOne []eventKind
	for _, e := range events {
		if e.pos == 1 {
			atOne = append(atOne, e.kind)
		}
	}
	require.Equal(t, []eventKind{eventEnd, eventPlanar, eventBegin}, atOne)
}

// TestBestSplitOnAxisPrefersEmptySide checks the empty-space bonus: given
// a cluster of items on one side of the bounds and nothing on the other,
// the best split should land at the cluster's boundary rather than
// somewhere that cuts through it.
func TestBestSplitOnAxisPrefersEmptySide(t *testing.T) {
	bounds := vecmath.AABB{Min: vecmath.NewVec3(0, 0, 0), Max: vecmath.NewVec3(10, 1, 1)}
	items := []kdItem{
		{id: 0, box: vecmath.AABB{Min: vecmath.NewVec3(0, 0, 0), Max: vecmath.NewVec3(1, 1, 1)}},
		{id: 1, box: vecmath.AABB{Min: vecmath.NewVec3(0, 0, 0), Max: vecmath.NewVec3(2, 1, 1)}},
	}

	best := bestSplitOnAxis(items, bounds, 0, 1, 1)
	require.True(t, best.found)
	require.InDelta(t, float32(2), best.pos, 1e-5)
	require.Equal(t, 0, best.nAbove)
}
