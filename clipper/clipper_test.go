package clipper

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tinyrt/tinyrt/vecmath"
)

func unitTriangleBox() vecmath.AABB {
	return vecmath.AABB{Min: vecmath.NewVec3(0, 0, 0), Max: vecmath.NewVec3(1, 1, 1)}
}

func TestClipTriangleSplitsAcrossPlane(t *testing.T) {
	p0 := vecmath.NewVec3(0, 0, 0)
	p1 := vecmath.NewVec3(1, 0, 0)
	p2 := vecmath.NewVec3(0, 1, 0)
	parent := unitTriangleBox()

	left, right := ClipTriangle(p0, p1, p2, parent, 0, 0.5)

	require.False(t, left.IsEmpty())
	require.False(t, right.IsEmpty())
	require.LessOrEqual(t, left.Max[0], float32(0.5)+1e-6)
	require.GreaterOrEqual(t, right.Min[0], float32(0.5)-1e-6)
}

func TestClipTriangleIdempotentOnAlreadyClippedSide(t *testing.T) {
	p0 := vecmath.NewVec3(0, 0, 0)
	p1 := vecmath.NewVec3(1, 0, 0)
	p2 := vecmath.NewVec3(0, 1, 0)
	parent := unitTriangleBox()

	left, _ := ClipTriangle(p0, p1, p2, parent, 0, 0.5)

	// Re-clipping left (now bounded by x<=0.5) at the same plane must be a
	// no-op on the left side and produce an empty (or degenerate) box on
	// the right side.
	leftAgain, rightAgain := ClipTriangle(p0, p1, p2, left, 0, 0.5)
	require.Equal(t, left, leftAgain)
	require.True(t, rightAgain.IsEmpty() || rightAgain.Max[0]-rightAgain.Min[0] < 1e-5)
}

func TestClipTriangleEntirelyOnOneSide(t *testing.T) {
	p0 := vecmath.NewVec3(0, 0, 0)
	p1 := vecmath.NewVec3(0.1, 0, 0)
	p2 := vecmath.NewVec3(0, 0.1, 0)
	parent := unitTriangleBox()

	left, right := ClipTriangle(p0, p1, p2, parent, 0, 0.5)
	require.False(t, left.IsEmpty())
	require.True(t, right.IsEmpty())
}
