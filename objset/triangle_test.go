package objset

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tinyrt/tinyrt/vecmath"
)

// A single triangle spanning the unit right-angle at the origin, tested
// dead center and well outside its area.
func unitTriangle() (p0, p1, p2 vecmath.Vec3) {
	return vecmath.NewVec3(0, 0, 0), vecmath.NewVec3(1, 0, 0), vecmath.NewVec3(0, 1, 0)
}

func TestIntersectTriangleCenterHit(t *testing.T) {
	p0, p1, p2 := unitTriangle()
	ray := vecmath.NewRay(vecmath.NewVec3(0.25, 0.25, -1), vecmath.NewVec3(0, 0, 1), 0, 1e30)

	hit, tVal, u, v := IntersectTriangle(&ray, p0, p1, p2)
	require.True(t, hit)
	require.InDelta(t, float32(1), tVal, 1e-5)
	require.InDelta(t, float32(0.25), u, 1e-5)
	require.InDelta(t, float32(0.25), v, 1e-5)
}

func TestIntersectTriangleOutsideMisses(t *testing.T) {
	p0, p1, p2 := unitTriangle()
	ray := vecmath.NewRay(vecmath.NewVec3(0.75, 0.75, -1), vecmath.NewVec3(0, 0, 1), 0, 1e30)

	hit, _, _, _ := IntersectTriangle(&ray, p0, p1, p2)
	require.False(t, hit)
}
