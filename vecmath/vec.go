// Package vecmath holds the value types shared by every acceleration
// structure: vectors, axis-aligned boxes and rays, plus the ray/AABB
// intersection primitives the traversal kernels are built on.
package vecmath

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is three IEEE-754 single-precision floats.
type Vec3 = mgl32.Vec3

// Vec2 is two IEEE-754 single-precision floats, used for the barycentric
// coordinates of a triangle hit.
type Vec2 = mgl32.Vec2

// NewVec3 builds a Vec3 from its three components.
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// MinVec3 returns the componentwise minimum of a and b.
func MinVec3(a, b Vec3) Vec3 {
	return Vec3{
		min32(a[0], b[0]),
		min32(a[1], b[1]),
		min32(a[2], b[2]),
	}
}

// MaxVec3 returns the componentwise maximum of a and b.
func MaxVec3(a, b Vec3) Vec3 {
	return Vec3{
		max32(a[0], b[0]),
		max32(a[1], b[1]),
		max32(a[2], b[2]),
	}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Component returns v[axis], axis in {0,1,2}.
func Component(v Vec3, axis int) float32 {
	return v[axis]
}

// reciprocal computes 1/x, yielding ±Inf for a zero x as IEEE-754 requires;
// the AABB slab test in ray.go relies on that behavior instead of special
// casing axis-aligned rays.
func reciprocal(x float32) float32 {
	return 1.0 / x
}
