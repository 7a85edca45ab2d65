// Package clipper implements the perfect triangle/AABB clip the KD-tree's
// SAH builder uses to compute tight per-child bounds for a straddling
// triangle: classify the vertices against the axis-aligned plane,
// interpolate the two crossing edges, and bound each side's piece. The
// builder needs the clipped bounds, not clipped geometry, so the output
// is two AABBs rather than new triangles.
package clipper

import "github.com/tinyrt/tinyrt/vecmath"

// ClipTriangle splits triangle (p0, p1, p2) by the axis-aligned plane
// axis=position and returns the AABBs of the left (< position) and right
// (> position) pieces, each intersected with parent. Precondition:
// parent.Min[axis] < position < parent.Max[axis].
func ClipTriangle(p0, p1, p2 vecmath.Vec3, parent vecmath.AABB, axis int, position float32) (left, right vecmath.AABB) {
	verts := [3]vecmath.Vec3{p0, p1, p2}

	left = vecmath.EmptyAABB()
	right = vecmath.EmptyAABB()

	for i := 0; i < 3; i++ {
		v0 := verts[i]
		v1 := verts[(i+1)%3]

		if v0[axis] <= position {
			left = left.ExpandPoint(v0)
		}
		if v0[axis] >= position {
			right = right.ExpandPoint(v0)
		}

		// Does edge (v0 -> v1) cross the plane? If so, add the
		// interpolated crossing point to both sides.
		if (v0[axis] < position) != (v1[axis] < position) {
			t := (position - v0[axis]) / (v1[axis] - v0[axis])
			cross := vecmath.Vec3{
				v0[0] + t*(v1[0]-v0[0]),
				v0[1] + t*(v1[1]-v0[1]),
				v0[2] + t*(v1[2]-v0[2]),
			}
			// Clamp the two non-split axes against parent to tame
			// floating point drift in the interpolation.
			for a := 0; a < 3; a++ {
				if a == axis {
					continue
				}
				cross[a] = parent.ClampAxis(a, cross[a])
			}
			cross[axis] = position
			left = left.ExpandPoint(cross)
			right = right.ExpandPoint(cross)
		}
	}

	left = left.Intersect(parent)
	right = right.Intersect(parent)
	return left, right
}
