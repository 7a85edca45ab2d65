package objset

import "github.com/tinyrt/tinyrt/vecmath"

// triangleEpsilon guards the Moller-Trumbore determinant test against
// near-parallel ray/triangle pairs.
const triangleEpsilon = 1e-7

// IntersectTriangle performs a Moller-Trumbore ray/triangle test and
// reports (hit, t, u, v). Acceptance requires minDistance <= t <=
// maxDistance, u >= 0, v >= 0, u+v <= 1. There is no separate positive-t
// epsilon: "in front of the ray" is deferred entirely to the caller's
// valid interval, so a shadow ray with a positive MinDistance still works
// correctly.
func IntersectTriangle(ray *vecmath.Ray, p0, p1, p2 vecmath.Vec3) (hit bool, t, u, v float32) {
	edge1 := p1.Sub(p0)
	edge2 := p2.Sub(p0)

	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)
	if det > -triangleEpsilon && det < triangleEpsilon {
		return false, 0, 0, 0
	}
	invDet := 1.0 / det

	s := ray.Origin.Sub(p0)
	u = invDet * s.Dot(h)
	if u < 0 || u > 1 {
		return false, 0, 0, 0
	}

	q := s.Cross(edge1)
	v = invDet * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return false, 0, 0, 0
	}

	t = invDet * edge2.Dot(q)
	if t < ray.MinDistance || t > ray.MaxDistance {
		return false, 0, 0, 0
	}

	return true, t, u, v
}
