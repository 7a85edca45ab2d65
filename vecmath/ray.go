package vecmath

// Ray is a ray in 3D space together with its valid parametric interval
// [MinDistance, MaxDistance]. InvDirection is precomputed once per ray and
// reused by every AABB test performed during its traversal.
type Ray struct {
	Origin, Direction, InvDirection Vec3
	MinDistance, MaxDistance        float32
}

// NewRay builds a ray with the given origin, direction (not required to be
// normalized — the core never assumes unit-length directions) and valid
// interval. A zero component of Direction yields ±Inf in InvDirection,
// which RayAABBTest relies on to handle axis-aligned rays without a branch.
func NewRay(origin, direction Vec3, minDistance, maxDistance float32) Ray {
	return Ray{
		Origin:       origin,
		Direction:    direction,
		InvDirection: Vec3{reciprocal(direction[0]), reciprocal(direction[1]), reciprocal(direction[2])},
		MinDistance:  minDistance,
		MaxDistance:  maxDistance,
	}
}

// At returns the point at parameter t along the ray.
func (r *Ray) At(t float32) Vec3 {
	return Vec3{
		r.Origin[0] + r.Direction[0]*t,
		r.Origin[1] + r.Direction[1]*t,
		r.Origin[2] + r.Direction[2]*t,
	}
}

// IsIntervalValid reports whether [tMin, tMax] overlaps the ray's current
// valid interval.
func (r *Ray) IsIntervalValid(tMin, tMax float32) bool {
	return tMin <= r.MaxDistance && tMax >= r.MinDistance
}

// RayAABBTest performs the slab test of a ray against an axis-aligned box.
// It reports whether the ray's valid interval overlaps the box, and the
// entry/exit distances tMin/tMax of that overlap (tMin is never below
// ray.MinDistance: a ray starting inside the box gets tMin = MinDistance,
// and that is still a hit).
func RayAABBTest(box AABB, ray *Ray) (hit bool, tMin, tMax float32) {
	tMin = ray.MinDistance
	tMax = ray.MaxDistance

	for axis := 0; axis < 3; axis++ {
		invD := ray.InvDirection[axis]
		t0 := (box.Min[axis] - ray.Origin[axis]) * invD
		t1 := (box.Max[axis] - ray.Origin[axis]) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax < tMin {
			return false, 0, 0
		}
	}

	return true, tMin, tMax
}

// RayAABBTestNear is RayAABBTest without the tMax output, for call sites
// that only need the entry distance.
func RayAABBTestNear(box AABB, ray *Ray) (hit bool, tMin float32) {
	hit, tMin, _ = RayAABBTest(box, ray)
	return hit, tMin
}
