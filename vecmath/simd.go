package vecmath

// DirSigns precomputes, per axis, whether the ray direction is negative.
// QBVH traversal uses it once per ray instead of re-deriving the near/far
// slab assignment for every child box.
type DirSigns [3]bool

// ComputeDirSigns derives DirSigns from a ray's direction.
func ComputeDirSigns(ray *Ray) DirSigns {
	return DirSigns{ray.Direction[0] < 0, ray.Direction[1] < 0, ray.Direction[2] < 0}
}

// QuadAABB holds the bounds of up to four children in the SIMD-friendly
// "struct of arrays" layout described by the QBVH data model: six 4-wide
// lanes of [minX, maxX, minY, maxY, minZ, maxZ]. Unused lanes (a node with
// fewer than four children) must be filled with an AABB that can never be hit, which QBVH's
// builder does with EmptyAABB's ±Inf bounds.
type QuadAABB struct {
	MinX, MaxX [4]float32
	MinY, MaxY [4]float32
	MinZ, MaxZ [4]float32
}

// SetChild writes box into lane i of q.
func (q *QuadAABB) SetChild(i int, box AABB) {
	q.MinX[i], q.MaxX[i] = box.Min[0], box.Max[0]
	q.MinY[i], q.MaxY[i] = box.Min[1], box.Max[1]
	q.MinZ[i], q.MaxZ[i] = box.Min[2], box.Max[2]
}

// Child reads lane i back out as an AABB.
func (q *QuadAABB) Child(i int) AABB {
	return AABB{
		Min: Vec3{q.MinX[i], q.MinY[i], q.MinZ[i]},
		Max: Vec3{q.MaxX[i], q.MaxY[i], q.MaxZ[i]},
	}
}

// RayQuadAABBTest is the 4-wide sibling of RayAABBTest: it slab-tests a ray
// against all four lanes of q at once and returns a bit mask of the lanes
// that were hit (bit i set iff child i's box overlaps the ray's valid
// interval) together with each lane's entry distance, used to order
// descent by nearest-child-first.
//
// Go has no portable SIMD intrinsics outside the golang.org/x/simd
// experiment; this is written as four independent lanes operating on
// [4]float32 arrays so a vectorizing compiler (or a future assembly
// specialization) can still treat it as 4-wide work, matching the "four
// scalar lanes" shape the QBVH literature calls SIMD even in software.
func RayQuadAABBTest(q *QuadAABB, ray *Ray, signs DirSigns) (mask uint8, tMin [4]float32) {
	var tMax [4]float32
	for i := 0; i < 4; i++ {
		tMin[i] = ray.MinDistance
		tMax[i] = ray.MaxDistance
	}

	axisMin := [3]*[4]float32{&q.MinX, &q.MinY, &q.MinZ}
	axisMax := [3]*[4]float32{&q.MaxX, &q.MaxY, &q.MaxZ}

	for axis := 0; axis < 3; axis++ {
		invD := ray.InvDirection[axis]
		origin := ray.Origin[axis]
		near, far := axisMin[axis], axisMax[axis]
		if signs[axis] {
			near, far = far, near
		}
		for i := 0; i < 4; i++ {
			t0 := (near[i] - origin) * invD
			t1 := (far[i] - origin) * invD
			if t0 > tMin[i] {
				tMin[i] = t0
			}
			if t1 < tMax[i] {
				tMax[i] = t1
			}
		}
	}

	for i := 0; i < 4; i++ {
		if tMax[i] >= tMin[i] {
			mask |= 1 << uint(i)
		}
	}
	return mask, tMin
}
