// Package objset defines the contract between the core acceleration
// structures and the geometry they index — an "object set" that can
// report its bounds, intersect a ray against one of its objects, and (for
// the KD-tree's SAH builder) clip an object against an axial plane. The
// core never looks past this contract; objset.BasicMesh is the one
// concrete, triangle-mesh implementation TinyRT ships.
package objset

import "github.com/tinyrt/tinyrt/vecmath"

// NoHit is the sentinel ObjectIndex meaning "no hit". Object ids are
// non-negative array indices, so a negative sentinel can never collide
// with a real id.
const NoHit = int32(-1)

// TriangleRayHit is the hit record threaded through every traversal
// kernel. A fresh TriangleRayHit (zero value aside from ObjectIndex) must
// have ObjectIndex == NoHit.
type TriangleRayHit struct {
	ObjectIndex int32
	UV          vecmath.Vec2
}

// NewMiss returns a hit record in its "no hit yet" state.
func NewMiss() TriangleRayHit {
	return TriangleRayHit{ObjectIndex: NoHit}
}

// Hit reports whether the record represents a confirmed intersection.
func (h TriangleRayHit) Hit() bool {
	return h.ObjectIndex != NoHit
}

// Set is the contract every acceleration structure builds over. ids range
// over [0, Count()). RayIntersect and RayIntersectRange must be idempotent
// on a miss (they may not mutate ray or hit unless they find a closer
// hit), and must never themselves fail — an object set that cannot
// evaluate an intersection is outside this contract.
type Set interface {
	// Count returns the number of objects, N.
	Count() int

	// AABB returns the bounds of the whole set.
	AABB() vecmath.AABB

	// ObjectAABB returns the bounds of a single object.
	ObjectAABB(id int) vecmath.AABB

	// RayIntersect tests ray against a single object, updating hit (and
	// ray.MaxDistance) if this is the closest hit seen so far. It reports
	// whether it updated hit.
	RayIntersect(ray *vecmath.Ray, hit *TriangleRayHit, id int) bool

	// RayIntersectRange tests ray against objects [first, first+count),
	// used by QBVH leaves which reference a contiguous range rather than
	// a single id. It reports whether it updated hit.
	RayIntersectRange(ray *vecmath.Ray, hit *TriangleRayHit, first, count int) bool

	// Remap reorders the set's internal storage so object i after the
	// call is the object perm[i] was before. It is only legal during
	// build, never during traversal, and overwrites the set's identity of
	// "object id" — callers must not hold ids computed before a Remap.
	Remap(perm []int)
}

// Clippable is implemented by object sets the KD-tree's SAH builder can
// run perfect-clipping against: given an object, its parent box, and a
// split plane, it returns the two sub-AABBs of that object clipped to each
// side.
type Clippable interface {
	Set

	// Clip returns the AABBs of object id intersected with the two
	// half-spaces of parent on either side of the plane axis=position.
	// Precondition: parent.Min[axis] < position < parent.Max[axis].
	Clip(id int, parent vecmath.AABB, axis int, position float32) (left, right vecmath.AABB)
}
