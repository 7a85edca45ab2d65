package vecmath

import "math"

// AABB is an axis-aligned bounding box. For a non-empty box, Min[i] <=
// Max[i] on every axis.
type AABB struct {
	Min, Max Vec3
}

// EmptyAABB returns the identity element for AABB.Union: merging it with
// any box yields that box unchanged. Builders start their accumulator here
// instead of seeding it with the first child's box, which would otherwise
// need special-casing the first iteration of every reduce loop.
func EmptyAABB() AABB {
	return AABB{
		Min: NewVec3(float32(math.Inf(1)), float32(math.Inf(1)), float32(math.Inf(1))),
		Max: NewVec3(float32(math.Inf(-1)), float32(math.Inf(-1)), float32(math.Inf(-1))),
	}
}

// AABBFromPoints builds the smallest AABB containing every point.
func AABBFromPoints(points ...Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.ExpandPoint(p)
	}
	return box
}

// IsEmpty reports whether the box contains no points.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec3 {
	return Vec3{
		(b.Min[0] + b.Max[0]) * 0.5,
		(b.Min[1] + b.Max[1]) * 0.5,
		(b.Min[2] + b.Max[2]) * 0.5,
	}
}

// Extent returns Max - Min on every axis.
func (b AABB) Extent() Vec3 {
	return Vec3{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// WidestAxis returns the axis (0, 1 or 2) along which the box is largest.
func (b AABB) WidestAxis() int {
	e := b.Extent()
	axis := 0
	if e[1] > e[axis] {
		axis = 1
	}
	if e[2] > e[axis] {
		axis = 2
	}
	return axis
}

// SurfaceArea returns the box's surface area, used throughout the SAH cost
// model. An empty box has zero surface area.
func (b AABB) SurfaceArea() float32 {
	if b.IsEmpty() {
		return 0
	}
	e := b.Extent()
	return 2 * (e[0]*e[1] + e[1]*e[2] + e[2]*e[0])
}

// Union returns the smallest box containing both b and other.
func (b AABB) Union(other AABB) AABB {
	return AABB{Min: MinVec3(b.Min, other.Min), Max: MaxVec3(b.Max, other.Max)}
}

// ExpandPoint returns the smallest box containing b and p.
func (b AABB) ExpandPoint(p Vec3) AABB {
	return AABB{Min: MinVec3(b.Min, p), Max: MaxVec3(b.Max, p)}
}

// Contains reports whether other is entirely inside b.
func (b AABB) Contains(other AABB) bool {
	return b.Min[0] <= other.Min[0] && other.Max[0] <= b.Max[0] &&
		b.Min[1] <= other.Min[1] && other.Max[1] <= b.Max[1] &&
		b.Min[2] <= other.Min[2] && other.Max[2] <= b.Max[2]
}

// ContainsPoint reports whether p lies within b (inclusive of the faces).
func (b AABB) ContainsPoint(p Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Overlaps reports whether b and other share any point.
func (b AABB) Overlaps(other AABB) bool {
	return b.Min[0] <= other.Max[0] && b.Max[0] >= other.Min[0] &&
		b.Min[1] <= other.Max[1] && b.Max[1] >= other.Min[1] &&
		b.Min[2] <= other.Max[2] && b.Max[2] >= other.Min[2]
}

// Intersect returns the overlapping region of b and other. The result may
// be empty (IsEmpty() == true) if the boxes do not overlap.
func (b AABB) Intersect(other AABB) AABB {
	return AABB{Min: MaxVec3(b.Min, other.Min), Max: MinVec3(b.Max, other.Max)}
}

// ClampAxis clamps value to [b.Min[axis], b.Max[axis]].
func (b AABB) ClampAxis(axis int, value float32) float32 {
	if value < b.Min[axis] {
		return b.Min[axis]
	}
	if value > b.Max[axis] {
		return b.Max[axis]
	}
	return value
}
