package objset

import (
	"github.com/tinyrt/tinyrt/clipper"
	"github.com/tinyrt/tinyrt/vecmath"
)

// BasicMesh is the sample object set: an indexed triangle mesh, one object
// per triangle.
type BasicMesh struct {
	Vertices []vecmath.Vec3
	Indices  []int32 // triangle i uses Indices[3*i:3*i+3]
}

// NewBasicMesh builds a BasicMesh from shared vertices and a flat index
// list (len(indices) must be a multiple of 3).
func NewBasicMesh(vertices []vecmath.Vec3, indices []int32) *BasicMesh {
	return &BasicMesh{Vertices: vertices, Indices: indices}
}

// Count implements objset.Set.
func (m *BasicMesh) Count() int {
	return len(m.Indices) / 3
}

func (m *BasicMesh) triangle(id int) (p0, p1, p2 vecmath.Vec3) {
	base := id * 3
	i0, i1, i2 := m.Indices[base], m.Indices[base+1], m.Indices[base+2]
	return m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]
}

// AABB implements objset.Set.
func (m *BasicMesh) AABB() vecmath.AABB {
	box := vecmath.EmptyAABB()
	for _, v := range m.Vertices {
		box = box.ExpandPoint(v)
	}
	return box
}

// ObjectAABB implements objset.Set.
func (m *BasicMesh) ObjectAABB(id int) vecmath.AABB {
	p0, p1, p2 := m.triangle(id)
	return vecmath.AABBFromPoints(p0, p1, p2)
}

// RayIntersect implements objset.Set.
func (m *BasicMesh) RayIntersect(ray *vecmath.Ray, hit *TriangleRayHit, id int) bool {
	p0, p1, p2 := m.triangle(id)
	ok, t, u, v := IntersectTriangle(ray, p0, p1, p2)
	if !ok {
		return false
	}
	// A hit at exactly the distance already recorded is not closer: the
	// first object reported at that distance keeps the hit.
	if hit.Hit() && t >= ray.MaxDistance {
		return false
	}
	ray.MaxDistance = t
	hit.ObjectIndex = int32(id)
	hit.UV = vecmath.Vec2{u, v}
	return true
}

// RayIntersectRange implements objset.Set.
func (m *BasicMesh) RayIntersectRange(ray *vecmath.Ray, hit *TriangleRayHit, first, count int) bool {
	updated := false
	for id := first; id < first+count; id++ {
		if m.RayIntersect(ray, hit, id) {
			updated = true
		}
	}
	return updated
}

// Remap implements objset.Set by reordering the triangle index triples so
// triangle i after the call is the triangle perm[i] was before.
func (m *BasicMesh) Remap(perm []int) {
	newIndices := make([]int32, len(m.Indices))
	for newID, oldID := range perm {
		copy(newIndices[newID*3:newID*3+3], m.Indices[oldID*3:oldID*3+3])
	}
	m.Indices = newIndices
}

// Clip implements objset.Clippable by delegating to the shared triangle
// clipper.
func (m *BasicMesh) Clip(id int, parent vecmath.AABB, axis int, position float32) (left, right vecmath.AABB) {
	p0, p1, p2 := m.triangle(id)
	return clipper.ClipTriangle(p0, p1, p2, parent, axis, position)
}
