package kdtree

import (
	"fmt"

	"github.com/tinyrt/tinyrt/mailbox"
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/vecmath"
)

// StackSize returns the traversal stack capacity Raycast needs for t:
// one far-child deferred per inner node on the descent path.
func (t *Tree) StackSize() int {
	return t.maxDepth + 2
}

// StackEntry is one deferred far-child descent. Callers allocate a slice
// of these (sized by StackSize) once per query and pass it to Raycast.
type StackEntry struct {
	idx        int32
	tMin, tMax float32
}

// NewStack allocates a traversal stack sized for t.
func (t *Tree) NewStack() []StackEntry {
	return make([]StackEntry, t.StackSize())
}

// Raycast finds the closest intersection of ray against objects by
// descending t's near child first and pushing the far child only when
// the split plane actually falls inside the ray's current valid
// interval, updating hit and reporting whether it found one. stack must
// have capacity at least t.StackSize(). mb suppresses re-testing an id
// already checked for this ray — perfect clipping duplicates an object
// across sibling leaves whenever it straddles a split plane, so a
// non-Null mailbox matters here the same way it does for grid.
func Raycast[M mailbox.Mailbox](t *Tree, objects objset.Set, ray *vecmath.Ray, hit *objset.TriangleRayHit, mb M, stack []StackEntry) bool {
	if len(t.Nodes) == 0 {
		return false
	}
	if len(stack) < t.StackSize() {
		panic(fmt.Sprintf("kdtree: traversal stack holds %d entries, tree needs %d", len(stack), t.StackSize()))
	}

	ok, tMin, tMax := vecmath.RayAABBTest(t.Bounds, ray)
	if !ok {
		return false
	}

	updated := false
	sp := 0
	push := func(idx int32, lo, hi float32) {
		stack[sp] = StackEntry{idx, lo, hi}
		sp++
	}

	idx := int32(0)
	for {
		if tMin > ray.MaxDistance {
			if sp == 0 {
				break
			}
			sp--
			e := stack[sp]
			idx, tMin, tMax = e.idx, e.tMin, e.tMax
			continue
		}

		n := &t.Nodes[idx]
		if n.IsLeaf() {
			first, count := n.FirstObject(), n.ObjectCount()
			for i := int32(0); i < count; i++ {
				id := int(t.ObjectRefs[first+i])
				if mb.Check(id) {
					continue
				}
				if objects.RayIntersect(ray, hit, id) {
					updated = true
				}
			}
			if sp == 0 {
				break
			}
			sp--
			e := stack[sp]
			idx, tMin, tMax = e.idx, e.tMin, e.tMax
			continue
		}

		axis := n.Axis()
		splitPos := n.SplitPos()
		invD := ray.InvDirection[axis]
		tSplit := (splitPos - ray.Origin[axis]) * invD

		belowFirst := ray.Origin[axis] < splitPos ||
			(ray.Origin[axis] == splitPos && ray.Direction[axis] <= 0)

		var nearIdx, farIdx int32
		if belowFirst {
			nearIdx, farIdx = idx+1, n.AboveChild()
		} else {
			nearIdx, farIdx = n.AboveChild(), idx+1
		}

		switch {
		case tSplit > tMax || tSplit <= 0:
			idx = nearIdx
		case tSplit < tMin:
			idx = farIdx
		default:
			push(farIdx, tSplit, tMax)
			idx = nearIdx
			tMax = tSplit
		}
	}

	return updated
}
