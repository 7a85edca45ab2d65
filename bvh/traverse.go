package bvh

import (
	"fmt"

	"github.com/tinyrt/tinyrt/mailbox"
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/vecmath"
)

// StackSize returns the traversal stack capacity Raycast needs for t: two
// entries pushed per internal node descended, plus two.
func (t *Tree) StackSize() int {
	return 2*t.maxDepth + 2
}

// Raycast finds the closest intersection of ray against objects, guided
// by t, updating hit and reports whether it found one. stack must have
// capacity at least t.StackSize(); callers traversing many rays against
// the same tree should allocate it once (e.g. from a scratch.Arena) and
// reuse it. mb suppresses re-testing an id already checked for this ray —
// pass mailbox.Null{} for a binary tree, whose leaves never overlap.
func Raycast[M mailbox.Mailbox](t *Tree, objects objset.Set, ray *vecmath.Ray, hit *objset.TriangleRayHit, mb M, stack []int32) bool {
	if len(t.Nodes) == 0 {
		return false
	}
	if len(stack) < t.StackSize() {
		panic(fmt.Sprintf("bvh: traversal stack holds %d entries, tree needs %d", len(stack), t.StackSize()))
	}

	updated := false
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		idx := stack[sp]
		n := &t.Nodes[idx]

		if ok, _, _ := vecmath.RayAABBTest(n.Bounds, ray); !ok {
			continue
		}

		if n.IsLeaf() {
			for i := 0; i < int(n.Count); i++ {
				id := int(t.ObjectRefs[int(n.FirstObject)+i])
				if mb.Check(id) {
					continue
				}
				if objects.RayIntersect(ray, hit, id) {
					updated = true
				}
			}
			continue
		}

		left, right := n.Left, n.Left+1
		if ray.Direction[n.Axis] < 0 {
			left, right = right, left
		}
		stack[sp] = right
		sp++
		stack[sp] = left
		sp++
	}

	return updated
}
