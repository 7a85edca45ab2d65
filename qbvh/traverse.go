package qbvh

import (
	"fmt"
	"sort"

	"github.com/tinyrt/tinyrt/mailbox"
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/vecmath"
)

// StackSize returns the traversal stack capacity Raycast needs for t:
// up to 4 pushes per inner node visited, one level per recorded depth.
func (t *Tree) StackSize() int {
	return 4*(t.maxDepth+1) + 1
}

// Raycast finds the closest intersection of ray against objects, guided
// by t, updating hit and reporting whether it found one. stack must have
// capacity at least t.StackSize(). mb suppresses re-testing an id
// already checked for this ray — pass mailbox.Null{} since QBVH leaf
// ranges, like a binary bvh.Tree's, never overlap.
func Raycast[M mailbox.Mailbox](t *Tree, objects objset.Set, ray *vecmath.Ray, hit *objset.TriangleRayHit, mb M, stack []int32) bool {
	if len(t.Nodes) == 0 {
		return false
	}
	if len(stack) < t.StackSize() {
		panic(fmt.Sprintf("qbvh: traversal stack holds %d entries, tree needs %d", len(stack), t.StackSize()))
	}

	signs := vecmath.ComputeDirSigns(ray)
	updated := false
	sp := 0
	stack[sp] = 0
	sp++

	var lanes [4]int
	for sp > 0 {
		sp--
		idx := stack[sp]
		n := &t.Nodes[idx]

		mask, tMin := vecmath.RayQuadAABBTest(&n.Bounds, ray, signs)
		if mask == 0 {
			continue
		}

		count := 0
		for i := 0; i < 4; i++ {
			if mask&(1<<uint(i)) != 0 {
				lanes[count] = i
				count++
			}
		}
		ordered := lanes[:count]
		sort.Slice(ordered, func(a, b int) bool { return tMin[ordered[a]] < tMin[ordered[b]] })

		// Leaf lanes are tested immediately, nearest first, so a close hit
		// shrinks the interval before the farther lanes are touched.
		for k := 0; k < count; k++ {
			i := ordered[k]
			if n.Count[i] > 0 {
				if intersectLeaf(t, objects, ray, hit, mb, int(n.FirstObject[i]), int(n.Count[i])) {
					updated = true
				}
			}
		}

		// Inner lanes are pushed far-to-near so the nearest is popped (and
		// descended) first.
		for k := count - 1; k >= 0; k-- {
			i := ordered[k]
			if n.Count[i] == 0 {
				stack[sp] = n.Child[i]
				sp++
			}
		}
	}

	return updated
}

// intersectLeaf tests a leaf lane's object range through the object set's
// batched RayIntersectRange. A leaf references a contiguous span of
// ObjectRefs, but the ids inside it are a permutation, so batches are the
// maximal runs of consecutive, un-mailboxed ids within the span — on an
// object set that has been remapped into ref order the entire leaf becomes
// one batched call.
func intersectLeaf[M mailbox.Mailbox](t *Tree, objects objset.Set, ray *vecmath.Ray, hit *objset.TriangleRayHit, mb M, first, count int) bool {
	updated := false
	runStart, runLen := 0, 0

	flush := func() {
		if runLen > 0 && objects.RayIntersectRange(ray, hit, runStart, runLen) {
			updated = true
		}
		runLen = 0
	}

	for j := first; j < first+count; j++ {
		id := int(t.ObjectRefs[j])
		if mb.Check(id) {
			flush()
			continue
		}
		if runLen > 0 && id == runStart+runLen {
			runLen++
			continue
		}
		flush()
		runStart, runLen = id, 1
	}
	flush()
	return updated
}
