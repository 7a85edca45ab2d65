// Package qbvh implements a 4-wide bounding-volume hierarchy, built by
// collapsing levels of an already-built binary SAH bvh.Tree into 4-ary
// nodes and traversed with the 4-lane slab test in
// vecmath.RayQuadAABBTest. Folding a binary tree down, rather than
// subdividing space 4-ways directly, keeps the SAH split quality of the
// underlying binary build.
package qbvh

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/treeutil"
	"github.com/tinyrt/tinyrt/vecmath"
)

// Node holds up to 4 children in SIMD-friendly layout. Lane i is a leaf
// iff Count[i] > 0, in which case its objects are
// ObjectRefs[FirstObject[i] : FirstObject[i]+Count[i]]. An inner lane
// (Count[i] == 0) descends to Tree.Nodes[Child[i]]. An unused lane (the
// collapsed subtree had fewer than 4 descendants) has Count[i] == 0,
// Child[i] == 0 and Bounds lane i set to vecmath.EmptyAABB() — its slab
// test can never return a hit, so traversal never dereferences Child[i].
type Node struct {
	Bounds      vecmath.QuadAABB
	Child       [4]int32
	FirstObject [4]int32
	Count       [4]uint16
}

// Tree is the built QBVH.
type Tree struct {
	Nodes      []Node
	ObjectRefs []int32
	maxDepth   int
}

// GetBoundingBox returns the union of the root node's (up to 4) lane
// bounds, or an empty box for an empty tree.
func (t *Tree) GetBoundingBox() vecmath.AABB {
	if len(t.Nodes) == 0 {
		return vecmath.EmptyAABB()
	}
	box := vecmath.EmptyAABB()
	root := &t.Nodes[0]
	for i := 0; i < 4; i++ {
		box = box.Union(root.Bounds.Child(i))
	}
	return box
}

// GetStackDepth returns the maximum descent depth a traversal of this
// tree can reach, used to size an explicit traversal stack.
func (t *Tree) GetStackDepth() int {
	return t.maxDepth
}

// GetMemoryUsage reports the bytes occupied by the node and object-ref
// arrays.
func (t *Tree) GetMemoryUsage() (used, allocated int) {
	size := len(t.Nodes)*int(unsafe.Sizeof(Node{})) + len(t.ObjectRefs)*4
	return size, size
}

// RemapToRefOrder reorders objects into the tree's leaf reference order
// and rewrites ObjectRefs to the identity permutation, so every leaf's
// batched intersection covers its whole range in one RayIntersectRange
// call. It mutates the object set (see objset.Set.Remap) and is only
// legal between build and the first traversal; callers sharing one set
// across several structures must not use it.
func (t *Tree) RemapToRefOrder(objects objset.Set) {
	perm := make([]int, len(t.ObjectRefs))
	for newID, ref := range t.ObjectRefs {
		perm[newID] = int(ref)
	}
	treeutil.RemapObjects(objects, perm)
	for i := range t.ObjectRefs {
		t.ObjectRefs[i] = int32(i)
	}
}

// ErrEmptyObjectSet is returned by Build over an empty object set.
var ErrEmptyObjectSet = errors.New("qbvh: cannot build over an empty object set")

// CheckQBVH verifies that every object id in [0,N) is referenced by
// exactly one leaf lane, and that every lane's bounds contain the
// objects (or the child subtree) it claims to hold.
func CheckQBVH(t *Tree, objects objset.Set) error {
	if len(t.Nodes) == 0 {
		if objects.Count() == 0 {
			return nil
		}
		return errors.New("qbvh: empty tree over non-empty object set")
	}

	seen := make([]bool, objects.Count())
	var walk func(idx int32) error
	walk = func(idx int32) error {
		n := &t.Nodes[idx]
		for i := 0; i < 4; i++ {
			box := n.Bounds.Child(i)
			if n.Count[i] > 0 {
				for k := 0; k < int(n.Count[i]); k++ {
					id := int(t.ObjectRefs[int(n.FirstObject[i])+k])
					if seen[id] {
						return errors.Errorf("qbvh: object %d referenced by more than one leaf", id)
					}
					seen[id] = true
					if !box.Contains(objects.ObjectAABB(id)) {
						return errors.Errorf("qbvh: leaf lane bounds do not contain object %d", id)
					}
				}
				continue
			}
			if box.IsEmpty() {
				continue // unused lane
			}
			child := &t.Nodes[n.Child[i]]
			for k := 0; k < 4; k++ {
				if cb := child.Bounds.Child(k); !cb.IsEmpty() && !box.Contains(cb) {
					return errors.Errorf("qbvh: lane %d of node %d does not contain its child's bounds", i, idx)
				}
			}
			if err := walk(n.Child[i]); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(0); err != nil {
		return err
	}

	for id, ok := range seen {
		if !ok {
			return errors.Errorf("qbvh: object %d missing from every leaf", id)
		}
	}
	return nil
}
