// Package bvh implements a binary bounding-volume hierarchy: a flat node
// array with left and right children always consecutive, leaves
// referencing a permutation of the object set's ids, two builders
// (median-cut and binned SAH), and the single-ray traversal kernel.
package bvh

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/treeutil"
	"github.com/tinyrt/tinyrt/vecmath"
)

// Node is one entry of the tree's flat array. A node with Count == 0 is an
// inner node: its children are at index Left and Left+1. A node with Count
// > 0 is a leaf: its objects are ObjectRefs[FirstObject : FirstObject+Count].
type Node struct {
	Bounds      vecmath.AABB
	Left        int32
	FirstObject int32
	Count       uint16
	Axis        uint8
}

// IsLeaf reports whether n is a leaf node.
func (n *Node) IsLeaf() bool { return n.Count > 0 }

// Tree is the built binary AABB tree.
type Tree struct {
	Nodes      []Node
	ObjectRefs []int32
	maxDepth   int
}

// GetBoundingBox returns the bounds of the whole tree (the root node's
// box), or an empty box for an empty tree.
func (t *Tree) GetBoundingBox() vecmath.AABB {
	if len(t.Nodes) == 0 {
		return vecmath.EmptyAABB()
	}
	return t.Nodes[0].Bounds
}

// GetStackDepth returns the maximum descent depth a traversal of this tree
// can reach, used to size an explicit traversal stack.
func (t *Tree) GetStackDepth() int {
	return t.maxDepth
}

// GetMemoryUsage reports the bytes occupied by the node and object-ref
// arrays. allocated is reported equal to used: spare slice capacity left
// over from growing the node array is not counted.
func (t *Tree) GetMemoryUsage() (used, allocated int) {
	size := len(t.Nodes)*int(unsafe.Sizeof(Node{})) + len(t.ObjectRefs)*4
	return size, size
}

// Stats computes introspection statistics by walking the tree.
func (t *Tree) Stats() treeutil.Stats {
	var s treeutil.Stats
	s.ObjectRefCount = len(t.ObjectRefs)
	if len(t.Nodes) == 0 {
		return s
	}
	s.UsedBytes, s.AllocatedBytes = t.GetMemoryUsage()

	var walk func(idx, depth int)
	walk = func(idx, depth int) {
		s.NodeCount++
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		n := &t.Nodes[idx]
		if n.IsLeaf() {
			s.LeafCount++
			return
		}
		walk(int(n.Left), depth+1)
		walk(int(n.Left)+1, depth+1)
	}
	walk(0, 0)
	return s
}

// ErrEmptyObjectSet is returned by Build when the object set has no
// objects — builders fail eagerly rather than build a degenerate tree.
var ErrEmptyObjectSet = errors.New("bvh: cannot build over an empty object set")

// CheckBVH verifies the two structural invariants of a built binary
// tree: every object id in [0,N) appears in exactly one leaf, and every
// node's bounds contain both children's bounds (and every object AABB in
// its subtree).
func CheckBVH(t *Tree, objects objset.Set) error {
	if len(t.Nodes) == 0 {
		if objects.Count() == 0 {
			return nil
		}
		return errors.New("bvh: empty tree over non-empty object set")
	}

	seen := make([]bool, objects.Count())
	var walk func(idx int) error
	walk = func(idx int) error {
		n := &t.Nodes[idx]
		if n.IsLeaf() {
			for i := 0; i < int(n.Count); i++ {
				id := int(t.ObjectRefs[int(n.FirstObject)+i])
				if seen[id] {
					return errors.Errorf("bvh: object %d referenced by more than one leaf", id)
				}
				seen[id] = true
				if !n.Bounds.Contains(objects.ObjectAABB(id)) {
					return errors.Errorf("bvh: leaf bounds do not contain object %d", id)
				}
			}
			return nil
		}

		left, right := &t.Nodes[n.Left], &t.Nodes[n.Left+1]
		if !n.Bounds.Contains(left.Bounds) || !n.Bounds.Contains(right.Bounds) {
			return errors.Errorf("bvh: node %d does not contain both children's bounds", idx)
		}
		if err := walk(int(n.Left)); err != nil {
			return err
		}
		return walk(int(n.Left) + 1)
	}
	if err := walk(0); err != nil {
		return err
	}

	for id, ok := range seen {
		if !ok {
			return errors.Errorf("bvh: object %d missing from every leaf", id)
		}
	}
	return nil
}
