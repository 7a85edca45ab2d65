package qbvh

import (
	"github.com/tinyrt/tinyrt/bvh"
	"github.com/tinyrt/tinyrt/objset"
	"github.com/tinyrt/tinyrt/vecmath"
)

// Build builds a QBVH by first building a binary SAH bvh.Tree over
// objects, then collapsing it. opts, bins and the two SAH costs are
// forwarded to bvh.NewSAHBuilder unchanged.
func Build(objects objset.Set, opts bvh.Options, bins int, traversalCost, intersectCost float32) (*Tree, error) {
	sah := bvh.NewSAHBuilder(opts, bins, traversalCost, intersectCost)
	bt, err := sah.Build(objects)
	if err != nil {
		if err == bvh.ErrEmptyObjectSet {
			return nil, ErrEmptyObjectSet
		}
		return nil, err
	}
	return CollapseFromBVH(bt), nil
}

// CollapseFromBVH builds a QBVH by folding an already-built binary tree.
// Exposed separately from Build so callers that already have a bvh.Tree
// (for comparison tests, or a caller reusing one build across several
// accelerators) don't pay to build it twice.
func CollapseFromBVH(bt *bvh.Tree) *Tree {
	t := &Tree{ObjectRefs: bt.ObjectRefs}
	collapse(bt, 0, t, 0)
	return t
}

// collapse appends one QBVH node collapsing the subtree rooted at
// bt.Nodes[binaryIdx], recursing into any lane that is itself an inner
// bvh node. It returns the index of the node it appended.
func collapse(bt *bvh.Tree, binaryIdx int32, t *Tree, depth int) int32 {
	idx := int32(len(t.Nodes))
	t.Nodes = append(t.Nodes, Node{})
	if depth > t.maxDepth {
		t.maxDepth = depth
	}

	frontier := gatherFrontier(bt, binaryIdx)

	var node Node
	for i := 0; i < 4; i++ {
		if i >= len(frontier) {
			node.Bounds.SetChild(i, vecmath.EmptyAABB())
			continue
		}

		childIdx := frontier[i]
		bn := &bt.Nodes[childIdx]
		node.Bounds.SetChild(i, bn.Bounds)

		if bn.IsLeaf() {
			node.FirstObject[i] = bn.FirstObject
			node.Count[i] = bn.Count
		} else {
			node.Child[i] = collapse(bt, childIdx, t, depth+1)
		}
	}

	t.Nodes[idx] = node
	return idx
}

// gatherFrontier returns the bvh node indices to place in one QBVH node's
// lanes, collapsing exactly two binary levels: binaryIdx's two direct
// children, with each inner child replaced in place by its own two
// children. Both children inner yields the four grandchildren; one leaf
// child yields three lanes; both leaves yield two. A binaryIdx that is
// itself a leaf yields a single-entry frontier (the whole collapsed
// region is one leaf lane).
func gatherFrontier(bt *bvh.Tree, binaryIdx int32) []int32 {
	root := &bt.Nodes[binaryIdx]
	if root.IsLeaf() {
		return []int32{binaryIdx}
	}

	frontier := make([]int32, 0, 4)
	for _, childIdx := range [2]int32{root.Left, root.Left + 1} {
		child := &bt.Nodes[childIdx]
		if child.IsLeaf() {
			frontier = append(frontier, childIdx)
		} else {
			frontier = append(frontier, child.Left, child.Left+1)
		}
	}
	return frontier
}
